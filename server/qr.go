package main

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// serveJoinQR renders a PNG QR code encoding a join URL for a session,
// so a second player can scan it from another device. Expects ?sid=.
func serveJoinQR(w http.ResponseWriter, r *http.Request, hub *Hub) {
	sid := r.URL.Query().Get("sid")
	if sid == "" {
		http.Error(w, "missing sid", http.StatusBadRequest)
		return
	}
	if hub.sessions.GetSession(sid) == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	joinURL := fmt.Sprintf("%s://%s/?join=%s", scheme, r.Host, sid)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
