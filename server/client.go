package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256

	// Incoming message budget per rolling one-second window
	recvBudget = 50

	maxNameLen = 16
)

// Client owns one WebSocket connection and its per-connection state.
// The game loop talks to it only through the Broadcaster methods.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	playerID   string
	sessionID  string
	remoteAddr string

	recvCount     int
	recvWindowEnd time.Time

	authPilotID  int64  // 0 until a register/login/auth succeeds
	authUsername string
}

// NewClient wraps an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// overBudget counts an incoming frame against the rolling window and
// reports whether the connection should be cut off.
func (c *Client) overBudget() bool {
	now := time.Now()
	if now.After(c.recvWindowEnd) {
		c.recvCount = 0
		c.recvWindowEnd = now.Add(time.Second)
	}
	c.recvCount++
	return c.recvCount > recvBudget
}

// ReadPump drains the connection until error or rate-limit kick
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read: %v", err)
			}
			return
		}
		if c.overBudget() {
			log.Printf("dropping %s: message rate over budget", c.remoteAddr)
			return
		}

		// Steering arrives as a compact 4-byte frame, everything else as JSON
		if msgType == websocket.BinaryMessage && len(raw) == 4 && raw[0] == 0x01 {
			c.handleInputFrame(raw)
			continue
		}
		c.handleMessage(raw)
	}
}

// writeFrame picks the WebSocket frame type from the queue marker:
// a leading 0xFF byte (added by SendBinary) means a binary payload.
func (c *Client) writeFrame(msg []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if len(msg) > 0 && msg[0] == 0xFF {
		return c.conn.WriteMessage(websocket.BinaryMessage, msg[1:])
	}
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// WritePump flushes the send queue and keeps the connection alive
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeFrame(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON queues a text message; slow clients drop frames instead of
// stalling the game loop. Sends race with hub closing the channel,
// hence the recover guard.
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal outgoing: %v", err)
		return
	}
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary queues a binary message, tagged with the 0xFF marker for
// WritePump
func (c *Client) SendBinary(data []byte) {
	msg := append([]byte{0xFF}, data...)
	defer func() { recover() }()
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("bad envelope: %v", err)
		return
	}

	switch env.T {
	case MsgList:
		c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	}
}

func clampName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if len(name) > maxNameLen {
		return name[:maxNameLen]
	}
	return name
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sname := msg.SessionName
	if sname == "" {
		sname = "Arena"
	}
	if len(sname) > 30 {
		sname = sname[:30]
	}

	sess := c.hub.sessions.CreateSession(sname)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "too many active sessions"}})
		return
	}

	// Idle reaping stays armed until the first join
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session not found"}})
		return
	}

	player := sess.Game.AddPlayer(clampName(msg.Name, "Pilot"))
	if player == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session full"}})
		return
	}
	c.hub.sessions.MarkActive(sess.ID)
	c.playerID = player.ID
	c.sessionID = sess.ID
	player.AuthPilotID = c.authPilotID

	sess.Game.SetClient(player.ID, c)

	cfg := DefaultArenaConfig()
	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]string{"sid": sess.ID}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		ID:     player.ID,
		Radius: cfg.Cylinder.Radius,
		MinH:   cfg.MinHeight,
		MaxH:   cfg.MaxHeight,
	}})
}

// forwardInput hands decoded input to the player's game, if any
func (c *Client) forwardInput(input ClientInput) {
	if c.sessionID == "" || c.playerID == "" {
		return
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	sess.Game.HandleInput(c.playerID, input)
}

// handleInputFrame decodes the steering frame [0x01, turn, lift, flags].
// Turn and lift are signed bytes over 127; flags bit0 fires the laser,
// bit1 launches a missile.
func (c *Client) handleInputFrame(raw []byte) {
	c.forwardInput(ClientInput{
		Turn:    float64(int8(raw[1])) / 127.0,
		Lift:    float64(int8(raw[2])) / 127.0,
		Fire:    raw[3]&0x01 != 0,
		Missile: raw[3]&0x02 != 0,
	})
}

func (c *Client) handleInput(data json.RawMessage) {
	var input ClientInput
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	c.forwardInput(input)
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	reply := CheckedMsg{SID: msg.SID}
	if sess := c.hub.sessions.GetSession(msg.SID); sess != nil {
		reply.Exists = true
		reply.Name = sess.Name
		reply.Players = sess.Game.PlayerCount()
	}
	c.SendJSON(Envelope{T: MsgChecked, Data: reply})
}

func (c *Client) handleLeave() {
	if c.sessionID == "" {
		return
	}
	c.hub.sessions.RemovePlayer(c.sessionID, c.playerID)
	c.sessionID = ""
	c.playerID = ""
}

// grantAuth records the pilot identity on the connection and confirms
// it to the client
func (c *Client) grantAuth(id int64, username, token string) {
	c.authPilotID = id
	c.authUsername = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: username,
		PilotID:  id,
	}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.grantAuth(id, msg.Username, token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.grantAuth(id, msg.Username, token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "invalid token"}})
		return
	}
	c.grantAuth(id, username, msg.Token)
}
