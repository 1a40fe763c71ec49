package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Sign returns -1, 0 or +1 depending on the sign of v
func Sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

// round1 rounds to one decimal place, used to shrink broadcast payloads
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round3 rounds to three decimal places, enough for broadcast angles
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

