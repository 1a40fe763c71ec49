package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgInput    = "input"
	MsgCreate   = "create" // create session
	MsgList     = "list"   // list sessions
	MsgCheck    = "check"  // check if session exists
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with a stored token
)

// Server -> Client message types
const (
	MsgState    = "state"
	MsgWelcome  = "welcome"
	MsgDeath    = "death"
	MsgKill     = "kill"
	MsgBoss     = "boss" // boss spawned
	MsgSessions = "sessions"
	MsgJoined   = "joined"
	MsgCreated  = "created"
	MsgChecked  = "checked"
	MsgAuthOK   = "auth_ok"
	MsgError    = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids a double unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client at 20Hz
type ClientInput struct {
	Turn    float64 `json:"tn"` // angular thrust, -1..1
	Lift    float64 `json:"lf"` // vertical thrust, -1..1
	Fire    bool    `json:"f"`  // laser trigger held
	Missile bool    `json:"m"`  // missile trigger held
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
}

// PlayerState is broadcast per player
type PlayerState struct {
	ID    string  `json:"id"`
	Name  string  `json:"n"`
	A     float64 `json:"a"` // angle, radians
	H     float64 `json:"h"` // height along the axis
	F     int     `json:"f"` // facing sign
	HP    int     `json:"hp"`
	MaxHP int     `json:"mhp"`
	Score int     `json:"sc"`
	Alive bool    `json:"al"`
}

// EnemyState is broadcast per enemy
type EnemyState struct {
	ID    string  `json:"id"`
	A     float64 `json:"a"`
	H     float64 `json:"h"`
	F     int     `json:"f"`
	Kind  int     `json:"k"`
	HP    int     `json:"hp"`
	MaxHP int     `json:"mhp"`
	Alive bool    `json:"al"`
}

// LaserState is broadcast per laser bolt
type LaserState struct {
	ID    string  `json:"id"`
	A     float64 `json:"a"`
	H     float64 `json:"h"`
	Owner string  `json:"o"`
}

// MissileState is broadcast per missile (free 3D position)
type MissileState struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Owner string  `json:"o"`
}

// GameState is the full state broadcast, msgpack-encoded on the wire
type GameState struct {
	Players  []PlayerState  `json:"p" msgpack:"p"`
	Enemies  []EnemyState   `json:"e" msgpack:"e"`
	Lasers   []LaserState   `json:"l" msgpack:"l"`
	Missiles []MissileState `json:"ms" msgpack:"ms"`
	Tick     uint64         `json:"tick" msgpack:"tick"`
	Clock    float64        `json:"clk" msgpack:"clk"` // session time, seconds
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID     string  `json:"id"`
	Radius float64 `json:"r"` // cylinder radius, for client-side projection
	MinH   float64 `json:"minh"`
	MaxH   float64 `json:"maxh"`
}

// DeathMsg notifies a player they died
type DeathMsg struct {
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
}

// KillMsg is broadcast when an enemy or player is destroyed
type KillMsg struct {
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
	VictimID   string `json:"vid"`
	VictimName string `json:"vn"`
}

// BossMsg announces a boss spawn
type BossMsg struct {
	ID   string `json:"id"`
	Name string `json:"n"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by the client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates an existing account
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg resumes a session with a stored token
type AuthMsg struct {
	Token string `json:"tok"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"tok"`
	Username string `json:"u"`
	PilotID  int64  `json:"pid"`
}
