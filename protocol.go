package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin        = "join"
	MsgLeave       = "leave"
	MsgInput       = "input"
	MsgCreate      = "create" // create session
	MsgList        = "list"   // list sessions
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth" // resume with a stored token
	MsgLeaderboard = "leaderboard"
	MsgRuns        = "runs" // own recent runs, requires auth
)

// Server -> Client message types
const (
	MsgState    = "state"
	MsgWelcome  = "welcome"
	MsgSessions = "sessions"
	MsgJoined   = "joined"
	MsgCreated  = "created" // session created, client should navigate
	MsgError    = "error"
	MsgAuthOK   = "auth_ok"
	MsgLevel    = "level" // a new level started
	MsgOver     = "over"  // cannon destroyed
	MsgBoard    = "board" // leaderboard rows
	MsgRunList  = "run_list"
)

// Input values
const (
	MoveUp    = "up"
	MoveDown  = "down"
	MoveStop  = "stop"
	FireLeft  = "left"
	FireRight = "right"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded by the handler
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput carries one pilot action; empty fields are ignored
type ClientInput struct {
	Move string `json:"move,omitempty"`
	Fire string `json:"fire,omitempty"`
}

// JoinMsg is sent when player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when player wants to create a session
type CreateMsg struct {
	SessionName string `json:"sname"`
	Level       *int   `json:"level,omitempty"`
}

type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthMsg struct {
	Token string `json:"token"`
}

type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// EntityState is one object in a state frame
type EntityState struct {
	ID       uint32  `msgpack:"id"`
	Kind     uint8   `msgpack:"k"`
	X        int     `msgpack:"x"`
	Y        int     `msgpack:"y"`
	Size     int     `msgpack:"s"`
	Rotation float32 `msgpack:"r"`
}

// GameState is the binary state frame. Digest is the xxhash of the
// msgpack encoding of Entities.
type GameState struct {
	Tick     uint64        `msgpack:"tick"`
	Level    int           `msgpack:"lvl"`
	Health   int           `msgpack:"hp"`
	Score    int           `msgpack:"sc"`
	Entities []EntityState `msgpack:"e"`
	Digest   uint64        `msgpack:"dg"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Level  int    `json:"level"`
	Width  int    `json:"w"`
	Height int    `json:"h"`
}

type LevelMsg struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

type OverMsg struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
	Level   int    `json:"level"`
}

// JoinedMsg confirms a join and lists who is already there
type JoinedMsg struct {
	SessionID string       `json:"sid"`
	Players   []PlayerInfo `json:"players"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
