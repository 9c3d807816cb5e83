package api

import "encoding/json"

// BoardRecord is the board the server attaches to a game.
type BoardRecord struct {
	// Board is eight comma-separated hex row-strings, Primary-relative.
	Board             string
	ActiveCheck       bool `json:",omitempty"`
	ActiveCheckMate   bool `json:",omitempty"`
	InactiveCheck     bool `json:",omitempty"`
	InactiveCheckMate bool `json:",omitempty"`
	Moves             uint `json:",omitempty"`
}

// GameSnapshot is a game as reported by the server to one agent. It is
// read-only to the client and never cached across requests.
type GameSnapshot struct {
	GameID            string
	ActiveAgent       string
	ActiveAgentPurple *bool
	ActiveAgentType   string `json:",omitempty"`
	InactiveAgent     string `json:",omitempty"`
	InactiveAgentType string `json:",omitempty"`
	Board             BoardRecord
	End               bool `json:",omitempty"`
	MoveCount         int  `json:",omitempty"`
	MovesSincePawn    int  `json:",omitempty"`
}

// GameResponse wraps a single game.
type GameResponse struct {
	Href string
	Game GameSnapshot
}

// GamesResponse lists open games.
type GamesResponse struct {
	Href  string
	Games []GameSnapshot
}

// PlaysResponse lists the moves available in a game, Primary-oriented.
type PlaysResponse struct {
	Href   string
	Boards json.RawMessage `json:",omitempty"`
	Moves  []string
}

type agentRequest struct {
	Type   string
	GameID string
}

type playRequest struct {
	Move string
}
