package roomsession

import (
	"strings"
	"time"
)

// GameMode selects which battle mode the room runs.
type GameMode string

const (
	ModeRoast GameMode = "ROAST"
	ModeLand  GameMode = "LAND"
)

// ParseMode canonicalizes case-insensitive user input. The second return
// is false for anything outside {roast, land}.
func ParseMode(s string) (GameMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "roast":
		return ModeRoast, true
	case "land":
		return ModeLand, true
	default:
		return "", false
	}
}

// Wire returns the lowercase token the game API expects.
func (m GameMode) Wire() string { return strings.ToLower(string(m)) }

const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Session is the single active room a guild currently considers its game.
// RoomCode is always stored uppercase. Players is advisory on the local
// side; a status reconciliation replaces it with the server roster.
type Session struct {
	GuildID     string    `json:"guild_id"`
	RoomCode    string    `json:"room_code"`
	RoomID      string    `json:"room_id"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	Mode        GameMode  `json:"mode"`
	MaxPlayers  int       `json:"max_players"`
	Players     []string  `json:"players"`
	CreatedAt   time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Players = append([]string(nil), s.Players...)
	return &cp
}
