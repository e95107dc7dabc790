package roomsession

import "context"

// Store maps a guild to at most one active session. Every operation is
// atomic with respect to concurrent invocations for the same guild.
// Nothing removes a session; Put overwrites wholesale.
type Store interface {
	// Put unconditionally replaces any existing session for the guild.
	Put(ctx context.Context, guildID string, s *Session) error
	// AppendPlayer appends to the player list; no-op when the guild has
	// no session (not an error).
	AppendPlayer(ctx context.Context, guildID, playerName string) error
	// Get returns the current session, or (nil, nil) when absent.
	Get(ctx context.Context, guildID string) (*Session, error)
	// ReplacePlayers swaps the player list with an authoritative roster;
	// no-op when the guild has no session.
	ReplacePlayers(ctx context.Context, guildID string, players []string) error
}
