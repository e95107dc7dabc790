package coordinator

import "github.com/wtfland/land-bot-go/internal/roomsession"

// Outcome is the structured result of one command, consumed by the
// presentation layer. Every command path produces exactly one Outcome;
// no failure is silent.
type Outcome interface{ outcome() }

// Created: a room was created remotely and the guild session replaced.
type Created struct {
	RoomCode    string
	RoomID      string
	Mode        roomsession.GameMode
	MaxPlayers  int
	CreatorName string
}

// Joined: the requester joined the room on the remote server.
type Joined struct {
	RoomCode   string
	PlayerName string
}

// Status: a reconciled view of the guild's active room.
type Status struct {
	RoomCode    string
	CreatorID   string
	CreatorName string
	Mode        roomsession.GameMode
	MaxPlayers  int
	Players     []string
}

// Invite: the stored room code, read without a remote call.
type Invite struct {
	RoomCode string
	Mode     roomsession.GameMode
}

// NoActiveGame: the guild has no session.
type NoActiveGame struct{}

// NotFound: the remote server does not know the given code.
type NotFound struct {
	RoomCode string
}

// ValidationError: bad user input, rejected before any remote call.
type ValidationError struct {
	Reason string
}

// RemoteFailure: the game server call failed; local state untouched.
type RemoteFailure struct {
	Op  string
	Err error
}

func (Created) outcome()         {}
func (Joined) outcome()          {}
func (Status) outcome()          {}
func (Invite) outcome()          {}
func (NoActiveGame) outcome()    {}
func (NotFound) outcome()        {}
func (ValidationError) outcome() {}
func (RemoteFailure) outcome()   {}
