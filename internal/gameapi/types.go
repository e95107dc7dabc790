package gameapi

// CreateRoomRequest is the body for POST /api/rooms/create.
// AvatarURL is passed through only when the platform provided one.
type CreateRoomRequest struct {
	Username   string `json:"username"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	MaxPlayers int    `json:"maxPlayers"`
	GameMode   string `json:"gameMode"`
}

// CreatedRoom is the 201 response of room creation.
type CreatedRoom struct {
	Code   string `json:"code"`
	RoomID string `json:"roomId"`
}

// JoinRoomRequest is the body for POST /api/rooms/join.
type JoinRoomRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Code      string `json:"code"`
}

// JoinData is the 200 response of a join. The server may include more
// fields; only these are consumed.
type JoinData struct {
	Code   string `json:"code,omitempty"`
	RoomID string `json:"roomId,omitempty"`
}

type RoomPlayer struct {
	Username string `json:"username"`
	IsBot    bool   `json:"isBot,omitempty"`
}

// RoomState is the authoritative room view from GET /api/rooms/{code}.
type RoomState struct {
	Code       string       `json:"code,omitempty"`
	Status     string       `json:"status,omitempty"`
	GameMode   string       `json:"gameMode,omitempty"`
	MaxPlayers int          `json:"maxPlayers,omitempty"`
	Players    []RoomPlayer `json:"players"`
}
