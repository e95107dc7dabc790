package gateway

import "context"

// Interaction is a parsed slash-command invocation relayed by the gateway.
type Interaction struct {
	GuildID   string            `json:"guild_id"`
	ChannelID string            `json:"channel_id"`
	UserID    string            `json:"user_id"`
	UserName  string            `json:"username"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	Command   string            `json:"command"`
	Options   map[string]string `json:"options,omitempty"`
}

// ReplyRequest is the outbound frame for both HTTP and WS egress.
type ReplyRequest struct {
	Type    string `json:"type"` // "text" | "image"
	Channel string `json:"channel"`
	Data    string `json:"data"`
}

// HealthStatus is returned by the gateway /health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	BotUser string `json:"bot_user,omitempty"`
	Guilds  int    `json:"guilds,omitempty"`
}

type WebSocketState string

const (
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateReconnecting WebSocketState = "RECONNECTING"
	WSStateFailed       WebSocketState = "FAILED"
)

type InteractionCallback func(in *Interaction)

type StateCallback func(state WebSocketState)

type WSClient interface {
	Connect(ctx context.Context) error
	OnInteraction(cb InteractionCallback) int
	RemoveInteractionCallback(id int)
	OnStateChange(cb StateCallback) int
	RemoveStateCallback(id int)
	Close(ctx context.Context) error
}
