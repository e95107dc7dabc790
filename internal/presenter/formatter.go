package presenter

import (
	"fmt"
	"strings"

	"github.com/wtfland/land-bot-go/internal/coordinator"
	"github.com/wtfland/land-bot-go/internal/msgcat"
	"github.com/wtfland/land-bot-go/internal/roomsession"
)

// PrefixProvider exposes the command prefix shown in message copy.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders coordinator outcomes into chat-ready text blocks.
type Formatter struct {
	catalog        *msgcat.Catalog
	prefixProvider PrefixProvider
	webURL         string
}

func NewFormatter(catalog *msgcat.Catalog, provider PrefixProvider, webURL string) *Formatter {
	return &Formatter{
		catalog:        catalog,
		prefixProvider: provider,
		webURL:         strings.TrimRight(webURL, "/"),
	}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

// JoinURL builds the shareable web link for a room code.
func (f *Formatter) JoinURL(code string) string {
	return f.webURL + "/room/" + strings.ToUpper(strings.TrimSpace(code))
}

// Outcome renders any coordinator outcome. Unknown outcomes fall back
// to a generic failure line so a command never goes unanswered.
func (f *Formatter) Outcome(out coordinator.Outcome) string {
	switch o := out.(type) {
	case coordinator.Created:
		return f.render("room.created", map[string]any{
			"Code":       o.RoomCode,
			"ModeLabel":  modeLabel(o.Mode),
			"MaxPlayers": o.MaxPlayers,
			"Creator":    o.CreatorName,
			"JoinURL":    f.JoinURL(o.RoomCode),
			"Prefix":     f.Prefix(),
		}, fmt.Sprintf("🎮 Room %s created. Join: %s", o.RoomCode, f.JoinURL(o.RoomCode)))
	case coordinator.Joined:
		return f.render("room.joined", map[string]any{
			"Code":    o.RoomCode,
			"Player":  o.PlayerName,
			"JoinURL": f.JoinURL(o.RoomCode),
		}, fmt.Sprintf("✅ %s joined room %s", o.PlayerName, o.RoomCode))
	case coordinator.Status:
		creator := o.CreatorName
		if creator == "" {
			creator = o.CreatorID
		}
		return f.render("room.status", map[string]any{
			"Code":        o.RoomCode,
			"ModeLabel":   modeLabel(o.Mode),
			"PlayerCount": len(o.Players),
			"MaxPlayers":  o.MaxPlayers,
			"Creator":     creator,
			"Players":     playerList(o.Players),
		}, fmt.Sprintf("📊 Room %s: %d/%d players", o.RoomCode, len(o.Players), o.MaxPlayers))
	case coordinator.Invite:
		return f.render("room.invite", map[string]any{
			"Code":    o.RoomCode,
			"JoinURL": f.JoinURL(o.RoomCode),
		}, fmt.Sprintf("🎮 Join room %s: %s", o.RoomCode, f.JoinURL(o.RoomCode)))
	case coordinator.NoActiveGame:
		return f.render("room.no_active", map[string]any{
			"Prefix": f.Prefix(),
		}, "❌ No active game in this server.")
	case coordinator.NotFound:
		return f.render("room.not_found", map[string]any{
			"Code": o.RoomCode,
		}, fmt.Sprintf("❌ Room not found: %s", o.RoomCode))
	case coordinator.ValidationError:
		return f.render("room.invalid_input", map[string]any{
			"Reason": o.Reason,
		}, "❌ "+o.Reason)
	case coordinator.RemoteFailure:
		return f.render("room.remote_failure", nil, "❌ The game server is not responding.")
	default:
		return "❌ Something went wrong. Please try again."
	}
}

func (f *Formatter) Info() string {
	return f.render("info", map[string]any{"Prefix": f.Prefix()}, "🎮 WTF LAND - multiplayer battle games.")
}

func (f *Formatter) Help() string {
	return f.render("help", map[string]any{"Prefix": f.Prefix()}, "❓ Commands: create, join, status, invite, info.")
}

func (f *Formatter) UnknownCommand() string {
	return f.render("unknown_command", map[string]any{"Prefix": f.Prefix()}, "Unknown command.")
}

func (f *Formatter) render(key string, data map[string]any, fallback string) string {
	if f == nil || f.catalog == nil {
		return fallback
	}
	text, err := f.catalog.Render(key, data)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

func modeLabel(m roomsession.GameMode) string {
	switch m {
	case roomsession.ModeLand:
		return "🌍 Land.io"
	case roomsession.ModeRoast:
		return "🔥 Roast Battle"
	default:
		return string(m)
	}
}

func playerList(players []string) string {
	if len(players) == 0 {
		return "none yet"
	}
	return strings.Join(players, ", ")
}
