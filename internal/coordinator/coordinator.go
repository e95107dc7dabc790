package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wtfland/land-bot-go/internal/gameapi"
	"github.com/wtfland/land-bot-go/internal/roomsession"
)

// CreationRecorder persists created rooms for history; best effort only.
type CreationRecorder interface {
	SaveRoomCreated(ctx context.Context, s *roomsession.Session) error
}

// Coordinator orchestrates validated command intents into store and
// remote-client calls. The store only changes after confirmed remote
// success, so the local cache never drifts ahead of the server.
type Coordinator struct {
	store    roomsession.Store
	client   gameapi.RoomClient
	recorder CreationRecorder
	logger   *zap.Logger
}

type Option func(*Coordinator)

func WithRecorder(r CreationRecorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(store roomsession.Store, client gameapi.RoomClient, opts ...Option) *Coordinator {
	c := &Coordinator{store: store, client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateInput carries a validated-enough create invocation. MaxPlayers
// and Mode are checked here, before any remote call.
type CreateInput struct {
	GuildID       string
	RequesterID   string
	RequesterName string
	AvatarURL     string
	MaxPlayers    int
	Mode          string
}

func (c *Coordinator) Create(ctx context.Context, in CreateInput) Outcome {
	if in.MaxPlayers < roomsession.MinPlayers || in.MaxPlayers > roomsession.MaxPlayers {
		return ValidationError{Reason: fmt.Sprintf("max players must be between %d and %d", roomsession.MinPlayers, roomsession.MaxPlayers)}
	}
	mode, ok := roomsession.ParseMode(in.Mode)
	if !ok {
		return ValidationError{Reason: "mode must be one of: roast, land"}
	}

	created, err := c.client.CreateRoom(ctx, gameapi.CreateRoomRequest{
		Username:   in.RequesterName,
		AvatarURL:  in.AvatarURL,
		MaxPlayers: in.MaxPlayers,
		GameMode:   mode.Wire(),
	})
	if err != nil {
		c.logger.Warn("create_room_failed", zap.String("guild", in.GuildID), zap.Error(err))
		return RemoteFailure{Op: "create", Err: err}
	}

	sess := &roomsession.Session{
		GuildID:     in.GuildID,
		RoomCode:    strings.ToUpper(strings.TrimSpace(created.Code)),
		RoomID:      created.RoomID,
		CreatorID:   in.RequesterID,
		CreatorName: in.RequesterName,
		Mode:        mode,
		MaxPlayers:  in.MaxPlayers,
		Players:     []string{in.RequesterName},
		CreatedAt:   time.Now(),
	}
	if err := c.store.Put(ctx, in.GuildID, sess); err != nil {
		c.logger.Error("session_put_failed", zap.String("guild", in.GuildID), zap.Error(err))
	}
	c.record(sess)
	c.logger.Info("room_created",
		zap.String("guild", in.GuildID),
		zap.String("code", sess.RoomCode),
		zap.String("mode", string(mode)),
		zap.Int("max_players", in.MaxPlayers))

	return Created{
		RoomCode:    sess.RoomCode,
		RoomID:      sess.RoomID,
		Mode:        mode,
		MaxPlayers:  in.MaxPlayers,
		CreatorName: in.RequesterName,
	}
}

// JoinInput carries a join invocation; the code is canonicalized to
// uppercase before it reaches the wire.
type JoinInput struct {
	GuildID       string
	RequesterName string
	AvatarURL     string
	RoomCode      string
}

func (c *Coordinator) Join(ctx context.Context, in JoinInput) Outcome {
	code := strings.ToUpper(strings.TrimSpace(in.RoomCode))
	if code == "" {
		return ValidationError{Reason: "room code is required"}
	}

	if _, err := c.client.JoinRoom(ctx, gameapi.JoinRoomRequest{
		Username:  in.RequesterName,
		AvatarURL: in.AvatarURL,
		Code:      code,
	}); err != nil {
		if isNotFound(err) {
			return NotFound{RoomCode: code}
		}
		c.logger.Warn("join_room_failed", zap.String("guild", in.GuildID), zap.String("code", code), zap.Error(err))
		return RemoteFailure{Op: "join", Err: err}
	}

	// Local list is advisory: no dedup, no capacity cap. Reconciled by a
	// later status call against the server roster.
	if err := c.store.AppendPlayer(ctx, in.GuildID, in.RequesterName); err != nil {
		c.logger.Error("session_append_failed", zap.String("guild", in.GuildID), zap.Error(err))
	}
	c.logger.Info("room_joined", zap.String("guild", in.GuildID), zap.String("code", code), zap.String("player", in.RequesterName))
	return Joined{RoomCode: code, PlayerName: in.RequesterName}
}

func (c *Coordinator) Status(ctx context.Context, guildID string) Outcome {
	sess, err := c.store.Get(ctx, guildID)
	if err != nil {
		c.logger.Error("session_get_failed", zap.String("guild", guildID), zap.Error(err))
		return RemoteFailure{Op: "status", Err: err}
	}
	if sess == nil {
		return NoActiveGame{}
	}

	state, err := c.client.RoomStatus(ctx, sess.RoomCode)
	if err != nil {
		// Stale-but-present beats discarding known state: the cached
		// session is left intact.
		c.logger.Warn("room_status_failed", zap.String("guild", guildID), zap.String("code", sess.RoomCode), zap.Error(err))
		return RemoteFailure{Op: "status", Err: err}
	}

	players := make([]string, 0, len(state.Players))
	for _, p := range state.Players {
		players = append(players, p.Username)
	}
	if err := c.store.ReplacePlayers(ctx, guildID, players); err != nil {
		c.logger.Error("session_replace_failed", zap.String("guild", guildID), zap.Error(err))
	}

	return Status{
		RoomCode:    sess.RoomCode,
		CreatorID:   sess.CreatorID,
		CreatorName: sess.CreatorName,
		Mode:        sess.Mode,
		MaxPlayers:  sess.MaxPlayers,
		Players:     players,
	}
}

func (c *Coordinator) Invite(ctx context.Context, guildID string) Outcome {
	sess, err := c.store.Get(ctx, guildID)
	if err != nil {
		c.logger.Error("session_get_failed", zap.String("guild", guildID), zap.Error(err))
		return RemoteFailure{Op: "invite", Err: err}
	}
	if sess == nil {
		return NoActiveGame{}
	}
	return Invite{RoomCode: sess.RoomCode, Mode: sess.Mode}
}

func (c *Coordinator) record(sess *roomsession.Session) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.recorder.SaveRoomCreated(ctx, sess); err != nil {
		c.logger.Warn("history_save_failed", zap.String("code", sess.RoomCode), zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gameapi.ErrRoomNotFound)
}
