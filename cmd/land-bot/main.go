package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wtfland/land-bot-go/internal/battle"
	appcfg "github.com/wtfland/land-bot-go/internal/config"
	"github.com/wtfland/land-bot-go/internal/coordinator"
	"github.com/wtfland/land-bot-go/internal/gameapi"
	"github.com/wtfland/land-bot-go/internal/gateway"
	"github.com/wtfland/land-bot-go/internal/history"
	"github.com/wtfland/land-bot-go/internal/msgcat"
	"github.com/wtfland/land-bot-go/internal/obslog"
	"github.com/wtfland/land-bot-go/internal/presenter"
	"github.com/wtfland/land-bot-go/internal/roast"
	"github.com/wtfland/land-bot-go/internal/roomsession"
)

const commandTimeout = 15 * time.Second

type app struct {
	cfg       *appcfg.AppConfig
	coord     *coordinator.Coordinator
	battles   *battle.Manager
	roasts    *roast.Generator
	repo      *history.Repository
	pres      *presenter.Presenter
	formatter *presenter.Formatter
	logger    *zap.Logger
}

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	headers := func() map[string]string {
		return map[string]string{"Authorization": "Bot " + cfg.BotToken}
	}

	gw := gateway.NewClient(cfg.GatewayBaseURL, gateway.WithHeaderProvider(headers))
	ws := gateway.NewWebSocket(cfg.GatewayWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state gateway.WebSocketState) {
		logger.Info("ws_state", zap.String("state", string(state)))
	})
	egress := gateway.NewEgress(getenvDefault("EGRESS_MODE", "auto"), false, gw, ws, logger)

	var store roomsession.Store
	if cfg.RedisURL != "" {
		store, err = roomsession.NewRedisStoreFromURL(cfg.RedisURL, time.Duration(cfg.SessionTTLSec)*time.Second)
		if err != nil {
			log.Fatalf("redis store init error: %v", err)
		}
	} else {
		store = roomsession.NewMemoryStore()
	}

	game := gameapi.NewClient(cfg.GameAPIURL,
		gameapi.WithTimeout(time.Duration(cfg.GameAPITimeoutSec)*time.Second))

	coordOpts := []coordinator.Option{coordinator.WithLogger(logger)}
	var repo *history.Repository
	if cfg.DatabaseURL != "" {
		repo, err = history.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("history repo init error: %v", err)
		}
		coordOpts = append(coordOpts, coordinator.WithRecorder(repo))
	}
	coord := coordinator.New(store, game, coordOpts...)

	var backend roast.Backend
	if cfg.XAIAPIKey != "" {
		backend = roast.NewClient("https://api.x.ai/v1", cfg.XAIAPIKey,
			roast.WithModel(cfg.RoastModel),
			roast.WithTimeout(time.Duration(cfg.RoastTimeoutSec)*time.Second))
	}
	roasts := roast.NewGenerator(backend, roast.WithLogger(logger))
	battles := battle.NewManager(roasts)

	catalog, err := msgcat.New(strings.TrimSpace(os.Getenv("MESSAGE_TEMPLATE_DIR")))
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}
	formatter := presenter.NewFormatter(catalog, prefixProvider{prefix: cfg.BotPrefix}, cfg.GameWebURL)
	pres := presenter.NewPresenter(
		func(channel, message string) error { return egress.SendText(context.Background(), channel, message) },
		func(channel, imageBase64 string) error { return egress.SendImage(context.Background(), channel, imageBase64) },
		cfg.InviteQRSize,
	)

	a := &app{
		cfg:       cfg,
		coord:     coord,
		battles:   battles,
		roasts:    roasts,
		repo:      repo,
		pres:      pres,
		formatter: formatter,
		logger:    logger,
	}

	ws.OnInteraction(func(in *gateway.Interaction) {
		if in == nil || in.Command == "" {
			return
		}
		if len(cfg.AllowedGuilds) > 0 && !guildAllowed(cfg.AllowedGuilds, in.GuildID) {
			logger.Debug("ignore interaction", zap.String("guild", in.GuildID))
			return
		}
		// Avoid blocking the WS loop
		go a.handleInteraction(in)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		log.Fatalf("ws connect error: %v", err)
	}
	cancel()
	logger.Info("land bot ready", zap.String("game_api", cfg.GameAPIURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = ws.Close(context.Background())
	if repo != nil {
		_ = repo.Close()
	}
}

func (a *app) handleInteraction(in *gateway.Interaction) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch strings.ToLower(in.Command) {
	case "create":
		a.handleCreate(ctx, in)
	case "join":
		a.handleJoin(ctx, in)
	case "status":
		a.reply(in.ChannelID, a.formatter.Outcome(a.coord.Status(ctx, in.GuildID)))
	case "invite":
		a.handleInvite(ctx, in)
	case "battle":
		a.handleBattle(ctx, in)
	case "info":
		a.reply(in.ChannelID, a.formatter.Info())
	case "help":
		a.reply(in.ChannelID, a.formatter.Help())
	default:
		a.reply(in.ChannelID, a.formatter.UnknownCommand())
	}
}

func (a *app) handleCreate(ctx context.Context, in *gateway.Interaction) {
	maxPlayers := a.cfg.DefaultMaxPlayers
	if v := strings.TrimSpace(in.Options["max_players"]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			a.reply(in.ChannelID, a.formatter.Outcome(coordinator.ValidationError{Reason: "max players must be a number"}))
			return
		}
		maxPlayers = n
	}
	mode := a.cfg.DefaultGameMode
	if v := strings.TrimSpace(in.Options["mode"]); v != "" {
		mode = v
	}

	out := a.coord.Create(ctx, coordinator.CreateInput{
		GuildID:       in.GuildID,
		RequesterID:   in.UserID,
		RequesterName: in.UserName,
		AvatarURL:     in.AvatarURL,
		MaxPlayers:    maxPlayers,
		Mode:          mode,
	})
	a.reply(in.ChannelID, a.formatter.Outcome(out))
}

func (a *app) handleJoin(ctx context.Context, in *gateway.Interaction) {
	out := a.coord.Join(ctx, coordinator.JoinInput{
		GuildID:       in.GuildID,
		RequesterName: in.UserName,
		AvatarURL:     in.AvatarURL,
		RoomCode:      in.Options["code"],
	})
	a.reply(in.ChannelID, a.formatter.Outcome(out))
}

func (a *app) handleInvite(ctx context.Context, in *gateway.Interaction) {
	out := a.coord.Invite(ctx, in.GuildID)
	inv, ok := out.(coordinator.Invite)
	if !ok {
		a.reply(in.ChannelID, a.formatter.Outcome(out))
		return
	}
	text := a.formatter.Outcome(inv)
	if err := a.pres.InviteCard(in.ChannelID, text, a.formatter.JoinURL(inv.RoomCode)); err != nil {
		a.logger.Warn("send invite failed", zap.String("channel", in.ChannelID), zap.Error(err))
	}
}

// handleBattle drives the roast-battle flow: start picks two performers
// from the reconciled roster, vote records a pick, end resolves and
// announces the winner.
func (a *app) handleBattle(ctx context.Context, in *gateway.Interaction) {
	switch strings.ToLower(strings.TrimSpace(in.Options["action"])) {
	case "start":
		st := a.coord.Status(ctx, in.GuildID)
		status, ok := st.(coordinator.Status)
		if !ok {
			a.reply(in.ChannelID, a.formatter.Outcome(st))
			return
		}
		b, err := a.battles.Start(status.RoomCode, status.Players)
		if err != nil {
			a.reply(in.ChannelID, "❌ "+err.Error())
			return
		}
		opener := a.roasts.GenerateRoast(ctx, b.Performer2, "", "opening round in room "+b.RoomCode)
		a.reply(in.ChannelID, "🔥 ROAST BATTLE: "+b.Performer1+" vs "+b.Performer2+"\n"+b.Performer1+" opens: "+opener)
	case "vote":
		b := a.battles.Active(a.activeRoomCode(ctx, in.GuildID))
		if b == nil {
			a.reply(in.ChannelID, "❌ No battle in progress.")
			return
		}
		if err := a.battles.CastVote(b.ID, in.UserID, strings.TrimSpace(in.Options["performer"])); err != nil {
			a.reply(in.ChannelID, "❌ "+err.Error())
			return
		}
		a.reply(in.ChannelID, "🗳️ Vote counted!")
	case "end":
		b := a.battles.Active(a.activeRoomCode(ctx, in.GuildID))
		if b == nil {
			a.reply(in.ChannelID, "❌ No battle in progress.")
			return
		}
		res, err := a.battles.Resolve(ctx, b.ID)
		if err != nil {
			a.reply(in.ChannelID, "❌ "+err.Error())
			return
		}
		if a.repo != nil {
			if err := a.repo.SaveBattleResult(ctx, b.RoomCode, res); err != nil {
				a.logger.Warn("battle_save_failed", zap.String("battle", res.BattleID), zap.Error(err))
			}
		}
		a.reply(in.ChannelID, "🏆 "+res.Winner+" wins "+strconv.Itoa(res.VotesForWinner)+"-"+strconv.Itoa(res.VotesForLoser)+"! "+res.Comment)
	default:
		a.reply(in.ChannelID, "Usage: battle start | battle vote <performer> | battle end")
	}
}

func (a *app) activeRoomCode(ctx context.Context, guildID string) string {
	out := a.coord.Invite(ctx, guildID)
	if inv, ok := out.(coordinator.Invite); ok {
		return inv.RoomCode
	}
	return ""
}

func (a *app) reply(channel, message string) {
	if err := a.pres.Text(channel, message); err != nil {
		a.logger.Warn("send reply failed", zap.String("channel", channel), zap.Error(err))
	}
}

func guildAllowed(allowed []string, guild string) bool {
	for _, g := range allowed {
		if g == guild {
			return true
		}
	}
	return false
}

func getenvDefault(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }
