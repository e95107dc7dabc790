package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/wtfland/land-bot-go/internal/gameapi"
	"github.com/wtfland/land-bot-go/internal/gateway"
)

func main() {
	gameURL := os.Getenv("GAME_API_URL")
	baseURL := os.Getenv("GATEWAY_BASE_URL")
	wsURL := os.Getenv("GATEWAY_WS_URL")
	token := os.Getenv("DISCORD_BOT_TOKEN")

	if gameURL == "" {
		gameURL = "http://localhost:5000"
	}

	game := gameapi.NewClient(gameURL, gameapi.WithTimeout(8*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := game.RoomStatus(ctx, "PROBE0"); err != nil {
		// Not-found means the API answered; anything unreachable is the
		// failure worth reporting.
		if errors.Is(err, gameapi.ErrUnreachable) {
			log.Printf("game api unreachable: %v", err)
		} else {
			log.Printf("game api ok (probe room rejected as expected): %v", err)
		}
	} else {
		log.Println("game api ok (probe room exists)")
	}

	if baseURL == "" {
		log.Println("GATEWAY_BASE_URL not set; skipping gateway check")
		return
	}

	headers := func() map[string]string {
		m := map[string]string{}
		if token != "" {
			m["Authorization"] = "Bot " + token
		}
		return m
	}

	gw := gateway.NewClient(baseURL,
		gateway.WithHeaderProvider(headers),
		gateway.WithTimeout(8*time.Second),
	)
	hctx, hcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer hcancel()
	health, err := gw.Health(hctx)
	if err != nil {
		log.Printf("/health error: %v", err)
	} else {
		log.Printf("/health ok: status=%s bot=%s guilds=%d", health.Status, health.BotUser, health.Guilds)
	}

	if wsURL == "" {
		log.Println("GATEWAY_WS_URL not set; skipping WS check")
		return
	}

	ws := gateway.NewWebSocket(wsURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state gateway.WebSocketState) {
		log.Printf("WS state: %s", state)
	})
	ws.OnInteraction(func(in *gateway.Interaction) {
		log.Printf("WS interaction guild=%s cmd=%s from=%s", in.GuildID, in.Command, in.UserName)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}

	// Observe for a short window
	t := time.NewTimer(10 * time.Second)
	<-t.C

	_ = ws.Close(context.Background())
}
