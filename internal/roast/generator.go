package roast

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	roastMaxLen   = 150
	roastTruncLen = 147
	truncMarker   = "..."
	voteMaxLen    = 50

	roastSystemPrompt = "You are a legendary roast battle master. Generate SHORT (max 150 chars), BRUTAL, WITTY roasts that will make people laugh. Be creative, reference pop culture, wordplay, anything goes. Make it SAVAGE."
	voteSystemPrompt  = "You are voting in a roast battle game. Generate a SHORT (max 50 chars) reaction/comment explaining why you voted for someone."

	voteFallback = "That roast was 🔥"
)

// Canned roasts used when the completion backend is unavailable. The
// {target} placeholder is substituted with the target's display name.
var fallbackRoasts = []string{
	"I'd roast you harder but your internet connection already did the job, {target}",
	"Your roasts are like your gameplay - non-existent, {target}",
	"{target}? More like {target}-DESTROYED",
	"I heard you practice your roasts in the mirror... they still need work",
	"That roast was as weak as your connection speed",
	"{target} walked so you could run... directly into a wall",
}

// Generator produces roast text, masking every backend failure behind a
// canned fallback so the match flow never blocks on the AI service.
type Generator struct {
	backend Backend
	logger  *zap.Logger

	mu   sync.Mutex
	pick func(n int) int
}

type GeneratorOption func(*Generator)

// WithPicker injects the fallback selection source (uniform over [0,n)).
func WithPicker(pick func(n int) int) GeneratorOption {
	return func(g *Generator) { g.pick = pick }
}

func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewGenerator(backend Backend, opts ...GeneratorOption) *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	g := &Generator{
		backend: backend,
		logger:  zap.NewNop(),
		pick:    rng.Intn,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateRoast never fails from the caller's perspective.
func (g *Generator) GenerateRoast(ctx context.Context, target, opponentRoast, matchContext string) string {
	prompt := buildRoastPrompt(target, opponentRoast, matchContext)

	if g.backend != nil {
		text, err := g.backend.Complete(ctx, roastSystemPrompt, prompt, 100)
		if err == nil && strings.TrimSpace(text) != "" {
			return capRoast(strings.TrimSpace(text))
		}
		if err != nil {
			g.logger.Warn("roast_backend_failed", zap.Error(err))
		}
	}
	return g.fallbackRoast(target)
}

// GenerateVoteComment follows the same always-succeeds contract with a
// shorter cap and a single canned fallback.
func (g *Generator) GenerateVoteComment(ctx context.Context, winner string) string {
	if g.backend != nil {
		user := fmt.Sprintf("Generate a short voting comment for why %s won the roast battle.", winner)
		text, err := g.backend.Complete(ctx, voteSystemPrompt, user, 30)
		if err == nil && strings.TrimSpace(text) != "" {
			return capRunes(strings.TrimSpace(text), voteMaxLen)
		}
		if err != nil {
			g.logger.Warn("vote_backend_failed", zap.Error(err))
		}
	}
	return voteFallback
}

func (g *Generator) fallbackRoast(target string) string {
	g.mu.Lock()
	idx := g.pick(len(fallbackRoasts))
	g.mu.Unlock()
	if idx < 0 || idx >= len(fallbackRoasts) {
		idx = 0
	}
	return strings.ReplaceAll(fallbackRoasts[idx], "{target}", target)
}

func buildRoastPrompt(target, opponentRoast, matchContext string) string {
	var sb strings.Builder
	sb.WriteString("You are a legendary roast battle participant in a game called WTF Land.\n")
	sb.WriteString("Generate a BRUTAL, WITTY, and HILARIOUS roast response. Keep it under 150 characters.\n")
	sb.WriteString("Make it personal, clever, and absolutely savage - but not mean-spirited.\n\n")
	sb.WriteString("Target: @")
	sb.WriteString(target)
	sb.WriteString("\n")
	if strings.TrimSpace(opponentRoast) != "" {
		sb.WriteString("They said: \"")
		sb.WriteString(opponentRoast)
		sb.WriteString("\"\n")
	}
	if strings.TrimSpace(matchContext) != "" {
		sb.WriteString("Context: ")
		sb.WriteString(matchContext)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRoast (short, brutal, witty):")
	return sb.String()
}

func capRoast(s string) string {
	r := []rune(s)
	if len(r) <= roastMaxLen {
		return s
	}
	return string(r[:roastTruncLen]) + truncMarker
}

func capRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
