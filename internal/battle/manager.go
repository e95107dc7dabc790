package battle

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrNotEnoughPlayers = errors.New("need at least two players for a battle")
	ErrBattleNotFound   = errors.New("battle not found")
	ErrAlreadyResolved  = errors.New("battle already resolved")
	ErrRoomBusy         = errors.New("room already has an active battle")
	ErrNotAPerformer    = errors.New("vote target is not a performer")
)

// Battle is one roast face-off between two performers in a room.
type Battle struct {
	ID         string
	RoomCode   string
	Performer1 string
	Performer2 string
	Votes      map[string]string // voter id -> performer name
	Resolved   bool
	Winner     string
	CreatedAt  time.Time
}

// Result summarizes a resolved battle. Comment comes from the roast
// generator and never blocks resolution.
type Result struct {
	BattleID       string
	Winner         string
	Loser          string
	VotesForWinner int
	VotesForLoser  int
	Comment        string
}

// Commenter produces the winner comment; satisfied by roast.Generator.
type Commenter interface {
	GenerateVoteComment(ctx context.Context, winner string) string
}

// Manager owns in-flight battles. One active battle per room at a time.
type Manager struct {
	mu     sync.RWMutex
	byID   map[string]*Battle
	byRoom map[string]string

	pick      func(n int) int
	commenter Commenter
}

type Option func(*Manager)

// WithPicker injects the performer selection source.
func WithPicker(pick func(n int) int) Option {
	return func(m *Manager) { m.pick = pick }
}

func NewManager(commenter Commenter, opts ...Option) *Manager {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	m := &Manager{
		byID:      make(map[string]*Battle),
		byRoom:    make(map[string]string),
		pick:      rng.Intn,
		commenter: commenter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start picks two distinct performers at random and opens a battle.
func (m *Manager) Start(roomCode string, players []string) (*Battle, error) {
	roomCode = strings.ToUpper(strings.TrimSpace(roomCode))
	if roomCode == "" {
		return nil, ErrInvalidArgs
	}
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.byRoom[roomCode]; busy {
		return nil, ErrRoomBusy
	}

	first := m.pick(len(players))
	second := m.pick(len(players))
	for second == first {
		second = m.pick(len(players))
	}

	b := &Battle{
		ID:         uuid.NewString(),
		RoomCode:   roomCode,
		Performer1: players[first],
		Performer2: players[second],
		Votes:      make(map[string]string),
		CreatedAt:  time.Now(),
	}
	m.byID[b.ID] = b
	m.byRoom[roomCode] = b.ID
	return cloneBattle(b), nil
}

// CastVote records or overwrites one voter's pick.
func (m *Manager) CastVote(battleID, voterID, performer string) error {
	if strings.TrimSpace(battleID) == "" || strings.TrimSpace(voterID) == "" {
		return ErrInvalidArgs
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.byID[battleID]
	if !ok {
		return ErrBattleNotFound
	}
	if b.Resolved {
		return ErrAlreadyResolved
	}
	if performer != b.Performer1 && performer != b.Performer2 {
		return ErrNotAPerformer
	}
	b.Votes[voterID] = performer
	return nil
}

// Active returns the open battle for a room, or nil.
func (m *Manager) Active(roomCode string) *Battle {
	roomCode = strings.ToUpper(strings.TrimSpace(roomCode))
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byRoom[roomCode]
	if !ok {
		return nil
	}
	return cloneBattle(m.byID[id])
}

// Resolve tallies votes and closes the battle. Ties go to the second
// performer.
func (m *Manager) Resolve(ctx context.Context, battleID string) (*Result, error) {
	m.mu.Lock()
	b, ok := m.byID[battleID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrBattleNotFound
	}
	if b.Resolved {
		m.mu.Unlock()
		return nil, ErrAlreadyResolved
	}

	votes1, votes2 := 0, 0
	for _, p := range b.Votes {
		if p == b.Performer1 {
			votes1++
		} else {
			votes2++
		}
	}
	winner, loser := b.Performer2, b.Performer1
	winnerVotes, loserVotes := votes2, votes1
	if votes1 > votes2 {
		winner, loser = b.Performer1, b.Performer2
		winnerVotes, loserVotes = votes1, votes2
	}
	b.Resolved = true
	b.Winner = winner
	delete(m.byRoom, b.RoomCode)
	m.mu.Unlock()

	res := &Result{
		BattleID:       b.ID,
		Winner:         winner,
		Loser:          loser,
		VotesForWinner: winnerVotes,
		VotesForLoser:  loserVotes,
	}
	if m.commenter != nil {
		res.Comment = m.commenter.GenerateVoteComment(ctx, winner)
	}
	return res, nil
}

func cloneBattle(b *Battle) *Battle {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Votes = make(map[string]string, len(b.Votes))
	for k, v := range b.Votes {
		cp.Votes[k] = v
	}
	return &cp
}
