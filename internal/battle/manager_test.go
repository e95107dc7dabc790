package battle

import (
	"context"
	"errors"
	"testing"
)

type stubCommenter struct {
	comment string
	winners []string
}

func (s *stubCommenter) GenerateVoteComment(ctx context.Context, winner string) string {
	s.winners = append(s.winners, winner)
	return s.comment
}

var roster = []string{"Alice", "Bob", "Carol", "Dave"}

func TestStartPicksTwoDistinctPerformers(t *testing.T) {
	m := NewManager(nil)

	for i := 0; i < 100; i++ {
		b, err := m.Start("ROOM1", roster)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if b.Performer1 == b.Performer2 {
			t.Fatalf("performers must differ, got %q twice", b.Performer1)
		}
		if b.ID == "" || b.RoomCode != "ROOM1" {
			t.Fatalf("unexpected battle: %+v", b)
		}
		if _, err := m.Resolve(context.Background(), b.ID); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.Start("ROOM1", []string{"Alice"}); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
	if _, err := m.Start("  ", roster); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected ErrInvalidArgs for blank room, got %v", err)
	}
}

func TestStartOnePerRoom(t *testing.T) {
	m := NewManager(nil)
	b, err := m.Start("room1", roster)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Case variants address the same room
	if _, err := m.Start("ROOM1", roster); !errors.Is(err, ErrRoomBusy) {
		t.Fatalf("expected ErrRoomBusy, got %v", err)
	}
	if _, err := m.Start("ROOM2", roster); err != nil {
		t.Fatalf("other rooms must stay independent: %v", err)
	}
	if _, err := m.Resolve(context.Background(), b.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Room frees up after resolution
	if _, err := m.Start("ROOM1", roster); err != nil {
		t.Fatalf("Start after resolve: %v", err)
	}
}

func TestCastVoteValidation(t *testing.T) {
	m := NewManager(nil, WithPicker(pinnedPicker(0, 1)))
	b, err := m.Start("ROOM1", roster)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := m.CastVote(b.ID, "v1", "Nobody"); !errors.Is(err, ErrNotAPerformer) {
		t.Fatalf("expected ErrNotAPerformer, got %v", err)
	}
	if err := m.CastVote("missing", "v1", b.Performer1); !errors.Is(err, ErrBattleNotFound) {
		t.Fatalf("expected ErrBattleNotFound, got %v", err)
	}
	if err := m.CastVote(b.ID, "v1", b.Performer1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	// Re-voting overwrites, not duplicates
	if err := m.CastVote(b.ID, "v1", b.Performer2); err != nil {
		t.Fatalf("CastVote overwrite: %v", err)
	}

	active := m.Active("ROOM1")
	if active == nil || len(active.Votes) != 1 || active.Votes["v1"] != b.Performer2 {
		t.Fatalf("expected single overwritten vote, got %+v", active)
	}
}

func TestResolveCountsVotes(t *testing.T) {
	com := &stubCommenter{comment: "Savage delivery"}
	m := NewManager(com, WithPicker(pinnedPicker(0, 1)))
	b, err := m.Start("ROOM1", roster)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, v := range []string{"v1", "v2", "v3"} {
		if err := m.CastVote(b.ID, v, b.Performer1); err != nil {
			t.Fatalf("CastVote: %v", err)
		}
	}
	if err := m.CastVote(b.ID, "v4", b.Performer2); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	res, err := m.Resolve(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Winner != b.Performer1 || res.Loser != b.Performer2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.VotesForWinner != 3 || res.VotesForLoser != 1 {
		t.Fatalf("unexpected tallies: %+v", res)
	}
	if res.Comment != "Savage delivery" {
		t.Fatalf("expected commenter output, got %q", res.Comment)
	}
	if len(com.winners) != 1 || com.winners[0] != b.Performer1 {
		t.Fatalf("commenter saw wrong winner: %v", com.winners)
	}
}

func TestResolveTieGoesToSecondPerformer(t *testing.T) {
	m := NewManager(nil, WithPicker(pinnedPicker(0, 1)))
	b, err := m.Start("ROOM1", roster)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.CastVote(b.ID, "v1", b.Performer1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if err := m.CastVote(b.ID, "v2", b.Performer2); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	res, err := m.Resolve(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Winner != b.Performer2 {
		t.Fatalf("tie must go to the second performer, got %q", res.Winner)
	}
}

func TestResolveTwiceFails(t *testing.T) {
	m := NewManager(nil)
	b, err := m.Start("ROOM1", roster)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := m.Resolve(context.Background(), b.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := m.Resolve(context.Background(), b.ID); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if err := m.CastVote(b.ID, "v1", b.Performer1); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved on late vote, got %v", err)
	}
}

func TestActiveReturnsCopy(t *testing.T) {
	m := NewManager(nil)
	if b := m.Active("NOPE"); b != nil {
		t.Fatalf("expected nil for unknown room, got %+v", b)
	}

	b, err := m.Start("ROOM1", roster)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.CastVote(b.ID, "v1", b.Performer1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	got := m.Active("room1")
	got.Votes["hax"] = got.Performer2

	again := m.Active("ROOM1")
	if len(again.Votes) != 1 {
		t.Fatalf("caller mutation leaked into manager: %+v", again.Votes)
	}
}

// pinnedPicker returns first, then second, then repeats second.
func pinnedPicker(first, second int) func(n int) int {
	calls := 0
	return func(n int) int {
		calls++
		if calls == 1 {
			return first
		}
		return second
	}
}
