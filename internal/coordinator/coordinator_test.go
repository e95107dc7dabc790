package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/wtfland/land-bot-go/internal/gameapi"
	"github.com/wtfland/land-bot-go/internal/roomsession"
)

type stubClient struct {
	mu          sync.Mutex
	createCalls int
	joinCalls   int
	statusCalls int
	lastCreate  gameapi.CreateRoomRequest
	lastJoin    gameapi.JoinRoomRequest
	lastCode    string

	createErr error
	joinErr   error
	statusErr error
	created   gameapi.CreatedRoom
	state     gameapi.RoomState
}

func (s *stubClient) CreateRoom(ctx context.Context, req gameapi.CreateRoomRequest) (*gameapi.CreatedRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.lastCreate = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	out := s.created
	return &out, nil
}

func (s *stubClient) JoinRoom(ctx context.Context, req gameapi.JoinRoomRequest) (*gameapi.JoinData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinCalls++
	s.lastJoin = req
	if s.joinErr != nil {
		return nil, s.joinErr
	}
	return &gameapi.JoinData{}, nil
}

func (s *stubClient) RoomStatus(ctx context.Context, code string) (*gameapi.RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls++
	s.lastCode = code
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	out := s.state
	return &out, nil
}

func newTestCoordinator(client *stubClient) (*Coordinator, roomsession.Store) {
	store := roomsession.NewMemoryStore()
	return New(store, client), store
}

func validCreate() CreateInput {
	return CreateInput{
		GuildID:       "g1",
		RequesterID:   "u1",
		RequesterName: "Alice",
		MaxPlayers:    4,
		Mode:          "roast",
	}
}

func TestCreateStoresSession(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "abc123", RoomID: "room-1"}}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	out := c.Create(ctx, validCreate())
	created, ok := out.(Created)
	if !ok {
		t.Fatalf("expected Created, got %T (%v)", out, out)
	}
	if created.RoomCode != "ABC123" {
		t.Fatalf("expected canonical code ABC123, got %q", created.RoomCode)
	}
	if client.lastCreate.GameMode != "roast" {
		t.Fatalf("expected wire mode roast, got %q", client.lastCreate.GameMode)
	}

	sess, err := store.Get(ctx, "g1")
	if err != nil || sess == nil {
		t.Fatalf("Get after create: sess=%v err=%v", sess, err)
	}
	if sess.RoomCode != "ABC123" || sess.CreatorID != "u1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if len(sess.Players) != 1 || sess.Players[0] != "Alice" {
		t.Fatalf("expected creator-only roster, got %v", sess.Players)
	}
}

func TestCreateOverwritesPreviousSession(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	if _, ok := c.Create(ctx, validCreate()).(Created); !ok {
		t.Fatalf("first create failed")
	}
	client.created = gameapi.CreatedRoom{Code: "BBB222", RoomID: "r2"}
	in := validCreate()
	in.RequesterName = "Bob"
	in.RequesterID = "u2"
	if _, ok := c.Create(ctx, in).(Created); !ok {
		t.Fatalf("second create failed")
	}

	sess, err := store.Get(ctx, "g1")
	if err != nil || sess == nil {
		t.Fatalf("Get: %v / %v", sess, err)
	}
	if sess.RoomCode != "BBB222" || sess.CreatorID != "u2" {
		t.Fatalf("expected overwritten session, got %+v", sess)
	}
}

func TestCreateRejectsMaxPlayersOutOfRange(t *testing.T) {
	client := &stubClient{}
	c, _ := newTestCoordinator(client)
	ctx := context.Background()

	for _, n := range []int{0, 1, 9, 100} {
		in := validCreate()
		in.MaxPlayers = n
		if _, ok := c.Create(ctx, in).(ValidationError); !ok {
			t.Fatalf("expected ValidationError for maxPlayers=%d", n)
		}
	}
	if client.createCalls != 0 {
		t.Fatalf("expected zero remote calls, got %d", client.createCalls)
	}
}

func TestCreateRejectsUnknownMode(t *testing.T) {
	client := &stubClient{}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	in := validCreate()
	in.Mode = "chess"
	if _, ok := c.Create(ctx, in).(ValidationError); !ok {
		t.Fatalf("expected ValidationError for unknown mode")
	}
	if client.createCalls != 0 {
		t.Fatalf("expected zero remote calls, got %d", client.createCalls)
	}
	if sess, _ := store.Get(ctx, "g1"); sess != nil {
		t.Fatalf("store should be untouched, got %+v", sess)
	}
}

func TestCreateRemoteFailureLeavesStoreEmpty(t *testing.T) {
	client := &stubClient{createErr: fmt.Errorf("%w: boom", gameapi.ErrCreateRejected)}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	out := c.Create(ctx, validCreate())
	rf, ok := out.(RemoteFailure)
	if !ok {
		t.Fatalf("expected RemoteFailure, got %T", out)
	}
	if rf.Op != "create" {
		t.Fatalf("expected op create, got %q", rf.Op)
	}
	if sess, _ := store.Get(ctx, "g1"); sess != nil {
		t.Fatalf("store should be untouched after remote failure, got %+v", sess)
	}
}

func TestJoinCanonicalizesCode(t *testing.T) {
	client := &stubClient{}
	c, _ := newTestCoordinator(client)
	ctx := context.Background()

	out := c.Join(ctx, JoinInput{GuildID: "g1", RequesterName: "Bob", RoomCode: "abc123"})
	joined, ok := out.(Joined)
	if !ok {
		t.Fatalf("expected Joined, got %T", out)
	}
	if joined.RoomCode != "ABC123" || client.lastJoin.Code != "ABC123" {
		t.Fatalf("expected canonical code on outcome and wire, got %q / %q", joined.RoomCode, client.lastJoin.Code)
	}

	out2 := c.Join(ctx, JoinInput{GuildID: "g1", RequesterName: "Bob", RoomCode: "ABC123"})
	if joined2, ok := out2.(Joined); !ok || joined2.RoomCode != joined.RoomCode {
		t.Fatalf("case variants should behave identically: %v vs %v", out, out2)
	}
}

func TestJoinEmptyCodeSkipsRemote(t *testing.T) {
	client := &stubClient{}
	c, _ := newTestCoordinator(client)

	if _, ok := c.Join(context.Background(), JoinInput{GuildID: "g1", RequesterName: "Bob", RoomCode: "   "}).(ValidationError); !ok {
		t.Fatalf("expected ValidationError for blank code")
	}
	if client.joinCalls != 0 {
		t.Fatalf("expected zero remote calls, got %d", client.joinCalls)
	}
}

func TestJoinNotFoundLeavesStoreUntouched(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	if _, ok := c.Create(ctx, validCreate()).(Created); !ok {
		t.Fatalf("create failed")
	}
	client.joinErr = fmt.Errorf("%w: gone", gameapi.ErrRoomNotFound)

	out := c.Join(ctx, JoinInput{GuildID: "g1", RequesterName: "Bob", RoomCode: "zzz999"})
	nf, ok := out.(NotFound)
	if !ok {
		t.Fatalf("expected NotFound, got %T", out)
	}
	if nf.RoomCode != "ZZZ999" {
		t.Fatalf("expected canonical code in outcome, got %q", nf.RoomCode)
	}

	sess, _ := store.Get(ctx, "g1")
	if sess == nil || len(sess.Players) != 1 {
		t.Fatalf("roster should be unchanged after failed join, got %+v", sess)
	}
}

func TestJoinTransportFailureIsRemoteFailure(t *testing.T) {
	client := &stubClient{joinErr: fmt.Errorf("%w: dial tcp", gameapi.ErrUnreachable)}
	c, _ := newTestCoordinator(client)

	out := c.Join(context.Background(), JoinInput{GuildID: "g1", RequesterName: "Bob", RoomCode: "abc123"})
	rf, ok := out.(RemoteFailure)
	if !ok {
		t.Fatalf("expected RemoteFailure, got %T", out)
	}
	if !errors.Is(rf.Err, gameapi.ErrUnreachable) {
		t.Fatalf("expected wrapped ErrUnreachable, got %v", rf.Err)
	}
}

func TestConcurrentJoinsBothAppend(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	if _, ok := c.Create(ctx, validCreate()).(Created); !ok {
		t.Fatalf("create failed")
	}

	var wg sync.WaitGroup
	for _, name := range []string{"Bob", "Carol"} {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			if _, ok := c.Join(ctx, JoinInput{GuildID: "g1", RequesterName: n, RoomCode: "AAA111"}).(Joined); !ok {
				t.Errorf("join %s failed", n)
			}
		}(name)
	}
	wg.Wait()

	sess, _ := store.Get(ctx, "g1")
	if sess == nil || len(sess.Players) != 3 {
		t.Fatalf("expected 3 players after two joins, got %+v", sess)
	}
}

func TestStatusNoSessionSkipsRemote(t *testing.T) {
	client := &stubClient{}
	c, _ := newTestCoordinator(client)

	if _, ok := c.Status(context.Background(), "g1").(NoActiveGame); !ok {
		t.Fatalf("expected NoActiveGame")
	}
	if client.statusCalls != 0 {
		t.Fatalf("expected zero remote calls, got %d", client.statusCalls)
	}
}

func TestStatusReplacesRoster(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	if _, ok := c.Create(ctx, validCreate()).(Created); !ok {
		t.Fatalf("create failed")
	}
	// Locally appended name the server never saw
	if _, ok := c.Join(ctx, JoinInput{GuildID: "g1", RequesterName: "Ghost", RoomCode: "AAA111"}).(Joined); !ok {
		t.Fatalf("join failed")
	}

	client.state = gameapi.RoomState{
		Code:       "AAA111",
		Status:     "waiting",
		GameMode:   "roast",
		MaxPlayers: 4,
		Players: []gameapi.RoomPlayer{
			{Username: "Alice"},
			{Username: "Dave", IsBot: true},
		},
	}

	out := c.Status(ctx, "g1")
	st, ok := out.(Status)
	if !ok {
		t.Fatalf("expected Status, got %T", out)
	}
	if len(st.Players) != 2 || st.Players[0] != "Alice" || st.Players[1] != "Dave" {
		t.Fatalf("expected server roster, got %v", st.Players)
	}
	if client.lastCode != "AAA111" {
		t.Fatalf("expected status query for AAA111, got %q", client.lastCode)
	}

	sess, _ := store.Get(ctx, "g1")
	if sess == nil || len(sess.Players) != 2 || sess.Players[1] != "Dave" {
		t.Fatalf("store should hold the replaced roster, got %+v", sess)
	}
}

func TestStatusRemoteFailureKeepsCache(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	c, store := newTestCoordinator(client)
	ctx := context.Background()

	if _, ok := c.Create(ctx, validCreate()).(Created); !ok {
		t.Fatalf("create failed")
	}
	client.statusErr = fmt.Errorf("%w: 502", gameapi.ErrRoomNotFound)

	if _, ok := c.Status(ctx, "g1").(RemoteFailure); !ok {
		t.Fatalf("expected RemoteFailure")
	}

	sess, _ := store.Get(ctx, "g1")
	if sess == nil || sess.RoomCode != "AAA111" || len(sess.Players) != 1 {
		t.Fatalf("cached session should survive a failed refresh, got %+v", sess)
	}
}

func TestInviteIsLocalOnly(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	c, _ := newTestCoordinator(client)
	ctx := context.Background()

	if _, ok := c.Invite(ctx, "g1").(NoActiveGame); !ok {
		t.Fatalf("expected NoActiveGame before create")
	}
	if _, ok := c.Create(ctx, validCreate()).(Created); !ok {
		t.Fatalf("create failed")
	}

	out := c.Invite(ctx, "g1")
	inv, ok := out.(Invite)
	if !ok {
		t.Fatalf("expected Invite, got %T", out)
	}
	if inv.RoomCode != "AAA111" || inv.Mode != roomsession.ModeRoast {
		t.Fatalf("unexpected invite: %+v", inv)
	}
	if client.statusCalls != 0 {
		t.Fatalf("invite must not hit the remote API, got %d calls", client.statusCalls)
	}
}

type countingRecorder struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (r *countingRecorder) SaveRoomCreated(ctx context.Context, s *roomsession.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s.RoomCode)
	return r.err
}

func TestCreateRecordsHistoryBestEffort(t *testing.T) {
	client := &stubClient{created: gameapi.CreatedRoom{Code: "AAA111", RoomID: "r1"}}
	store := roomsession.NewMemoryStore()
	rec := &countingRecorder{err: errors.New("db down")}
	c := New(store, client, WithRecorder(rec))

	if _, ok := c.Create(context.Background(), validCreate()).(Created); !ok {
		t.Fatalf("create should succeed even when history save fails")
	}
	if len(rec.saved) != 1 || rec.saved[0] != "AAA111" {
		t.Fatalf("expected one recorded room, got %v", rec.saved)
	}
}
