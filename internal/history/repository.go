package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/wtfland/land-bot-go/internal/battle"
	"github.com/wtfland/land-bot-go/internal/roomsession"
)

// Repository persists room and battle history in Postgres. All writes
// are best effort from the callers' perspective; a down database must
// never block command flow.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveRoomCreated upserts a created room keyed by its durable room id.
func (r *Repository) SaveRoomCreated(ctx context.Context, s *roomsession.Session) error {
	if r == nil || r.db == nil || s == nil {
		return nil
	}
	q := `INSERT INTO game_rooms (
	    room_id, room_code, guild_id, creator_id, creator_name,
	    game_mode, max_players, created_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8
	  ) ON CONFLICT (room_id) DO UPDATE SET
	    room_code=EXCLUDED.room_code,
	    guild_id=EXCLUDED.guild_id,
	    creator_id=EXCLUDED.creator_id,
	    creator_name=EXCLUDED.creator_name,
	    game_mode=EXCLUDED.game_mode,
	    max_players=EXCLUDED.max_players,
	    created_at=EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, q,
		s.RoomID, s.RoomCode, s.GuildID, s.CreatorID, s.CreatorName,
		s.Mode.Wire(), s.MaxPlayers, s.CreatedAt,
	)
	return err
}

// SaveBattleResult upserts a resolved roast battle keyed by battle id.
func (r *Repository) SaveBattleResult(ctx context.Context, roomCode string, res *battle.Result) error {
	if r == nil || r.db == nil || res == nil {
		return nil
	}
	q := `INSERT INTO roast_battles (
	    battle_id, room_code, winner, loser,
	    votes_for_winner, votes_for_loser, comment, ended_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8
	  ) ON CONFLICT (battle_id) DO UPDATE SET
	    room_code=EXCLUDED.room_code,
	    winner=EXCLUDED.winner,
	    loser=EXCLUDED.loser,
	    votes_for_winner=EXCLUDED.votes_for_winner,
	    votes_for_loser=EXCLUDED.votes_for_loser,
	    comment=EXCLUDED.comment,
	    ended_at=EXCLUDED.ended_at`

	_, err := r.db.ExecContext(ctx, q,
		res.BattleID, strings.ToUpper(strings.TrimSpace(roomCode)), res.Winner, res.Loser,
		res.VotesForWinner, res.VotesForLoser, res.Comment, time.Now(),
	)
	return err
}
