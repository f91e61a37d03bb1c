package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"example.com/mastermind/internal/game"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayerStats aggregates solved games per player. Only counters are kept,
// never a game's secret or guesses.
type PlayerStats struct {
	UserID        string
	Solved        int
	TotalAttempts int
	BestAttempts  int // 0 если ещё ничего не решено
	Brilliant     int
	Good          int
	Improvable    int
	Low           int
	UpdatedAt     time.Time
}

type StatsStore struct {
	db *pgxpool.Pool
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) InitForUser(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO player_stats (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

// RecordResult folds one solved game into the player's counters.
func (s *StatsStore) RecordResult(ctx context.Context, r game.Result) error {
	col, err := tierColumn(r.Tier)
	if err != nil {
		return err
	}

	// col comes from a fixed whitelist, never from input
	q := fmt.Sprintf(`
		INSERT INTO player_stats (user_id, solved, total_attempts, best_attempts, %[1]s, updated_at)
		VALUES ($1, 1, $2, $2, 1, now())
		ON CONFLICT (user_id) DO UPDATE SET
			solved         = player_stats.solved + 1,
			total_attempts = player_stats.total_attempts + EXCLUDED.total_attempts,
			best_attempts  = CASE
				WHEN player_stats.best_attempts = 0 THEN EXCLUDED.best_attempts
				ELSE LEAST(player_stats.best_attempts, EXCLUDED.best_attempts)
			END,
			%[1]s = player_stats.%[1]s + 1,
			updated_at     = now()
	`, col)

	_, err = s.db.Exec(ctx, q, r.UserID, r.Attempts)
	return err
}

func (s *StatsStore) Get(ctx context.Context, userID string) (PlayerStats, error) {
	var st PlayerStats
	err := s.db.QueryRow(ctx, `
		SELECT user_id, solved, total_attempts, best_attempts,
		       tier_brilliant, tier_good, tier_improvable, tier_low, updated_at
		FROM player_stats
		WHERE user_id=$1
	`, userID).Scan(&st.UserID, &st.Solved, &st.TotalAttempts, &st.BestAttempts,
		&st.Brilliant, &st.Good, &st.Improvable, &st.Low, &st.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// если вдруг статистики нет — это не фатально, можно считать нулями
		return PlayerStats{UserID: userID}, nil
	}
	if err != nil {
		return PlayerStats{}, err
	}
	return st, nil
}

func tierColumn(t game.Tier) (string, error) {
	switch t {
	case game.TierBrilliant:
		return "tier_brilliant", nil
	case game.TierGood:
		return "tier_good", nil
	case game.TierImprovable:
		return "tier_improvable", nil
	case game.TierLow:
		return "tier_low", nil
	default:
		return "", fmt.Errorf("no stats column for tier %d", int(t))
	}
}
