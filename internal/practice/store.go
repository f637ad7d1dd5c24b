package practice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyaid/backend/internal/models"
)

// ResultStore persists completed and saved session snapshots.
type ResultStore struct {
	db *sql.DB
}

func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) SaveResult(ctx context.Context, r models.PracticeResult) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO practice_results
		    (session_id, owner_id, kind, total_cards, correct_count, incorrect_count,
		     remaining_count, accuracy, average_time_per_card, session_duration)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		r.SessionID, r.OwnerID, r.Kind, r.Stats.TotalCards, r.Stats.CorrectCount,
		r.Stats.IncorrectCount, r.Stats.RemainingCount, r.Stats.Accuracy,
		r.Stats.AverageTimePerCard, r.Stats.SessionDuration,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert practice result: %w", err)
	}
	return id, nil
}

func (s *ResultStore) ListResults(ctx context.Context, ownerID *int64, limit, offset int) ([]models.PracticeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, owner_id, kind, total_cards, correct_count, incorrect_count,
		        remaining_count, accuracy, average_time_per_card, session_duration, created_at
		 FROM practice_results
		 WHERE ($1::BIGINT IS NULL OR owner_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list practice results: %w", err)
	}
	defer rows.Close()

	var results []models.PracticeResult
	for rows.Next() {
		var r models.PracticeResult
		var owner sql.NullInt64
		if err := rows.Scan(&r.ID, &r.SessionID, &owner, &r.Kind,
			&r.Stats.TotalCards, &r.Stats.CorrectCount, &r.Stats.IncorrectCount,
			&r.Stats.RemainingCount, &r.Stats.Accuracy, &r.Stats.AverageTimePerCard,
			&r.Stats.SessionDuration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan practice result: %w", err)
		}
		if owner.Valid {
			v := owner.Int64
			r.OwnerID = &v
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
