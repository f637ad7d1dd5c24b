package quizzes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/studyaid/backend/internal/models"
)

var ErrNotFound = errors.New("quiz not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const quizColumns = `id, owner_id, study_material_id, title, description, questions,
	total_attempts, best_score, last_attempt, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row rowScanner) (*models.Quiz, error) {
	var q models.Quiz
	var id int64
	var material sql.NullInt64
	var questions []byte
	var best sql.NullFloat64
	var last sql.NullTime
	if err := row.Scan(&id, &q.OwnerID, &material, &q.Title, &q.Description, &questions,
		&q.TotalAttempts, &best, &last, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("decode quiz questions: %w", err)
	}
	q.ID = strconv.FormatInt(id, 10)
	if material.Valid {
		v := material.Int64
		q.StudyMaterialID = &v
	}
	if best.Valid {
		v := best.Float64
		q.BestScore = &v
	}
	if last.Valid {
		t := last.Time
		q.LastAttempt = &t
	}
	return &q, nil
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrNotFound
	}
	return v, nil
}

func (s *Store) Create(ctx context.Context, req models.CreateQuizRequest) (*models.Quiz, error) {
	questions, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode quiz questions: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO quizzes (owner_id, study_material_id, title, description, questions)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+quizColumns,
		req.OwnerID, req.StudyMaterialID, req.Title, req.Description, string(questions),
	)
	q, err := scanQuiz(row)
	if err != nil {
		return nil, fmt.Errorf("insert quiz: %w", err)
	}
	return q, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Quiz, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	q, err := scanQuiz(s.db.QueryRowContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (s *Store) List(ctx context.Context, ownerID *int64, limit, offset int) ([]models.Quiz, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE ($1::BIGINT IS NULL OR owner_id = $1)`,
		ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quizzes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE ($1::BIGINT IS NULL OR owner_id = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, total, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordAttempt bumps the attempt count, keeps the best score, stamps the
// attempt time and logs the attempt, all in one transaction.
func (s *Store) RecordAttempt(ctx context.Context, id string, score float64, answers map[string]string, at time.Time) (*models.Quiz, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode quiz answers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q, err := scanQuiz(tx.QueryRowContext(ctx,
		`UPDATE quizzes SET
		    total_attempts = total_attempts + 1,
		    best_score = GREATEST(COALESCE(best_score, $2), $2),
		    last_attempt = $3,
		    updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+quizColumns,
		key, score, at,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update quiz attempt: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quiz_attempts (quiz_id, score, answers, attempted_at)
		 VALUES ($1, $2, $3, $4)`,
		key, score, string(encoded), at,
	); err != nil {
		return nil, fmt.Errorf("insert quiz attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quiz attempt: %w", err)
	}
	return q, nil
}
