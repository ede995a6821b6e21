package store

import (
	"context"
	"database/sql"
	"time"
)

// QuizResult — завершённая викторина одного пользователя.
type QuizResult struct {
	UserID    int64
	Level     string
	Score     int
	Total     int
	CreatedAt time.Time
}

// QuizResultRepo хранит историю завершённых викторин.
type QuizResultRepo struct{ DB *sql.DB }

func NewQuizResultRepo(db *sql.DB) *QuizResultRepo { return &QuizResultRepo{DB: db} }

func (r *QuizResultRepo) Insert(ctx context.Context, res QuizResult) error {
	const q = `insert into quiz_results(user_id, level, score, total) values ($1,$2,$3,$4)`
	_, err := r.DB.ExecContext(ctx, q, res.UserID, res.Level, res.Score, res.Total)
	return err
}

// Best — лучший результат пользователя. sql.ErrNoRows, если викторин не было.
func (r *QuizResultRepo) Best(ctx context.Context, userID int64) (QuizResult, error) {
	const q = `select user_id, level, score, total, created_at
	           from quiz_results
	           where user_id=$1
	           order by score desc, created_at asc
	           limit 1`
	var res QuizResult
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(&res.UserID, &res.Level, &res.Score, &res.Total, &res.CreatedAt)
	return res, err
}

// Recent — последние завершённые викторины пользователя.
func (r *QuizResultRepo) Recent(ctx context.Context, userID int64, limit int) ([]QuizResult, error) {
	const q = `select user_id, level, score, total, created_at
	           from quiz_results
	           where user_id=$1
	           order by created_at desc
	           limit $2`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuizResult
	for rows.Next() {
		var res QuizResult
		if err := rows.Scan(&res.UserID, &res.Level, &res.Score, &res.Total, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
