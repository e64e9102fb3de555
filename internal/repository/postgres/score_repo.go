package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studentportal/internal/model"
)

type ScoreRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewScoreRepository(db *pgxpool.Pool, logger *zap.Logger) *ScoreRepository {
	return &ScoreRepository{db: db, logger: logger}
}

// ListScores returns the first limit points of the series by ISO date.
func (r *ScoreRepository) ListScores(ctx context.Context, userID int, subject string, limit int) ([]model.ScorePoint, error) {
	query := `
        SELECT id, user_id, subject, date, score
        FROM score_activity
        WHERE user_id = $1 AND subject = $2
        ORDER BY date COLLATE "C", id
        LIMIT $3
    `
	var points []model.ScorePoint
	err := observe(ctx, "select", "score_activity", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID, subject, limit)
		if err != nil {
			return err
		}
		points, err = collect(rows, func(row pgx.Rows) (model.ScorePoint, error) {
			var p model.ScorePoint
			err := row.Scan(&p.ID, &p.UserID, &p.Subject, &p.Date, &p.Score)
			return p, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list scores for user %d subject %q: %w", userID, subject, err)
	}
	return points, nil
}
