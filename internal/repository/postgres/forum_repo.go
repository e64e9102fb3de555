package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studentportal/internal/model"
	portaldb "studentportal/pkg/db"
)

type ForumRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewForumRepository(db *pgxpool.Pool, logger *zap.Logger) *ForumRepository {
	return &ForumRepository{db: db, logger: logger}
}

// conn joins the transaction in ctx when there is one.
func (r *ForumRepository) conn(ctx context.Context) querier {
	if tx := portaldb.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// CreateQuery stores the mention list as JSON text.
func (r *ForumRepository) CreateQuery(ctx context.Context, q *model.Query) error {
	mentions := encodeMentions(q.SpecialMentions)
	err := observe(ctx, "insert", "queries", func(ctx context.Context) error {
		return r.conn(ctx).QueryRow(ctx,
			`INSERT INTO queries (special_mentions, brief) VALUES ($1, $2) RETURNING id, created_at`,
			mentions, q.Brief).Scan(&q.ID, &q.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("insert query: %w", err)
	}
	r.logger.Debug("Query created", zap.Int("query_id", q.ID))
	return nil
}

func (r *ForumRepository) QueryExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := observe(ctx, "select", "queries", func(ctx context.Context) error {
		return r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM queries WHERE id = $1)`, id).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check query %d: %w", id, err)
	}
	return exists, nil
}

func (r *ForumRepository) AddAnswer(ctx context.Context, a *model.Answer) error {
	err := observe(ctx, "insert", "answers", func(ctx context.Context) error {
		return r.conn(ctx).QueryRow(ctx,
			`INSERT INTO answers (query_id, answer_text) VALUES ($1, $2) RETURNING id, created_at`,
			a.QueryID, a.Text).Scan(&a.ID, &a.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("insert answer for query %d: %w", a.QueryID, err)
	}
	return nil
}

func (r *ForumRepository) ListQueries(ctx context.Context) ([]model.Query, error) {
	return listQueries(ctx, r.db)
}

func (r *ForumRepository) ListAnswers(ctx context.Context) ([]model.Answer, error) {
	return listAnswers(ctx, r.db)
}

func listQueries(ctx context.Context, q querier) ([]model.Query, error) {
	var out []model.Query
	err := observe(ctx, "select", "queries", func(ctx context.Context) error {
		rows, err := q.Query(ctx, `SELECT id, special_mentions, brief, created_at FROM queries ORDER BY created_at DESC, id DESC`)
		if err != nil {
			return err
		}
		out, err = collect(rows, scanQuery)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return out, nil
}

func listAnswers(ctx context.Context, q querier) ([]model.Answer, error) {
	var out []model.Answer
	err := observe(ctx, "select", "answers", func(ctx context.Context) error {
		rows, err := q.Query(ctx, `SELECT id, query_id, answer_text, created_at FROM answers ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		out, err = collect(rows, func(row pgx.Rows) (model.Answer, error) {
			var a model.Answer
			err := row.Scan(&a.ID, &a.QueryID, &a.Text, &a.CreatedAt)
			return a, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return out, nil
}

func scanQuery(row pgx.Rows) (model.Query, error) {
	var (
		q        model.Query
		mentions *string
		brief    *string
	)
	if err := row.Scan(&q.ID, &mentions, &brief, &q.CreatedAt); err != nil {
		return q, err
	}
	if brief != nil {
		q.Brief = *brief
	}
	if mentions != nil {
		q.SpecialMentions = json.RawMessage(*mentions)
	}
	return q, nil
}

// encodeMentions stores the client's JSON as given; an absent value is stored as [].
func encodeMentions(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}
