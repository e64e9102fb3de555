package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studentportal/internal/model"
)

type DashboardRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDashboardRepository(db *pgxpool.Pool, logger *zap.Logger) *DashboardRepository {
	return &DashboardRepository{db: db, logger: logger}
}

// LoadDashboard reads every widget inside one read-only REPEATABLE READ transaction so
// the page never mixes rows from before and after a concurrent reseed.
func (r *DashboardRepository) LoadDashboard(ctx context.Context, userID int) (*model.DashboardRows, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin dashboard read: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := &model.DashboardRows{}
	steps := []func(context.Context, querier, int, *model.DashboardRows) error{
		loadUser,
		loadAttendance,
		loadNotes,
		loadTimetable,
		loadTestScores,
		loadNotices,
		loadPoll,
		loadSubjects,
		loadUpcomingTasks,
	}
	for _, step := range steps {
		if err := step(ctx, tx, userID, rows); err != nil {
			return nil, err
		}
	}

	if rows.Queries, err = listQueries(ctx, tx); err != nil {
		return nil, err
	}
	if rows.Answers, err = listAnswers(ctx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dashboard read: %w", err)
	}
	return rows, nil
}

func loadUser(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	err := observe(ctx, "select", "users", func(ctx context.Context) error {
		u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
		if err == nil {
			out.User = &u
		}
		return err
	})
	if err != nil && !isNoRows(err) {
		return fmt.Errorf("load dashboard user: %w", err)
	}
	return nil
}

func loadAttendance(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	err := observe(ctx, "select", "attendance", func(ctx context.Context) error {
		var a model.Attendance
		err := q.QueryRow(ctx,
			`SELECT id, user_id, attended, total FROM attendance WHERE user_id = $1 ORDER BY id LIMIT 1`, userID).
			Scan(&a.ID, &a.UserID, &a.Attended, &a.Total)
		if err == nil {
			out.Attendance = &a
		}
		return err
	})
	if err != nil && !isNoRows(err) {
		return fmt.Errorf("load attendance: %w", err)
	}
	return nil
}

func loadNotes(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	var err error
	out.Notes, err = selectAll(ctx, q, "notes",
		`SELECT id, user_id, note_type, count FROM notes WHERE user_id = $1 ORDER BY id`, userID,
		func(row pgx.Rows) (model.Note, error) {
			var n model.Note
			err := row.Scan(&n.ID, &n.UserID, &n.NoteType, &n.Count)
			return n, err
		})
	return err
}

func loadTimetable(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	var err error
	out.Timetable, err = selectAll(ctx, q, "timetable", `
        SELECT id, user_id, subject, date, time, status, duration
        FROM timetable
        WHERE user_id = $1
        ORDER BY date COLLATE "C", time COLLATE "C", id
    `, userID,
		func(row pgx.Rows) (model.TimetableEntry, error) {
			var e model.TimetableEntry
			err := row.Scan(&e.ID, &e.UserID, &e.Subject, &e.Date, &e.Time, &e.Status, &e.Duration)
			return e, err
		})
	return err
}

func loadTestScores(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	var err error
	out.TestScores, err = selectAll(ctx, q, "test_scores",
		`SELECT id, user_id, subject, lesson, score FROM test_scores WHERE user_id = $1 ORDER BY id`, userID,
		func(row pgx.Rows) (model.TestScore, error) {
			var s model.TestScore
			err := row.Scan(&s.ID, &s.UserID, &s.Subject, &s.Lesson, &s.Score)
			return s, err
		})
	return err
}

func loadNotices(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	var err error
	out.Notices, err = selectAll(ctx, q, "notice_board",
		`SELECT id, user_id, title, image_url, date FROM notice_board WHERE user_id = $1 ORDER BY id`, userID,
		func(row pgx.Rows) (model.Notice, error) {
			var n model.Notice
			err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.ImageURL, &n.Date)
			return n, err
		})
	return err
}

// loadPoll picks the most recent poll of the user and its participants.
func loadPoll(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	err := observe(ctx, "select", "polls", func(ctx context.Context) error {
		var p model.Poll
		err := q.QueryRow(ctx,
			`SELECT id, user_id, title, professor, end_time FROM polls WHERE user_id = $1 ORDER BY id DESC LIMIT 1`, userID).
			Scan(&p.ID, &p.UserID, &p.Title, &p.Professor, &p.EndTime)
		if err == nil {
			out.Poll = &p
		}
		return err
	})
	if isNoRows(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load poll: %w", err)
	}

	out.PollParticipants, err = selectAll(ctx, q, "poll_participants",
		`SELECT id, poll_id, participant_img FROM poll_participants WHERE poll_id = $1 ORDER BY id`, out.Poll.ID,
		func(row pgx.Rows) (model.PollParticipant, error) {
			var pp model.PollParticipant
			err := row.Scan(&pp.ID, &pp.PollID, &pp.ParticipantImg)
			return pp, err
		})
	return err
}

func loadSubjects(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	var err error
	out.Subjects, err = selectAll(ctx, q, "subjects",
		`SELECT id, user_id, subject_name FROM subjects WHERE user_id = $1 ORDER BY id`, userID,
		func(row pgx.Rows) (model.Subject, error) {
			var s model.Subject
			err := row.Scan(&s.ID, &s.UserID, &s.Name)
			return s, err
		})
	return err
}

func loadUpcomingTasks(ctx context.Context, q querier, userID int, out *model.DashboardRows) error {
	var err error
	out.UpcomingTasks, err = selectAll(ctx, q, "upcoming_tasks",
		`SELECT id, user_id, code, title, time FROM upcoming_tasks WHERE user_id = $1 ORDER BY id`, userID,
		func(row pgx.Rows) (model.UpcomingTask, error) {
			var t model.UpcomingTask
			err := row.Scan(&t.ID, &t.UserID, &t.Code, &t.Title, &t.Time)
			return t, err
		})
	return err
}

func selectAll[T any](ctx context.Context, q querier, table, sql string, userID int, scan func(pgx.Rows) (T, error)) ([]T, error) {
	var out []T
	err := observe(ctx, "select", table, func(ctx context.Context) error {
		rows, err := q.Query(ctx, sql, userID)
		if err != nil {
			return err
		}
		out, err = collect(rows, scan)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	return out, nil
}
