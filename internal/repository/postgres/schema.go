package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studentportal/internal/model"
)

// tables in creation order. user_id / query_id columns carry no foreign key so that
// deleting a user leaves its dashboard rows behind instead of failing.
var tables = []struct {
	name string
	ddl  string
}{
	{"users", `
        CREATE TABLE IF NOT EXISTS users (
            id                SERIAL PRIMARY KEY,
            first_name        TEXT NOT NULL,
            last_name         TEXT NOT NULL,
            email_address     TEXT UNIQUE NOT NULL,
            phone_number      TEXT NOT NULL,
            password          TEXT NOT NULL,
            registration_date TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
        )`},
	{"attendance", `
        CREATE TABLE IF NOT EXISTS attendance (
            id       SERIAL PRIMARY KEY,
            user_id  INTEGER,
            attended INTEGER,
            total    INTEGER
        )`},
	{"notes", `
        CREATE TABLE IF NOT EXISTS notes (
            id        SERIAL PRIMARY KEY,
            user_id   INTEGER,
            note_type TEXT,
            count     INTEGER
        )`},
	{"subjects", `
        CREATE TABLE IF NOT EXISTS subjects (
            id           SERIAL PRIMARY KEY,
            user_id      INTEGER,
            subject_name TEXT
        )`},
	{"timetable", `
        CREATE TABLE IF NOT EXISTS timetable (
            id       SERIAL PRIMARY KEY,
            user_id  INTEGER,
            subject  TEXT,
            date     TEXT,
            time     TEXT,
            status   TEXT,
            duration TEXT
        )`},
	{"test_scores", `
        CREATE TABLE IF NOT EXISTS test_scores (
            id      SERIAL PRIMARY KEY,
            user_id INTEGER,
            subject TEXT,
            lesson  TEXT,
            score   DOUBLE PRECISION
        )`},
	{"notice_board", `
        CREATE TABLE IF NOT EXISTS notice_board (
            id        SERIAL PRIMARY KEY,
            user_id   INTEGER,
            title     TEXT,
            image_url TEXT,
            date      TEXT
        )`},
	{"polls", `
        CREATE TABLE IF NOT EXISTS polls (
            id        SERIAL PRIMARY KEY,
            user_id   INTEGER,
            title     TEXT,
            professor TEXT,
            end_time  TEXT
        )`},
	{"poll_participants", `
        CREATE TABLE IF NOT EXISTS poll_participants (
            id              SERIAL PRIMARY KEY,
            poll_id         INTEGER,
            participant_img TEXT
        )`},
	{"upcoming_tasks", `
        CREATE TABLE IF NOT EXISTS upcoming_tasks (
            id      SERIAL PRIMARY KEY,
            user_id INTEGER,
            code    TEXT,
            title   TEXT,
            time    TEXT
        )`},
	{"score_activity", `
        CREATE TABLE IF NOT EXISTS score_activity (
            id      SERIAL PRIMARY KEY,
            user_id INTEGER,
            subject TEXT,
            date    TEXT,
            score   INTEGER CHECK (score BETWEEN 0 AND 100)
        )`},
	{"queries", `
        CREATE TABLE IF NOT EXISTS queries (
            id               SERIAL PRIMARY KEY,
            special_mentions TEXT,
            brief            TEXT,
            created_at       TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
        )`},
	{"answers", `
        CREATE TABLE IF NOT EXISTS answers (
            id          SERIAL PRIMARY KEY,
            query_id    INTEGER,
            answer_text TEXT,
            created_at  TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
        )`},
}

// SeedWriter writes fixture rows and manages the schema.
type SeedWriter struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSeedWriter(db *pgxpool.Pool, logger *zap.Logger) *SeedWriter {
	return &SeedWriter{db: db, logger: logger}
}

// ResetSchema drops every table and recreates it in one transaction.
func (w *SeedWriter) ResetSchema(ctx context.Context) error {
	w.logger.Warn("Dropping and recreating every portal table")

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema reset: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+tables[i].name); err != nil {
			return fmt.Errorf("drop %s: %w", tables[i].name, err)
		}
	}
	for _, t := range tables {
		if _, err := tx.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return tx.Commit(ctx)
}

// EnsureSchema creates missing tables and indexes only.
func (w *SeedWriter) EnsureSchema(ctx context.Context) error {
	for _, t := range tables {
		if _, err := w.db.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	w.logger.Info("Schema is up to date", zap.Int("tables", len(tables)))
	return nil
}

func (w *SeedWriter) InsertUserIgnore(ctx context.Context, u *model.User) (int, error) {
	var id int
	err := w.db.QueryRow(ctx, `
        INSERT INTO users (first_name, last_name, email_address, phone_number, password)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email_address) DO NOTHING
        RETURNING id
    `, u.FirstName, u.LastName, u.Email, u.Phone, u.Password).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isNoRows(err) {
		return 0, fmt.Errorf("insert user %s: %w", u.Email, err)
	}

	// conflict: the row already exists
	if err := w.db.QueryRow(ctx, `SELECT id FROM users WHERE email_address = $1`, u.Email).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup existing user %s: %w", u.Email, err)
	}
	return id, nil
}

func (w *SeedWriter) InsertAttendance(ctx context.Context, a model.Attendance) error {
	return w.exec(ctx, "attendance",
		`INSERT INTO attendance (user_id, attended, total) VALUES ($1, $2, $3)`,
		a.UserID, a.Attended, a.Total)
}

func (w *SeedWriter) InsertNote(ctx context.Context, n model.Note) error {
	return w.exec(ctx, "notes",
		`INSERT INTO notes (user_id, note_type, count) VALUES ($1, $2, $3)`,
		n.UserID, n.NoteType, n.Count)
}

func (w *SeedWriter) InsertSubject(ctx context.Context, s model.Subject) error {
	return w.exec(ctx, "subjects",
		`INSERT INTO subjects (user_id, subject_name) VALUES ($1, $2)`,
		s.UserID, s.Name)
}

func (w *SeedWriter) InsertScorePoint(ctx context.Context, p model.ScorePoint) error {
	return w.exec(ctx, "score_activity",
		`INSERT INTO score_activity (user_id, subject, date, score) VALUES ($1, $2, $3, $4)`,
		p.UserID, p.Subject, p.Date, p.Score)
}

func (w *SeedWriter) InsertTimetableEntry(ctx context.Context, e model.TimetableEntry) error {
	return w.exec(ctx, "timetable",
		`INSERT INTO timetable (user_id, subject, date, time, status, duration) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.UserID, e.Subject, e.Date, e.Time, e.Status, e.Duration)
}

func (w *SeedWriter) InsertTestScore(ctx context.Context, s model.TestScore) error {
	return w.exec(ctx, "test_scores",
		`INSERT INTO test_scores (user_id, subject, lesson, score) VALUES ($1, $2, $3, $4)`,
		s.UserID, s.Subject, s.Lesson, s.Score)
}

func (w *SeedWriter) InsertNotice(ctx context.Context, n model.Notice) error {
	return w.exec(ctx, "notice_board",
		`INSERT INTO notice_board (user_id, title, image_url, date) VALUES ($1, $2, $3, $4)`,
		n.UserID, n.Title, n.ImageURL, n.Date)
}

func (w *SeedWriter) InsertPoll(ctx context.Context, p model.Poll) (int, error) {
	var id int
	err := w.db.QueryRow(ctx,
		`INSERT INTO polls (user_id, title, professor, end_time) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.UserID, p.Title, p.Professor, p.EndTime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert polls: %w", err)
	}
	return id, nil
}

func (w *SeedWriter) InsertPollParticipant(ctx context.Context, p model.PollParticipant) error {
	return w.exec(ctx, "poll_participants",
		`INSERT INTO poll_participants (poll_id, participant_img) VALUES ($1, $2)`,
		p.PollID, p.ParticipantImg)
}

func (w *SeedWriter) InsertUpcomingTask(ctx context.Context, t model.UpcomingTask) error {
	return w.exec(ctx, "upcoming_tasks",
		`INSERT INTO upcoming_tasks (user_id, code, title, time) VALUES ($1, $2, $3, $4)`,
		t.UserID, t.Code, t.Title, t.Time)
}

func (w *SeedWriter) exec(ctx context.Context, table, sql string, args ...any) error {
	if _, err := w.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
