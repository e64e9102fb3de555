package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/repository"
	"studentportal/pkg/metrics"
)

// PasswordEncoder turns a plaintext password into its stored form.
type PasswordEncoder interface {
	Encode(plain string) (string, error)
}

// Seeder rebuilds the portal tables with the demo fixtures.
type Seeder struct {
	writer         repository.SeedWriter
	gen            *Generator
	encoder        PasswordEncoder
	logger         *zap.Logger
	logCredentials bool
	resetHooks     []func(context.Context) error
}

type Option func(*Seeder)

// WithGenerator overrides the score activity generator.
func WithGenerator(g *Generator) Option {
	return func(s *Seeder) { s.gen = g }
}

// WithPasswordEncoder stores seeded passwords in encoded form.
func WithPasswordEncoder(e PasswordEncoder) Option {
	return func(s *Seeder) { s.encoder = e }
}

// WithCredentialLog logs the demo logins after a successful run.
func WithCredentialLog(enabled bool) Option {
	return func(s *Seeder) { s.logCredentials = enabled }
}

// WithResetHook runs hook right after the schema reset, for stores derived from the
// dropped tables (the Redis forum activity feed) that must be cleared with them.
func WithResetHook(hook func(context.Context) error) Option {
	return func(s *Seeder) { s.resetHooks = append(s.resetHooks, hook) }
}

func NewSeeder(writer repository.SeedWriter, logger *zap.Logger, opts ...Option) *Seeder {
	s := &Seeder{writer: writer, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = NewGenerator(nil, nil)
	}
	return s
}

// Run drops every table, recreates the schema and inserts the fixtures.
// It stops at the first failed write.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.writer.ResetSchema(ctx); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	for _, hook := range s.resetHooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("reset derived data: %w", err)
		}
	}

	userIDs := make([]int, 0, len(SampleUsers))
	for _, su := range SampleUsers {
		password := su.Password
		if s.encoder != nil {
			enc, err := s.encoder.Encode(password)
			if err != nil {
				return fmt.Errorf("encode password for %s: %w", su.Email, err)
			}
			password = enc
		}
		id, err := s.writer.InsertUserIgnore(ctx, &model.User{
			FirstName: su.FirstName,
			LastName:  su.LastName,
			Email:     su.Email,
			Phone:     su.Phone,
			Password:  password,
		})
		if err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}

	counts := make(map[string]int)
	for idx, userID := range userIDs {
		if err := s.seedUser(ctx, idx, userID, counts); err != nil {
			return fmt.Errorf("seed user %d: %w", userID, err)
		}
	}

	metrics.SetSeededRows("users", len(userIDs))
	for table, n := range counts {
		metrics.SetSeededRows(table, n)
	}
	s.logger.Info("Database seeded", zap.Int("users", len(userIDs)), zap.Any("rows", counts))

	if s.logCredentials {
		for _, su := range SampleUsers[:5] {
			s.logger.Info("Sample login", zap.String("email", su.Email), zap.String("password", su.Password))
		}
	}
	return nil
}

func (s *Seeder) seedUser(ctx context.Context, idx, userID int, counts map[string]int) error {
	w := s.writer

	if err := w.InsertAttendance(ctx, model.Attendance{UserID: userID, Attended: AttendedFor(idx), Total: totalClasses}); err != nil {
		return err
	}
	counts["attendance"]++

	for _, n := range notesFor(userID, idx) {
		if err := w.InsertNote(ctx, n); err != nil {
			return err
		}
		counts["notes"]++
	}

	for _, name := range subjectNames {
		if err := w.InsertSubject(ctx, model.Subject{UserID: userID, Name: name}); err != nil {
			return err
		}
		counts["subjects"]++
	}

	for _, subject := range ScoredSubjects {
		for _, p := range s.gen.Series(userID, subject) {
			if err := w.InsertScorePoint(ctx, p); err != nil {
				return err
			}
			counts["score_activity"]++
		}
	}

	for _, e := range timetableRows {
		e.UserID = userID
		e.Duration = classDuration
		if err := w.InsertTimetableEntry(ctx, e); err != nil {
			return err
		}
		counts["timetable"]++
	}

	for _, r := range testScoreRows {
		ts := model.TestScore{
			UserID:  userID,
			Subject: r.subject,
			Lesson:  r.lesson,
			Score:   roundTenth(r.base + float64(idx)*r.step),
		}
		if err := w.InsertTestScore(ctx, ts); err != nil {
			return err
		}
		counts["test_scores"]++
	}

	for _, n := range noticeRows {
		n.UserID = userID
		if err := w.InsertNotice(ctx, n); err != nil {
			return err
		}
		counts["notice_board"]++
	}

	poll := pollTemplate
	poll.UserID = userID
	pollID, err := w.InsertPoll(ctx, poll)
	if err != nil {
		return err
	}
	counts["polls"]++
	for _, img := range pollParticipantImages {
		if err := w.InsertPollParticipant(ctx, model.PollParticipant{PollID: pollID, ParticipantImg: img}); err != nil {
			return err
		}
		counts["poll_participants"]++
	}

	for _, t := range taskRows {
		t.UserID = userID
		if err := w.InsertUpcomingTask(ctx, t); err != nil {
			return err
		}
		counts["upcoming_tasks"]++
	}
	return nil
}
