// Package memory is an in-process implementation of every repository contract.
// It backs the "memory" store driver and the end-to-end tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"studentportal/internal/model"
	"studentportal/internal/repository"
)

// Store keeps all tables in memory behind one lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users            []model.User
	attendance       []model.Attendance
	notes            []model.Note
	subjects         []model.Subject
	scores           []model.ScorePoint
	timetable        []model.TimetableEntry
	testScores       []model.TestScore
	notices          []model.Notice
	polls            []model.Poll
	pollParticipants []model.PollParticipant
	tasks            []model.UpcomingTask
	queries          []model.Query
	answers          []model.Answer

	// last issued id per table
	seq map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now: func() time.Time { return time.Now().UTC() },
		seq: make(map[string]int),
	}
}

// WithClock replaces the timestamp source; used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() repository.UserRepository     { return userRepo{s} }
func (s *Store) Dashboard() repository.DashboardReader { return dashboardReader{s} }
func (s *Store) Scores() repository.ScoreRepository   { return scoreRepo{s} }
func (s *Store) Forum() repository.ForumRepository    { return forumRepo{s} }
func (s *Store) Seed() repository.SeedWriter          { return seedWriter{s} }

// RunInTx calls fn directly; memory writes are not rolled back when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// nextID caller holds mu.
func (s *Store) nextID(table string) int {
	s.seq[table]++
	return s.seq[table]
}

// timestamp mimics CURRENT_TIMESTAMP: UTC, second precision.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

type userRepo struct{ s *Store }

func (r userRepo) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.User, len(r.s.users))
	copy(out, r.s.users)
	return out, nil
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.indexByEmail(u.Email) >= 0 {
		return repository.ErrDuplicateEmail
	}
	u.ID = r.s.nextID("users")
	u.RegistrationDate = r.s.timestamp()
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.indexByEmail(email)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := r.s.users[i]
	return &u, nil
}

func (r userRepo) FindByID(_ context.Context, id int) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.userByID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) First(_ context.Context) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if len(r.s.users) == 0 {
		return nil, repository.ErrNotFound
	}
	// users are appended with increasing ids
	u := r.s.users[0]
	return &u, nil
}

func (r userRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, u := range r.s.users {
		if u.ID == id {
			r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// indexByEmail caller holds mu. Email comparison is exact, as with a UNIQUE text column.
func (s *Store) indexByEmail(email string) int {
	for i, u := range s.users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

func (s *Store) userByID(id int) (model.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

type dashboardReader struct{ s *Store }

func (r dashboardReader) LoadDashboard(_ context.Context, userID int) (*model.DashboardRows, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := &model.DashboardRows{}
	if u, ok := r.s.userByID(userID); ok {
		rows.User = &u
	}

	for _, a := range r.s.attendance {
		if a.UserID == userID {
			a := a
			rows.Attendance = &a
			break
		}
	}
	rows.Notes = filter(r.s.notes, func(n model.Note) bool { return n.UserID == userID })
	rows.Subjects = filter(r.s.subjects, func(x model.Subject) bool { return x.UserID == userID })
	rows.TestScores = filter(r.s.testScores, func(x model.TestScore) bool { return x.UserID == userID })
	rows.Notices = filter(r.s.notices, func(x model.Notice) bool { return x.UserID == userID })
	rows.UpcomingTasks = filter(r.s.tasks, func(x model.UpcomingTask) bool { return x.UserID == userID })

	rows.Timetable = filter(r.s.timetable, func(x model.TimetableEntry) bool { return x.UserID == userID })
	sort.SliceStable(rows.Timetable, func(i, j int) bool {
		a, b := rows.Timetable[i], rows.Timetable[j]
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c < 0
		}
		return a.Time < b.Time
	})

	for i := len(r.s.polls) - 1; i >= 0; i-- {
		if r.s.polls[i].UserID == userID {
			p := r.s.polls[i]
			rows.Poll = &p
			break
		}
	}
	if rows.Poll != nil {
		pollID := rows.Poll.ID
		rows.PollParticipants = filter(r.s.pollParticipants, func(x model.PollParticipant) bool { return x.PollID == pollID })
	}

	rows.Queries = sortedQueries(r.s.queries)
	rows.Answers = sortedAnswers(r.s.answers)
	return rows, nil
}

type scoreRepo struct{ s *Store }

func (r scoreRepo) ListScores(_ context.Context, userID int, subject string, limit int) ([]model.ScorePoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	points := filter(r.s.scores, func(p model.ScorePoint) bool {
		return p.UserID == userID && p.Subject == subject
	})
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	return points, nil
}

type forumRepo struct{ s *Store }

func (r forumRepo) CreateQuery(_ context.Context, q *model.Query) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q.ID = r.s.nextID("queries")
	q.CreatedAt = r.s.timestamp()
	stored := *q
	stored.SpecialMentions = append(json.RawMessage(nil), q.SpecialMentions...)
	r.s.queries = append(r.s.queries, stored)
	return nil
}

func (r forumRepo) QueryExists(_ context.Context, id int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, q := range r.s.queries {
		if q.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r forumRepo) AddAnswer(_ context.Context, a *model.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a.ID = r.s.nextID("answers")
	a.CreatedAt = r.s.timestamp()
	r.s.answers = append(r.s.answers, *a)
	return nil
}

func (r forumRepo) ListQueries(_ context.Context) ([]model.Query, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedQueries(r.s.queries), nil
}

func (r forumRepo) ListAnswers(_ context.Context) ([]model.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedAnswers(r.s.answers), nil
}

// sortedQueries newest first; id breaks ties within the same second.
func sortedQueries(in []model.Query) []model.Query {
	out := make([]model.Query, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// sortedAnswers oldest first; id breaks ties within the same second.
func sortedAnswers(in []model.Answer) []model.Answer {
	out := make([]model.Answer, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
