package memory

import (
	"context"

	"studentportal/internal/model"
)

type seedWriter struct{ s *Store }

func (w seedWriter) ResetSchema(_ context.Context) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	s := w.s
	s.users, s.attendance, s.notes, s.subjects = nil, nil, nil, nil
	s.scores, s.timetable, s.testScores, s.notices = nil, nil, nil, nil
	s.polls, s.pollParticipants, s.tasks = nil, nil, nil
	s.queries, s.answers = nil, nil
	s.seq = make(map[string]int)
	return nil
}

func (w seedWriter) EnsureSchema(_ context.Context) error { return nil }

func (w seedWriter) InsertUserIgnore(_ context.Context, u *model.User) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if i := w.s.indexByEmail(u.Email); i >= 0 {
		return w.s.users[i].ID, nil
	}
	u.ID = w.s.nextID("users")
	u.RegistrationDate = w.s.timestamp()
	w.s.users = append(w.s.users, *u)
	return u.ID, nil
}

func (w seedWriter) InsertAttendance(_ context.Context, a model.Attendance) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	a.ID = w.s.nextID("attendance")
	w.s.attendance = append(w.s.attendance, a)
	return nil
}

func (w seedWriter) InsertNote(_ context.Context, n model.Note) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	n.ID = w.s.nextID("notes")
	w.s.notes = append(w.s.notes, n)
	return nil
}

func (w seedWriter) InsertSubject(_ context.Context, x model.Subject) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	x.ID = w.s.nextID("subjects")
	w.s.subjects = append(w.s.subjects, x)
	return nil
}

func (w seedWriter) InsertScorePoint(_ context.Context, p model.ScorePoint) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	p.ID = w.s.nextID("score_activity")
	w.s.scores = append(w.s.scores, p)
	return nil
}

func (w seedWriter) InsertTimetableEntry(_ context.Context, e model.TimetableEntry) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	e.ID = w.s.nextID("timetable")
	w.s.timetable = append(w.s.timetable, e)
	return nil
}

func (w seedWriter) InsertTestScore(_ context.Context, x model.TestScore) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	x.ID = w.s.nextID("test_scores")
	w.s.testScores = append(w.s.testScores, x)
	return nil
}

func (w seedWriter) InsertNotice(_ context.Context, n model.Notice) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	n.ID = w.s.nextID("notice_board")
	w.s.notices = append(w.s.notices, n)
	return nil
}

func (w seedWriter) InsertPoll(_ context.Context, p model.Poll) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	p.ID = w.s.nextID("polls")
	w.s.polls = append(w.s.polls, p)
	return p.ID, nil
}

func (w seedWriter) InsertPollParticipant(_ context.Context, p model.PollParticipant) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	p.ID = w.s.nextID("poll_participants")
	w.s.pollParticipants = append(w.s.pollParticipants, p)
	return nil
}

func (w seedWriter) InsertUpcomingTask(_ context.Context, t model.UpcomingTask) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	t.ID = w.s.nextID("upcoming_tasks")
	w.s.tasks = append(w.s.tasks, t)
	return nil
}
