package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/repository"
)

// openTestStore connects to PORTAL_TEST_DATABASE_URL and resets the schema.
// The tests are skipped when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("PORTAL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PORTAL_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	s := NewStore(pool, zap.NewNop())
	t.Cleanup(s.Close)
	require.NoError(t, s.Seed().ResetSchema(ctx))
	return s
}

func TestUserRepository(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	users := s.Users()

	u := &model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+1 555-0000", Password: "pw"}
	require.NoError(t, users.Create(ctx, u))
	assert.Positive(t, u.ID)
	assert.False(t, u.RegistrationDate.IsZero())

	dup := &model.User{FirstName: "Ada", LastName: "Again", Email: "ada@example.com", Phone: "+1 555-0001", Password: "pw"}
	assert.ErrorIs(t, users.Create(ctx, dup), repository.ErrDuplicateEmail)

	got, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.FullName())

	first, err := users.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, first.ID)

	require.NoError(t, users.Delete(ctx, u.ID))
	assert.ErrorIs(t, users.Delete(ctx, u.ID), repository.ErrNotFound)

	_, err = users.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSeedWriterInsertUserIgnore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &model.User{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "1234567", Password: "x"}
	id1, err := s.Seed().InsertUserIgnore(ctx, u)
	require.NoError(t, err)
	id2, err := s.Seed().InsertUserIgnore(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestDashboardAndScores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	w := s.Seed()

	id, err := w.InsertUserIgnore(ctx, &model.User{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "1234567", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, w.InsertTimetableEntry(ctx, model.TimetableEntry{UserID: id, Subject: "Physics", Date: "19-Apr-2022", Time: "10:00 am"}))
	require.NoError(t, w.InsertTimetableEntry(ctx, model.TimetableEntry{UserID: id, Subject: "Maths", Date: "18-Apr-2022", Time: "10:00 am"}))
	pollID, err := w.InsertPoll(ctx, model.Poll{UserID: id, Title: "Poll"})
	require.NoError(t, err)
	require.NoError(t, w.InsertPollParticipant(ctx, model.PollParticipant{PollID: pollID, ParticipantImg: "img"}))
	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		require.NoError(t, w.InsertScorePoint(ctx, model.ScorePoint{UserID: id, Subject: "Mathematics", Date: d, Score: 50}))
	}

	rows, err := s.Dashboard().LoadDashboard(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rows.User)
	require.Len(t, rows.Timetable, 2)
	assert.Equal(t, "18-Apr-2022", rows.Timetable[0].Date)
	require.NotNil(t, rows.Poll)
	assert.Len(t, rows.PollParticipants, 1)
	assert.Nil(t, rows.Attendance)

	points, err := s.Scores().ListScores(ctx, id, "Mathematics", 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, "2024-01-02", points[1].Date)
}

func TestForumRepository(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	forum := s.Forum()

	q := &model.Query{SpecialMentions: json.RawMessage(`["math", 1.5, true]`), Brief: "What is a limit?"}
	require.NoError(t, forum.CreateQuery(ctx, q))

	ok, err := forum.QueryExists(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, forum.AddAnswer(ctx, &model.Answer{QueryID: q.ID, Text: "A value approached."}))

	queries, err := forum.ListQueries(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.JSONEq(t, `["math", 1.5, true]`, string(queries[0].SpecialMentions))

	answers, err := forum.ListAnswers(ctx)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, q.ID, answers[0].QueryID)
}

func TestEncodeMentions(t *testing.T) {
	assert.Equal(t, "[]", encodeMentions(nil))
	assert.Equal(t, `{"a":1}`, encodeMentions(json.RawMessage(`{"a":1}`)))
}
