package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/internal/activity"
	"studentportal/internal/completion"
	"studentportal/internal/events"
	"studentportal/internal/handler"
	"studentportal/internal/repository/memory"
	"studentportal/internal/seed"
	"studentportal/internal/service"
	"studentportal/pkg/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T, completer completion.TextCompleter) *testServer {
	t.Helper()
	return newTestServerWithFeed(t, completer, nil)
}

func newTestServerWithFeed(t *testing.T, completer completion.TextCompleter, activityReader handler.ActivityReader) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()

	gen := seed.NewGenerator(rand.New(rand.NewPCG(7, 7)), time.Now)
	require.NoError(t, seed.NewSeeder(store.Seed(), logger, seed.WithGenerator(gen)).Run(context.Background()))

	if completer == nil {
		completer = completion.Func(func(context.Context, completion.Request) (string, error) {
			return "", completion.ErrMissingCredential
		})
	}

	sessions := service.NewSessionIssuer("test-secret", time.Hour)
	current := service.NewCurrentUserResolver(store.Users(), sessions, logger)
	emitter := events.NewEmitter(nil, logger)

	h := Handlers{
		Auth:  handler.NewAuthHandler(service.NewAuthService(store.Users(), service.PlaintextScheme{}, sessions, logger), logger),
		Users: handler.NewUserHandler(service.NewUserService(store.Users(), service.PlaintextScheme{}, logger), logger),
		Dashboard: handler.NewDashboardHandler(
			service.NewDashboardService(store.Dashboard()),
			service.NewPerformanceService(store.Scores()),
			current,
			logger,
		),
		Forum:    handler.NewForumHandler(service.NewForumService(store.Forum(), store, emitter, logger), logger),
		Doubt:    handler.NewDoubtHandler(service.NewDoubtSolverService(completer, nil, logger), logger),
		Videos:   handler.NewVideoHandler(service.NewVideoCatalog(nil)),
		Activity: handler.NewActivityHandler(activityReader, logger),
	}
	return &testServer{engine: NewRouter(h, Deps{Store: store}, logger), store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, msg, decode(t, w)["error"])
}

func TestAuthenticate(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/authenticate", `{"email":"alex.johnson@email.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Authentication successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Alex Johnson", user["full_name"])
	assert.Equal(t, "+1 555-0101", user["phone_number"])
	assert.NotContains(t, user, "password")
	assert.NotEmpty(t, body["token"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == handler.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	assertError(t, s.do(t, http.MethodPost, "/api/authenticate", `{"email":"alex.johnson@email.com","password":"nope"}`),
		http.StatusUnauthorized, "Password does not match our records for this email")
	assertError(t, s.do(t, http.MethodPost, "/api/authenticate", `{"email":"ghost@email.com","password":"nope"}`),
		http.StatusUnauthorized, "No account found with these credentials")
	assertError(t, s.do(t, http.MethodPost, "/api/authenticate", `{"email":"","password":"x"}`),
		http.StatusBadRequest, "Email address and password are required")
	assertError(t, s.do(t, http.MethodPost, "/api/authenticate", `{"email":"bad","password":"x"}`),
		http.StatusBadRequest, "Please enter a valid email address")
}

func TestUserCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	users := decode(t, w)["users"].([]any)
	require.Len(t, users, 10)
	first := users[0].(map[string]any)
	assert.Equal(t, "alex.johnson@email.com", first["email_address"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, first["registration_date"])

	create := `{"first_name":"Grace","last_name":"Hopper","email_address":"Grace@Navy.mil","phone_number":"+1 555-010-2222","password":"cobol"}`
	w = s.do(t, http.MethodPost, "/api/users", create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "User account created successfully", body["message"])
	created := body["user"].(map[string]any)
	assert.Equal(t, "grace@navy.mil", created["email_address"])
	assert.Equal(t, "Grace Hopper", created["full_name"])
	id := int(created["id"].(float64))

	assertError(t, s.do(t, http.MethodPost, "/api/users", create), http.StatusBadRequest, "An account with this email already exists")
	assertError(t, s.do(t, http.MethodPost, "/api/users", `{"first_name":"Grace"}`), http.StatusBadRequest, "All fields are required")
	assertError(t, s.do(t, http.MethodPost, "/api/users",
		`{"first_name":"Gr4ce","last_name":"H","email_address":"g@h.io","phone_number":"+1 555-010-2222","password":"x"}`),
		http.StatusBadRequest, "Names should only contain letters, spaces, and hyphens")
	assertError(t, s.do(t, http.MethodPost, "/api/users",
		`{"first_name":"Grace","last_name":"H","email_address":"g@h","phone_number":"+1 555-010-2222","password":"x"}`),
		http.StatusBadRequest, "Please enter a valid email address")
	assertError(t, s.do(t, http.MethodPost, "/api/users",
		`{"first_name":"Grace","last_name":"H","email_address":"g@h.io","phone_number":"12","password":"x"}`),
		http.StatusBadRequest, "Please enter a valid phone number")

	w = s.do(t, http.MethodDelete, "/api/users/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User account deleted successfully", decode(t, w)["message"])

	assertError(t, s.do(t, http.MethodDelete, "/api/users/"+itoa(id), ""), http.StatusNotFound, "User not found")
	assertError(t, s.do(t, http.MethodDelete, "/api/users/abc", ""), http.StatusNotFound, "Endpoint not found")
}

func TestPerformanceData(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/performance-data", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Alex Johnson", body["user"])

	subjects := body["subjects"].(map[string]any)
	for _, name := range []string{"Mathematics", "Physics", "Chemistry"} {
		series := subjects[name].([]any)
		require.Len(t, series, 14, name)
		prev := ""
		for _, p := range series {
			point := p.(map[string]any)
			date := point["date"].(string)
			assert.Greater(t, date, prev)
			prev = date
			score := point["score"].(float64)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	}
}

func TestPerformanceFollowsSession(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/authenticate", `{"email":"maria.garcia@email.com","password":"securepass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = s.do(t, http.MethodGet, "/api/performance-data", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maria Garcia", decode(t, w)["user"])

	w = s.do(t, http.MethodGet, "/api/dashboard", "", "Cookie", handler.SessionCookie+"="+token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Maria Garcia", body["user_name"])
	assert.Equal(t, float64(244), body["attendance"].(map[string]any)["attended"])
}

func TestPerformanceNoUsers(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.store.Seed().ResetSchema(context.Background()))

	assertError(t, s.do(t, http.MethodGet, "/api/performance-data", ""), http.StatusNotFound, "No user found")

	w := s.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Student", decode(t, w)["user_name"])
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/raise-query", `{"special_mentions":["optics"],"brief":"How do lenses focus?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, "Hello, Alex Johnson")
	assert.Contains(t, html, "Maths Extra Class Poll")
	assert.Contains(t, html, "#optics")
	assert.Contains(t, html, "How do lenses focus?")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/raise-query", "").Code)
}

func TestForumFlow(t *testing.T) {
	s := newTestServer(t, nil)

	assertError(t, s.do(t, http.MethodPost, "/api/raise-query", `{"special_mentions":[],"brief":"   "}`),
		http.StatusBadRequest, "Brief about your query is required")

	w := s.do(t, http.MethodPost, "/api/raise-query", `{"special_mentions":["math","exam"],"brief":"What is a derivative?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Query submitted successfully", decode(t, w)["message"])

	w = s.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	queries := decode(t, w)["queries"].([]any)
	require.Len(t, queries, 1)
	q := queries[0].(map[string]any)
	assert.Equal(t, []any{"#math", "#exam"}, q["tags"])
	qid := int(q["id"].(float64))

	w = s.do(t, http.MethodPost, "/api/add-answer", `{"query_id":"`+itoa(qid)+`","answer":" Rate of change. "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Rate of change.", body["answer"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, body["created_at"])

	w = s.do(t, http.MethodPost, "/api/add-answer", `{"query_id":`+itoa(qid)+`,"answer":"Slope."}`)
	require.Equal(t, http.StatusOK, w.Code)

	assertError(t, s.do(t, http.MethodPost, "/api/add-answer", `{"query_id":null,"answer":"x"}`),
		http.StatusBadRequest, "Query ID and answer are required")
	assertError(t, s.do(t, http.MethodPost, "/api/add-answer", `{"query_id":1,"answer":""}`),
		http.StatusBadRequest, "Query ID and answer are required")
	assertError(t, s.do(t, http.MethodPost, "/api/add-answer", `{"query_id":999,"answer":"x"}`),
		http.StatusNotFound, "Query not found")

	w = s.do(t, http.MethodGet, "/api/dashboard", "")
	answers := decode(t, w)["queries"].([]any)[0].(map[string]any)["answers"].([]any)
	require.Len(t, answers, 2)
	assert.Equal(t, "Rate of change.", answers[0].(map[string]any)["text"])
	assert.Equal(t, "Slope.", answers[1].(map[string]any)["text"])
}

func TestMixedMentionsRenderAsTags(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/raise-query", `{"special_mentions":[" optics ", 2, true, null, "", false],"brief":"Lens?"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	q := decode(t, w)["queries"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"#optics", "#2", "#True"}, q["tags"])
}

func TestDoubtSolver(t *testing.T) {
	s := newTestServer(t, completion.Func(func(_ context.Context, req completion.Request) (string, error) {
		if strings.Contains(req.UserMessage, "fail") {
			return "", errors.New("upstream 503")
		}
		return "  42  ", nil
	}))

	w := s.do(t, http.MethodPost, "/api/doubt-solver", `{"message":"meaning of life?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", decode(t, w)["response"])

	assertError(t, s.do(t, http.MethodPost, "/api/doubt-solver", `{"message":"  "}`), http.StatusBadRequest, "No doubt provided")
	assertError(t, s.do(t, http.MethodPost, "/api/doubt-solver", `{"message":"please fail"}`),
		http.StatusInternalServerError, "Failed to get response from LLM")

	noKey := newTestServer(t, nil)
	assertError(t, noKey.do(t, http.MethodPost, "/api/doubt-solver", `{"message":"hi"}`),
		http.StatusInternalServerError, "OpenAI API key not set in environment")
}

func TestVideos(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	current := body["current"].(map[string]any)
	id := current["id"].(string)
	assert.Equal(t, "https://www.youtube.com/watch?v="+id, current["url"])
	assert.Equal(t, "https://img.youtube.com/vi/"+id+"/hqdefault.jpg", current["thumbnail"])
	assert.Len(t, body["upcoming"].([]any), 4)
}

func TestNotFoundHealthAndTrace(t *testing.T) {
	s := newTestServer(t, nil)

	assertError(t, s.do(t, http.MethodGet, "/nope", ""), http.StatusNotFound, "Endpoint not found")

	w := s.do(t, http.MethodGet, "/healthz", "", trace.HeaderName(), "abc-123")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(trace.HeaderName()))

	w = s.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName()))

	w = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_")
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	r := gin.New()
	r.Use(TraceID(), Recovery(zap.NewNop()))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

type stubFeed struct{}

func (stubFeed) Recent(_ context.Context, n int) ([]activity.Entry, error) {
	return []activity.Entry{{Kind: activity.KindQuery, QueryID: n, Text: "Limits?"}}, nil
}

func (stubFeed) TopMentions(context.Context, int) ([]activity.MentionCount, error) {
	return []activity.MentionCount{{Mention: "#math", Count: 2}}, nil
}

func (stubFeed) AnswerCount(_ context.Context, queryID int) (int64, error) {
	return int64(queryID * 2), nil
}

func TestForumActivity(t *testing.T) {
	assertError(t, newTestServer(t, nil).do(t, http.MethodGet, "/api/forum/activity", ""),
		http.StatusServiceUnavailable, "Forum activity feed unavailable")

	s := newTestServerWithFeed(t, nil, stubFeed{})
	w := s.do(t, http.MethodGet, "/api/forum/activity?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	recent := body["recent"].([]any)
	require.Len(t, recent, 1)
	assert.Equal(t, float64(5), recent[0].(map[string]any)["query_id"])
	assert.Equal(t, "#math", body["top_mentions"].([]any)[0].(map[string]any)["mention"])

	w = s.do(t, http.MethodGet, "/api/forum/activity/queries/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(3), body["query_id"])
	assert.Equal(t, float64(6), body["answers"])

	assertError(t, s.do(t, http.MethodGet, "/api/forum/activity/queries/x", ""),
		http.StatusNotFound, "Endpoint not found")
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
