package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"recruit_backend/internal/config"
	"recruit_backend/internal/model"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-at-least-32-characters"

const testCatalog = `
templates:
  - id: 1
    title: Go fundamentals
    duration_minutes: 30
    passing_score: 2
    questions:
      - {id: 1, text: Pick B, type: mcq_single, options: [A, B], correct: [B], points: 1}
      - {id: 2, text: Explain channels, type: short_answer, points: 2}
  - id: 5
    title: Unlinked
    questions:
      - {id: 5, text: "Yes?", type: true_false, options: ["true", "false"], correct: ["true"], points: 1}
jobs:
  - id: 1
    title: Backend Engineer
    assessments:
      - {id: 1, template_id: 1, required: true}
applications:
  - {id: 1, job_id: 1, candidate_id: 2}
`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
	}
	a := newApp(cfg, nil, cache.NewMemoryCache(), time.Now)
	t.Cleanup(a.cancel)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))
	require.NoError(t, a.Seed(a.ctx, path))

	return &testServer{t: t, app: a}
}

func (s *testServer) token(userID uint, role model.UserRole) string {
	tok, err := util.GenerateJWT(userID, role, "user@example.com", testSecret, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type startData struct {
	AttemptID uint   `json:"attemptId"`
	Status    string `json:"status"`
	Resumed   bool   `json:"resumed"`
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	data := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "ok", data["status"])
	components, ok := data["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "memory", components["cache"])
	assert.Equal(t, "memory", components["database"])
}

func TestAssessmentFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	candidate := s.token(2, model.Candidate)
	other := s.token(3, model.Candidate)
	admin := s.token(1, model.Admin)

	code, _ := s.do(http.MethodPost, "/api/assessments/start/1", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodGet, "/api/candidate/assessments/pending", candidate, nil)
	require.Equal(t, http.StatusOK, code)
	pending := decode[[]map[string]interface{}](t, env.Data)
	require.Len(t, pending, 1)
	assert.Equal(t, "not_started", pending[0]["status"])

	code, _ = s.do(http.MethodPost, "/api/assessments/start/5", candidate, gin.H{"jobId": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/assessments/start/1", candidate, gin.H{"jobId": 1})
	require.Equal(t, http.StatusOK, code, env.Message)
	started := decode[startData](t, env.Data)
	assert.Equal(t, "in_progress", started.Status)
	assert.False(t, started.Resumed)

	code, env = s.do(http.MethodPost, "/api/assessments/start/1", candidate, gin.H{"jobId": 1})
	require.Equal(t, http.StatusOK, code)
	resumed := decode[startData](t, env.Data)
	assert.Equal(t, started.AttemptID, resumed.AttemptID)
	assert.True(t, resumed.Resumed)

	code, env = s.do(http.MethodGet, "/api/assessments/1/questions", candidate, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "correctAnswers")

	answerPath := func(q string) string {
		return "/api/assessments/attempts/" + itoa(started.AttemptID) + "/answers/" + q
	}
	code, _ = s.do(http.MethodPut, answerPath("1"), candidate, gin.H{"value": []string{"B"}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = s.do(http.MethodPut, answerPath("1"), candidate, gin.H{"value": "B"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPut, answerPath("99"), candidate, gin.H{"value": "B"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodPut, answerPath("1"), other, gin.H{"value": "A"})
	assert.Equal(t, http.StatusForbidden, code)

	submitPath := "/api/assessments/attempts/" + itoa(started.AttemptID) + "/submit"
	code, env = s.do(http.MethodPost, submitPath, candidate, gin.H{"answers": map[string]string{"2": "buffered channels decouple sender and receiver"}})
	require.Equal(t, http.StatusOK, code, env.Message)
	submitted := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "completed", submitted["status"])
	assert.EqualValues(t, 1, submitted["score"])
	assert.EqualValues(t, 3, submitted["maxScore"])
	assert.Equal(t, false, submitted["passed"])
	assert.EqualValues(t, 1, submitted["pendingReview"])

	code, _ = s.do(http.MethodPost, submitPath, candidate, gin.H{"answers": map[string]string{}})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(http.MethodPost, "/api/assessments/start/1", candidate, gin.H{"jobId": 1})
	require.Equal(t, http.StatusConflict, code)
	conflict := decode[startData](t, env.Data)
	assert.Equal(t, started.AttemptID, conflict.AttemptID)

	resultsPath := "/api/assessments/attempts/" + itoa(started.AttemptID) + "/results"
	code, _ = s.do(http.MethodGet, resultsPath, other, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(http.MethodGet, resultsPath, admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "correctAnswers")

	code, env = s.do(http.MethodGet, "/api/admin/assessments/reviews", admin, nil)
	require.Equal(t, http.StatusOK, code)
	queue := decode[[]map[string]interface{}](t, env.Data)
	require.Len(t, queue, 1)

	reviewPath := "/api/admin/assessments/attempts/" + itoa(started.AttemptID) + "/answers/2/review"
	code, _ = s.do(http.MethodPost, reviewPath, candidate, gin.H{"isCorrect": true, "pointsEarned": 2})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, reviewPath, admin, gin.H{"isCorrect": true, "pointsEarned": 5})
	assert.Equal(t, http.StatusBadRequest, code)
	code, env = s.do(http.MethodPost, reviewPath, admin, gin.H{"isCorrect": true, "pointsEarned": 2})
	require.Equal(t, http.StatusOK, code, env.Message)
	reviewed := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 3, reviewed["score"])
	assert.Equal(t, true, reviewed["passed"])

	code, env = s.do(http.MethodGet, "/api/candidate/assessments/pending", candidate, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]map[string]interface{}](t, env.Data))
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	candidate := s.token(2, model.Candidate)

	code, _ := s.do(http.MethodPost, "/api/auth/logout", candidate, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(http.MethodGet, "/api/candidate/assessments/pending", candidate, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, util.ErrTokenRevoked.Error(), env.Message)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(util.HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(util.HeaderRequestID))

	w = httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotEmpty(t, w.Header().Get(util.HeaderRequestID))
}

func TestAdminResultViews(t *testing.T) {
	s := newTestServer(t)
	candidate := s.token(2, model.Candidate)
	admin := s.token(1, model.Admin)

	code, env := s.do(http.MethodPost, "/api/assessments/start/1", candidate, gin.H{"jobId": 1})
	require.Equal(t, http.StatusOK, code, env.Message)
	started := decode[startData](t, env.Data)
	submitPath := "/api/assessments/attempts/" + itoa(started.AttemptID) + "/submit"
	code, env = s.do(http.MethodPost, submitPath, candidate, gin.H{"answers": map[string]interface{}{"1": "B"}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodGet, "/api/admin/assessments/results", admin, nil)
	require.Equal(t, http.StatusOK, code)
	all := decode[[]map[string]interface{}](t, env.Data)
	require.Len(t, all, 1)
	assert.EqualValues(t, started.AttemptID, all[0]["attemptId"])
	assert.Equal(t, "Go fundamentals", all[0]["templateTitle"])
	assert.Equal(t, "completed", all[0]["status"])
	assert.EqualValues(t, 1, all[0]["score"])

	code, env = s.do(http.MethodGet, "/api/admin/candidates/2/assessments", admin, nil)
	require.Equal(t, http.StatusOK, code)
	mine := decode[[]map[string]interface{}](t, env.Data)
	require.Len(t, mine, 1)
	assert.EqualValues(t, 1, mine[0]["jobId"])

	code, env = s.do(http.MethodGet, "/api/admin/candidates/3/assessments", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]map[string]interface{}](t, env.Data))

	code, _ = s.do(http.MethodGet, "/api/admin/candidates/abc/assessments", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodGet, "/api/admin/assessments/results", candidate, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/admin/candidates/2/assessments", candidate, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, env.Code)
	assert.Equal(t, "Resource not found", env.Message)
}

type closingCache struct {
	*cache.MemoryCache
	closed bool
}

func (c *closingCache) Close() error {
	c.closed = true
	return nil
}

func TestShutdownClosesCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
	}
	c := &closingCache{MemoryCache: cache.NewMemoryCache()}
	a := newApp(cfg, nil, c, time.Now)

	a.shutdown(context.Background())
	assert.True(t, c.closed)
	assert.Error(t, a.ctx.Err())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
