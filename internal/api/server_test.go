package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/ai"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore/sqlitestore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/invite"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/workflow"
)

type tokenVerifier struct{}

func (tokenVerifier) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	if uid, ok := strings.CutPrefix(token, "token-"); ok {
		return &fbauth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
	}
	return nil, errors.New("invalid token")
}

type stubCompleter struct{ reply string }

func (s stubCompleter) Complete(context.Context, string, string, string) (string, error) {
	return s.reply, nil
}

type recordingMailer struct{ sent []*gomail.Message }

func (m *recordingMailer) DialAndSend(msgs ...*gomail.Message) error {
	m.sent = append(m.sent, msgs...)
	return nil
}

type testEnv struct {
	handler http.Handler
	stores  *store.Stores
	mailer  *recordingMailer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gw, err := sqlitestore.Open(filepath.Join(t.TempDir(), "gtd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })

	logger := zerolog.Nop()
	stores := store.New(gw, nil)
	classifier := ai.NewClassifier(stubCompleter{
		reply: `{"is2MinuteRuleCandidate": false, "isProjectCandidate": true, "confidence": 0.75, "reasoning": "many steps"}`,
	}, logger, ai.WithWriters(stores.NextActions, stores.Issues))
	t.Cleanup(classifier.Wait)
	mailer := &recordingMailer{}

	srv := NewServer(Deps{
		Stores:     stores,
		Engine:     workflow.New(stores, logger),
		Classifier: classifier,
		Invites:    invite.NewService(stores.NextActions, mailer, "gtd@example.com", logger),
		Verifier:   tokenVerifier{},
		Logger:     logger,
	})
	return &testEnv{handler: srv.Handler(), stores: stores, mailer: mailer}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer token-u1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type idResponse struct {
	ID string `json:"id"`
}

func TestHealthIsPublic(t *testing.T) {
	e := newEnv(t)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, w).Status)
}

func TestRoutesRequireToken(t *testing.T) {
	e := newEnv(t)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inbox", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthUser(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/auth/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","email":"u1@example.com","displayName":"","emailVerified":false}`, w.Body.String())
}

func TestErrorMapping(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/inbox", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/maybe-someday/nope", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/projects/nope/tasks/t1/to-next-action", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/inbox", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer token-u1")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateNextActionRejectsDetachedFields(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/next-actions", map[string]any{"title": "Water the ferns"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[idResponse](t, w).ID

	for _, body := range []map[string]any{
		{"completedDate": "2024-06-01T00:00:00Z"},
		{"status": "SCHEDULED", "completedDate": "2024-06-01T00:00:00Z"},
		{"projectTaskId": "t1"},
	} {
		w = e.do(t, http.MethodPut, "/api/next-actions/"+id, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}

	a, err := e.stores.NextActions.Get(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, models.ActionQueued, a.Status)
	assert.Nil(t, a.CompletedDate)
	assert.Nil(t, a.ProjectTaskID)
}

func TestInboxToProjectTaskFlow(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/inbox", map[string]any{"title": "Renew passport"})
	require.Equal(t, http.StatusCreated, w.Code)
	inboxID := decode[idResponse](t, w).ID

	w = e.do(t, http.MethodPost, "/api/inbox/"+inboxID+"/to-next-action", map[string]any{"context": "errands"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/inbox", nil)
	inbox := decode[struct {
		Inbox []models.InboxItem `json:"inbox"`
	}](t, w)
	require.Len(t, inbox.Inbox, 1)
	assert.True(t, inbox.Inbox[0].Processed)

	w = e.do(t, http.MethodPost, "/api/projects", map[string]any{"title": "Trip to Lisbon"})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := decode[idResponse](t, w).ID

	w = e.do(t, http.MethodPost, "/api/projects/"+projectID+"/tasks", map[string]any{"title": "Book flights"})
	require.Equal(t, http.StatusCreated, w.Code)
	taskID := decode[idResponse](t, w).ID

	w = e.do(t, http.MethodPost, "/api/projects/"+projectID+"/tasks/"+taskID+"/to-next-action", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	actionID := decode[idResponse](t, w).ID

	w = e.do(t, http.MethodPut, "/api/next-actions/"+actionID, map[string]any{"status": "DONE"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	project := decode[struct {
		Project models.Project `json:"project"`
	}](t, w).Project
	require.Len(t, project.Tasks, 1)
	assert.Equal(t, models.TaskCompleted, project.Tasks[0].Status)
	assert.Equal(t, actionID, *project.Tasks[0].NextActionID)

	w = e.do(t, http.MethodGet, "/api/next-actions", nil)
	actions := decode[struct {
		NextActions []models.NextAction `json:"nextActions"`
	}](t, w).NextActions
	require.Len(t, actions, 2)
}

func TestClassifyNextAction(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/next-actions", map[string]any{"title": "Organize garage"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[idResponse](t, w).ID

	w = e.do(t, http.MethodPost, "/api/next-actions/"+id+"/classify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Classification models.TaskClassification `json:"classification"`
	}](t, w).Classification
	assert.True(t, got.IsProjectCandidate)
	assert.Equal(t, models.SourceAI, got.Source)
}

func TestSendCalendarInvite(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/next-actions", map[string]any{"title": "Quarterly review"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[idResponse](t, w).ID

	w = e.do(t, http.MethodPost, "/api/send-calendar-invite", map[string]any{
		"actionId": id, "userEmails": []string{"ada@example.com"}, "userId": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "queued actions cannot be invited")

	w = e.do(t, http.MethodPost, "/api/send-calendar-invite", map[string]any{
		"actionId":      id,
		"userEmails":    []string{"ada@example.com"},
		"scheduledDate": time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, e.mailer.sent, 1)

	w = e.do(t, http.MethodPost, "/api/send-calendar-invite", map[string]any{
		"actionId": id, "userEmails": []string{"ada@example.com"}, "userId": "someone-else",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAttachWithoutStorage(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/reference", map[string]any{"title": "Warranty"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[idResponse](t, w).ID

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "warranty.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("two years"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reference/"+id+"/attachments", &body)
	req.Header.Set("Authorization", "Bearer token-u1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamSendsSnapshots(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	_, err := e.stores.Inbox.Capture(context.Background(), "u1", models.InboxItem{Title: "Sketch logo"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/stream/inbox", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token-u1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sc := bufio.NewScanner(resp.Body)
	var event, data string
	for sc.Scan() {
		line := sc.Text()
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = v
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = v
			break
		}
	}
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, "Sketch logo")

	w := e.do(t, http.MethodGet, "/api/stream/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
