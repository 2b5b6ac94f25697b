package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/genai"
	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/isdelr/talakhisi-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerEmail    = "owner@test.com"
	ownerPassword = "owner-pass"
)

type stubAI struct{}

func (stubAI) Summarize(_ context.Context, lesson genai.Lesson) (*models.SummarizationResult, error) {
	subject := "Text"
	if lesson.HasMedia() {
		subject = lesson.MimeType
	}
	return &models.SummarizationResult{Subject: subject, Summary: "summary"}, nil
}

func (stubAI) Chat(_ context.Context, lesson string, history []models.ChatMessage, question string) (string, error) {
	if lesson == "no key" {
		return "", genai.ErrCredentialMissing
	}
	return "answer to " + question, nil
}

func (stubAI) Speech(_ context.Context, text string) ([]byte, error) {
	return []byte{0x00, 0x80, 0xff, 0x7f}, nil
}

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := kv.NewMemoryStore()
	hub := websocket.NewHub()
	go hub.Run(ctx)

	library := services.NewLibraryService(store)
	accounts := services.NewAccountService(store, library, ownerEmail, ownerPassword)
	feedback := services.NewFeedbackService(store)
	messages := services.NewMessageService(store, hub)
	sessions := services.NewSessionService(store)
	app := controller.New(sessions, accounts, stubAI{})

	router := NewRouter(Dependencies{
		App:       app,
		Tokens:    auth.NewManager("test-secret", time.Hour),
		Hub:       hub,
		Accounts:  accounts,
		Library:   library,
		Feedback:  feedback,
		Messages:  messages,
		Dashboard: services.NewDashboardService(accounts, library, feedback, messages, nil),
		Chat:      stubAI{},
		Speech:    stubAI{},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (s *testServer) do(method, path, token string, body interface{}) *http.Response {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *testServer) signup(name, email string) string {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"name": name, "email": email, "password": "abcdef"})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	return decode[struct {
		Token string `json:"token"`
	}](s.t, resp).Token
}

func (s *testServer) ownerToken() string {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": ownerEmail, "password": ownerPassword})
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	return decode[struct {
		Token string `json:"token"`
	}](s.t, resp).Token
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/v1/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := s.signup("Sara", "sara@test.com")

	resp = s.do(http.MethodGet, "/api/v1/state", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, controller.ViewApp, decode[controller.State](t, resp).View)

	resp = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.Session{Name: "Sara", Email: "sara@test.com", Role: models.RoleUser}, decode[models.Session](t, resp))

	resp = s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"name": "X", "email": " SARA@test.com", "password": "abcdef"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "sara@test.com", "password": "nope!!"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"name": "Y", "email": "y@test.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[controller.State](t, resp)
	assert.Equal(t, controller.ViewLanding, state.View)
	assert.Nil(t, state.User)

	resp = s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProcessText(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/api/v1/process", "", map[string]string{"text": "A long enough lesson text"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := s.signup("Sara", "sara@test.com")

	resp = s.do(http.MethodPost, "/api/v1/process", token, map[string]string{"text": "short"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	state := decode[controller.State](t, resp)
	assert.Equal(t, controller.PhaseError, state.Phase)
	assert.Equal(t, controller.MsgTextTooShort, state.Error)

	resp = s.do(http.MethodPost, "/api/v1/process", token, map[string]string{"text": "A long enough lesson text"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[controller.State](t, resp)
	assert.Equal(t, controller.PhaseResult, state.Phase)
	require.NotNil(t, state.Result)
	assert.Equal(t, "Text", state.Result.Subject)
	assert.NotEmpty(t, state.Result.ID)

	resp = s.do(http.MethodPost, "/api/v1/state/reset", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, controller.PhaseIdle, decode[controller.State](t, resp).Phase)

	// A token outliving its session sends the application to the login form.
	resp = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/process", token, map[string]string{"text": "A long enough lesson text"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	state = decode[controller.State](t, resp)
	assert.Equal(t, controller.ViewAuth, state.View)
	assert.Equal(t, controller.AuthLogin, state.AuthMode)
	assert.Nil(t, state.Result)
}

func TestProcessMultipartUpload(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("Sara", "sara@test.com")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="board.png"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/v1/process", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[controller.State](t, resp)
	assert.Equal(t, "board.png", state.Result.Title)
	assert.Equal(t, "image/png", state.Result.Subject)
}

func TestViews(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("Sara", "sara@test.com")
	resp := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/state/view", token, map[string]string{"view": "auth", "authMode": "signup"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, controller.AuthSignup, decode[controller.State](t, resp).AuthMode)

	resp = s.do(http.MethodPost, "/api/v1/state/view", token, map[string]string{"view": "library"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "sara@test.com", "password": "abcdef"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token = decode[struct {
		Token string `json:"token"`
	}](t, resp).Token

	resp = s.do(http.MethodPost, "/api/v1/state/view", token, map[string]string{"view": "dashboard"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/state/view", token, map[string]string{"view": "settings"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/state/home", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, controller.ViewApp, decode[controller.State](t, resp).View)
}

func TestStateBelongsToLoggedInAccount(t *testing.T) {
	s := newTestServer(t)
	saraToken := s.signup("Sara", "sara@test.com")

	resp := s.do(http.MethodPost, "/api/v1/process", saraToken, map[string]string{"text": "A long enough lesson text"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, path := range []string{"/api/v1/state", "/api/v1/state/"} {
		resp = s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "sara@test.com", path)
	}

	resp = s.do(http.MethodPost, "/api/v1/library", saraToken, models.LibraryItem{ID: "l1", Title: "Cells"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Ali takes over the application; Sara's token no longer reaches it.
	aliToken := s.signup("Ali", "ali@test.com")

	resp = s.do(http.MethodGet, "/api/v1/state", saraToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/process", saraToken, map[string]string{"text": "A long enough lesson text"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/library/l1/open", saraToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/logout", saraToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[controller.State](t, resp).User)

	resp = s.do(http.MethodGet, "/api/v1/state", aliToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[controller.State](t, resp)
	require.NotNil(t, state.User)
	assert.Equal(t, "ali@test.com", state.User.Email)
}

func TestLibraryRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("Sara", "sara@test.com")

	resp := s.do(http.MethodGet, "/api/v1/library", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/library", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.LibraryItem](t, resp))

	item := models.LibraryItem{ID: "l1", Title: "Cells", Subject: "Biology"}
	resp = s.do(http.MethodPost, "/api/v1/library", token, item)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/library", token, item)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/library", token, models.LibraryItem{ID: "l2", Subject: "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/library/subjects", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Math", "Biology"}, decode[[]string](t, resp))

	resp = s.do(http.MethodGet, "/api/v1/library?subject=Biology", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.LibraryItem](t, resp), 1)

	resp = s.do(http.MethodPost, "/api/v1/library/l1/open", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[controller.State](t, resp)
	assert.Equal(t, controller.PhaseResult, state.Phase)
	assert.Equal(t, "Cells", state.Result.Title)

	resp = s.do(http.MethodPost, "/api/v1/library/toggle", token, item)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[struct {
		Saved bool `json:"saved"`
	}](t, resp).Saved)

	resp = s.do(http.MethodDelete, "/api/v1/library/l2", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = s.do(http.MethodDelete, "/api/v1/library/l2", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/library", token, models.LibraryItem{Title: "no id"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup("Sara", "sara@test.com")

	for _, path := range []string{"/api/v1/admin/accounts", "/api/v1/admin/feedback", "/api/v1/admin/messages", "/api/v1/admin/stats"} {
		resp := s.do(http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	adminToken := s.ownerToken()
	resp := s.do(http.MethodGet, "/api/v1/admin/accounts", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accounts := decode[[]models.Account](t, resp)
	assert.Len(t, accounts, 2)
	for _, a := range accounts {
		assert.Empty(t, a.Password)
	}

	resp = s.do(http.MethodDelete, "/api/v1/admin/accounts/"+ownerEmail, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/admin/accounts/sara@test.com/role", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.RoleAdmin, decode[struct {
		Role models.Role `json:"role"`
	}](t, resp).Role)

	resp = s.do(http.MethodPost, "/api/v1/admin/accounts/sara@test.com/role", adminToken, map[string]string{"role": "user"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.RoleUser, decode[struct {
		Role models.Role `json:"role"`
	}](t, resp).Role)

	resp = s.do(http.MethodDelete, "/api/v1/admin/accounts/sara@test.com", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/admin/accounts/sara@test.com/role", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeedbackAndMessages(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup("Sara", "sara@test.com")
	adminToken := s.ownerToken()

	resp := s.do(http.MethodPost, "/api/v1/feedback", userToken, map[string]string{"content": "More quizzes please"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decode[models.FeedbackEntry](t, resp)
	assert.Equal(t, "Sara", entry.UserName)
	assert.Equal(t, models.FeedbackNew, entry.Status)

	resp = s.do(http.MethodPost, "/api/v1/feedback", userToken, map[string]string{"content": "   \n\t "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/admin/feedback/"+entry.ID+"/status", adminToken, map[string]string{"status": "read"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/admin/feedback/"+entry.ID+"/status", adminToken, map[string]string{"status": "gone"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/admin/feedback", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]models.FeedbackEntry](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, models.FeedbackRead, entries[0].Status)

	resp = s.do(http.MethodPost, "/api/v1/admin/messages", adminToken, map[string]string{"to": "all", "content": "Exam on Monday"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/v1/admin/messages", adminToken, map[string]string{"to": "other@test.com", "content": "Private"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	private := decode[models.AppMessage](t, resp)
	assert.Equal(t, models.MessagePrivate, private.Type)
	assert.Equal(t, "Administration", private.From)

	resp = s.do(http.MethodGet, "/api/v1/messages", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inbox := decode[[]models.AppMessage](t, resp)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.MessageBroadcast, inbox[0].Type)

	resp = s.do(http.MethodDelete, "/api/v1/admin/messages/"+private.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = s.do(http.MethodDelete, "/api/v1/admin/messages/"+private.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[models.DashboardStats](t, resp)
	assert.Equal(t, 2, stats.Accounts)
	assert.Equal(t, 1, stats.Admins)
	assert.Equal(t, 1, stats.Feedback)
	assert.Equal(t, 0, stats.NewFeedback)
	assert.Equal(t, 1, stats.Messages)
}

func TestChatAndSpeech(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("Sara", "sara@test.com")

	resp := s.do(http.MethodPost, "/api/v1/chat", token, map[string]interface{}{
		"lesson":   "cells",
		"question": "What is a cell?",
		"history":  []models.ChatMessage{{Role: models.ChatRoleUser, Text: "hi"}, {Role: models.ChatRoleModel, Text: "hello"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chat := decode[struct {
		Answer  models.ChatMessage   `json:"answer"`
		History []models.ChatMessage `json:"history"`
	}](t, resp)
	assert.Equal(t, "answer to What is a cell?", chat.Answer.Text)
	assert.Len(t, chat.History, 4)

	resp = s.do(http.MethodPost, "/api/v1/chat", token, map[string]string{"lesson": "no key", "question": "q"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/speech", token, map[string]string{"text": "read me"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))

	resp = s.do(http.MethodPost, "/api/v1/speech?format=samples", token, map[string]string{"text": "read me"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	samples := decode[struct {
		SampleRate int       `json:"sampleRate"`
		Samples    []float32 `json:"samples"`
	}](t, resp)
	assert.Equal(t, genai.SpeechSampleRate, samples.SampleRate)
	assert.Equal(t, []float32{-1, float32(32767) / 32768}, samples.Samples)
}

func TestWebSocketReceivesMessages(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup("Sara", "sara@test.com")
	adminToken := s.ownerToken()

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/v1/ws?token=" + userToken
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(websocket.Message{Action: websocket.ActionPing}))
	var pong websocket.Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, websocket.ActionPong, pong.Action)

	resp := s.do(http.MethodPost, "/api/v1/admin/messages", adminToken, map[string]string{"to": "sara@test.com", "content": "Well done"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var event websocket.Message
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, websocket.ActionNewMessage, event.Action)
	payload := event.Payload.(map[string]interface{})
	assert.Equal(t, "Well done", payload["content"])
}
