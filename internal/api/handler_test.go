package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/ledgerbot/internal/bot"
	"github.com/punchamoorthee/ledgerbot/internal/ledger"
	"github.com/punchamoorthee/ledgerbot/internal/store"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	engine := bot.NewEngine(ledger.NewService(store.NewMemory()), bot.NewMemorySessions())
	return NewHandler(engine)
}

func postMessage(t *testing.T, h *Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.MessageHandler(rec, req)
	return rec
}

func TestMessageHandlerReturnsReplies(t *testing.T) {
	h := newHandler(t)

	rec := postMessage(t, h, bot.Message{
		ConversationID: 7,
		UserID:         101,
		Username:       "alice",
		Text:           bot.LabelBalance,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Replies []bot.Reply `json:"replies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, int64(7), resp.Replies[0].ConversationID)
	assert.Contains(t, resp.Replies[0].Text, "Your balance: 0.00")
	assert.Equal(t, bot.MainMenu(), resp.Replies[0].Keyboard)
}

func TestMessageHandlerRejectsInvalidPayloads(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	h.MessageHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMessage(t, h, map[string]any{"text": "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.HealthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
