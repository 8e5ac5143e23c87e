// Package api is the thin HTTP adapter in front of the bot engine. The
// engine never sees HTTP; this layer only decodes messages, encodes
// replies and records metrics.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/punchamoorthee/ledgerbot/internal/bot"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Total inbound messages processed, labeled by outcome",
	}, []string{"status"})

	messageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_message_duration_seconds",
		Help:    "Latency distribution of message handling",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"endpoint"})
)

type Handler struct {
	engine *bot.Engine
}

func NewHandler(engine *bot.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MessageHandler accepts one inbound chat message and returns the replies
// the channel should deliver.
func (h *Handler) MessageHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(messageDuration.WithLabelValues("/messages"))
	defer timer.ObserveDuration()

	var msg bot.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		messagesTotal.WithLabelValues("bad_request").Inc()
		respondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg.ConversationID == 0 || msg.UserID == 0 {
		messagesTotal.WithLabelValues("bad_request").Inc()
		respondWithError(w, http.StatusBadRequest, "conversation_id and user_id are required")
		return
	}

	replies := h.engine.HandleMessage(r.Context(), msg)

	messagesTotal.WithLabelValues("ok").Inc()
	respondWithJSON(w, http.StatusOK, map[string][]bot.Reply{"replies": replies})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, map[string]string{"error": msg})
}
