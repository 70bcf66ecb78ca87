package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tripmind/quota-service/internal/reconcile"
)

type JobRunner interface {
	Run(ctx context.Context) reconcile.Result
}

// CronHandler — GET-эндпоинт под внешний планировщик. Секрет сравнивается
// за константное время; без валидного секрета никаких побочных эффектов.
type CronHandler struct {
	log    *slog.Logger
	secret string
	job    JobRunner
}

func NewCronHandler(log *slog.Logger, secret string, job JobRunner) *CronHandler {
	return &CronHandler{log: log, secret: secret, job: job}
}

type errorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *CronHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:     "method not allowed",
			Timestamp: time.Now(),
		})
		return
	}

	if !h.authorized(r) {
		h.log.Warn("cron trigger rejected", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:     "unauthorized",
			Timestamp: time.Now(),
		})
		return
	}

	res := h.job.Run(r.Context())
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:     res.Error,
			Timestamp: res.Timestamp,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	token := r.Header.Get("X-Cron-Secret")
	if token == "" {
		auth := r.Header.Get("Authorization")
		token = strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			token = ""
		}
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
