// Package webhook receives delivery event callbacks from the email provider
// and feeds them into the delivery status tracker.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hirelane/mailroom/internal/email"
)

// eventStatuses maps provider event types to delivery statuses. Unknown
// event types are acknowledged and ignored.
var eventStatuses = map[string]email.Status{
	"email.sent":      email.StatusSent,
	"email.delivered": email.StatusDelivered,
	"email.opened":    email.StatusOpened,
	"email.clicked":   email.StatusClicked,
	"email.bounced":   email.StatusBounced,
	"email.failed":    email.StatusFailed,
}

// event is the provider callback payload. The log id travels in the tags we
// attach at send time.
type event struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      struct {
		EmailID string            `json:"email_id"`
		Tags    map[string]string `json:"tags"`
		Bounce  struct {
			Message string `json:"message"`
		} `json:"bounce"`
	} `json:"data"`
}

// tracker is implemented by email.Tracker.
type tracker interface {
	UpdateDeliveryStatus(ctx context.Context, logID string, status email.Status, at *time.Time, errorMessage string) error
}

// Handler terminates provider webhooks.
type Handler struct {
	tracker tracker
	log     *slog.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(t tracker, log *slog.Logger) *Handler {
	return &Handler{tracker: t, log: log}
}

// Router mounts the webhook endpoint, intended to be mounted under a
// /webhooks prefix.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/email", h.handleEvent)
	return r
}

// handleEvent applies one provider event to the matching log.
//
// The provider retries non-2xx responses, so only conditions a retry could
// fix return an error status. A callback that races ahead of the send
// commit gets 409 so the provider redelivers it once the log has moved on.
// Unknown event types, missing log tags, and transitions the state machine
// genuinely rejects are acknowledged with 204 and logged; a retry of those
// would hit the same wall.
func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	status, ok := eventStatuses[ev.Type]
	if !ok {
		h.log.DebugContext(r.Context(), "ignoring unknown webhook event type",
			slog.String("type", ev.Type))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logID := ev.Data.Tags["log_id"]
	if logID == "" {
		h.log.WarnContext(r.Context(), "webhook event without log_id tag",
			slog.String("type", ev.Type),
			slog.String("email_id", ev.Data.EmailID),
		)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var at *time.Time
	if !ev.CreatedAt.IsZero() {
		at = &ev.CreatedAt
	}

	err := h.tracker.UpdateDeliveryStatus(r.Context(), logID, status, at, ev.Data.Bounce.Message)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, email.ErrLogNotFound):
		http.Error(w, "unknown email log", http.StatusNotFound)
	case errors.Is(err, email.ErrSendInFlight):
		h.log.DebugContext(r.Context(), "webhook event ahead of send commit, asking for redelivery",
			slog.String("log_id", logID),
			slog.String("type", ev.Type),
		)
		http.Error(w, "send outcome not yet recorded", http.StatusConflict)
	case errors.Is(err, email.ErrInvalidState):
		h.log.WarnContext(r.Context(), "webhook event rejected by state machine",
			slog.String("log_id", logID),
			slog.String("type", ev.Type),
			slog.Any("error", err),
		)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.log.ErrorContext(r.Context(), "failed to apply webhook event",
			slog.String("log_id", logID),
			slog.Any("error", err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
