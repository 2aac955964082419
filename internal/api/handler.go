// Package api exposes the email pipeline over HTTP: submissions, delivery
// status reads, manual retries, and log/template queries.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hirelane/mailroom/internal/email"
	"github.com/hirelane/mailroom/pkg/mergefield"
)

// emailService is implemented by email.Service.
type emailService interface {
	SendEmail(ctx context.Context, opts email.SendOptions) (string, error)
	SendBulkEmails(ctx context.Context, opts email.BulkSendOptions) ([]string, error)
}

// deliveryTracker is implemented by email.Tracker.
type deliveryTracker interface {
	GetDeliveryStatus(ctx context.Context, logID string) (*email.DeliverySnapshot, error)
	RetryFailedEmail(ctx context.Context, logID string) error
}

// logLister is the read slice of email.LogStore.
type logLister interface {
	List(ctx context.Context, filter email.LogFilter) ([]*email.EmailLog, int, error)
}

// templateLister is the read slice of email.TemplateStore.
type templateLister interface {
	List(ctx context.Context, filter email.TemplateFilter) ([]*email.Template, error)
}

// Handler serves the pipeline API.
type Handler struct {
	service   emailService
	tracker   deliveryTracker
	logs      logLister
	templates templateLister
	log       *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(service emailService, tracker deliveryTracker, logs logLister, templates templateLister, log *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		tracker:   tracker,
		logs:      logs,
		templates: templates,
		log:       log,
	}
}

// Router mounts the API endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/emails", h.handleSend)
	r.Post("/emails/bulk", h.handleSendBulk)
	r.Get("/emails", h.handleListLogs)
	r.Get("/emails/{id}/status", h.handleStatus)
	r.Post("/emails/{id}/retry", h.handleRetry)
	r.Get("/templates", h.handleListTemplates)
	r.Get("/merge-fields", h.handleMergeFields)
	r.Post("/merge-fields/validate", h.handleValidateMergeFields)

	return r
}

type sendRequest struct {
	To          string            `json:"to"`
	CC          []string          `json:"cc,omitempty"`
	BCC         []string          `json:"bcc,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"html_content"`
	TextContent string            `json:"text_content,omitempty"`
	TemplateID  string            `json:"template_id,omitempty"`
	MergeData   *mergeData        `json:"merge_data,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_for,omitempty"`
	Candidate   string            `json:"candidate_id,omitempty"`
	Application string            `json:"application_id,omitempty"`
	SubmittedBy string            `json:"submitted_by,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type mergeData struct {
	Candidate *struct {
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		CurrentTitle   string `json:"current_title"`
		CurrentCompany string `json:"current_company"`
		LinkedinURL    string `json:"linkedin_url"`
	} `json:"candidate,omitempty"`
	Application *struct {
		JobTitle  string    `json:"job_title"`
		Status    string    `json:"status"`
		Source    string    `json:"source"`
		AppliedAt time.Time `json:"applied_at"`
	} `json:"application,omitempty"`
	Company *struct {
		Name     string `json:"name"`
		Website  string `json:"website"`
		Location string `json:"location"`
	} `json:"company,omitempty"`
	Submitter *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Title     string `json:"title"`
	} `json:"submitter,omitempty"`
	Custom map[string]string `json:"custom,omitempty"`
}

func (r *sendRequest) toOptions() email.SendOptions {
	return email.SendOptions{
		To:            r.To,
		CC:            r.CC,
		BCC:           r.BCC,
		Subject:       r.Subject,
		HTMLContent:   r.HTMLContent,
		TextContent:   r.TextContent,
		TemplateID:    r.TemplateID,
		MergeData:     r.MergeData.toData(),
		Priority:      email.Priority(r.Priority),
		ScheduledFor:  r.ScheduledAt,
		CandidateID:   r.Candidate,
		ApplicationID: r.Application,
		SubmittedBy:   r.SubmittedBy,
		Metadata:      r.Metadata,
	}
}

func (m *mergeData) toData() *mergefield.Data {
	if m == nil {
		return nil
	}

	data := &mergefield.Data{Custom: m.Custom}
	if c := m.Candidate; c != nil {
		data.Candidate = &mergefield.Candidate{
			FirstName:      c.FirstName,
			LastName:       c.LastName,
			Email:          c.Email,
			Phone:          c.Phone,
			CurrentTitle:   c.CurrentTitle,
			CurrentCompany: c.CurrentCompany,
			LinkedinURL:    c.LinkedinURL,
		}
	}
	if a := m.Application; a != nil {
		data.Application = &mergefield.Application{
			JobTitle:  a.JobTitle,
			Status:    a.Status,
			Source:    a.Source,
			AppliedAt: a.AppliedAt,
		}
	}
	if c := m.Company; c != nil {
		data.Company = &mergefield.Company{
			Name:     c.Name,
			Website:  c.Website,
			Location: c.Location,
		}
	}
	if s := m.Submitter; s != nil {
		data.Submitter = &mergefield.Submitter{
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Email:     s.Email,
			Title:     s.Title,
		}
	}
	return data
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.SendEmail(r.Context(), req.toOptions())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

type bulkSendRequest struct {
	Emails              []sendRequest `json:"emails"`
	BatchSize           int           `json:"batch_size,omitempty"`
	DelayBetweenBatches string        `json:"delay_between_batches,omitempty"`
}

func (h *Handler) handleSendBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Emails) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "emails must not be empty")
		return
	}

	var delay time.Duration
	if req.DelayBetweenBatches != "" {
		var err error
		if delay, err = time.ParseDuration(req.DelayBetweenBatches); err != nil || delay < 0 {
			respondError(w, http.StatusUnprocessableEntity, "invalid delay_between_batches")
			return
		}
	}

	opts := email.BulkSendOptions{
		BatchSize:           req.BatchSize,
		DelayBetweenBatches: delay,
		Emails:              make([]email.SendOptions, 0, len(req.Emails)),
	}
	for i := range req.Emails {
		opts.Emails = append(opts.Emails, req.Emails[i].toOptions())
	}

	ids, err := h.service.SendBulkEmails(r.Context(), opts)
	if err != nil {
		// Partial submissions are reported alongside the failure so callers
		// do not resubmit what was already accepted.
		h.log.ErrorContext(r.Context(), "bulk submission failed partway",
			slog.Int("accepted", len(ids)),
			slog.Any("error", err),
		)
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"ids":   ids,
			"error": "bulk submission failed partway",
		})
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{"ids": ids})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tracker.GetDeliveryStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, email.ErrLogNotFound) {
			respondError(w, http.StatusNotFound, "email log not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":        snap.Status,
		"error_message": snap.ErrorMessage,
		"sent_at":       snap.SentAt,
		"delivered_at":  snap.DeliveredAt,
		"opened_at":     snap.OpenedAt,
		"clicked_at":    snap.ClickedAt,
		"bounced_at":    snap.BouncedAt,
	})
}

func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.RetryFailedEmail(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, email.ErrInvalidState) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := email.LogFilter{
		CandidateID:   q.Get("candidate_id"),
		ApplicationID: q.Get("application_id"),
		Status:        email.Status(q.Get("status")),
		Limit:         queryInt(q.Get("limit"), 50),
		Offset:        queryInt(q.Get("offset"), 0),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondError(w, http.StatusUnprocessableEntity, "unknown status filter")
		return
	}

	logs, total, err := h.logs.List(r.Context(), filter)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(logs))
	for _, log := range logs {
		items = append(items, map[string]any{
			"id":             log.ID,
			"to":             log.To,
			"subject":        log.Subject,
			"status":         log.Status,
			"template_id":    log.TemplateID,
			"candidate_id":   log.CandidateID,
			"application_id": log.ApplicationID,
			"error_message":  log.ErrorMessage,
			"scheduled_for":  log.ScheduledFor,
			"created_at":     log.CreatedAt,
			"sent_at":        log.SentAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	templates, err := h.templates.List(r.Context(), email.TemplateFilter{
		Type:      q.Get("type"),
		CompanyID: q.Get("company_id"),
		Status:    q.Get("status"),
	})
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": templates})
}

func (h *Handler) handleMergeFields(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"fields": mergefield.AvailableFields()})
}

// handleValidateMergeFields checks authored content against the merge field
// catalogue, for template editors to surface typos before saving.
func (h *Handler) handleValidateMergeFields(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := mergefield.Validate(req.Content)
	respondJSON(w, http.StatusOK, map[string]any{
		"valid":          result.Valid,
		"invalid_fields": result.InvalidFields,
	})
}

// respondServiceError maps submission errors onto HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, email.ErrTemplateNotFound):
		respondError(w, http.StatusNotFound, "template not found")
	case errors.Is(err, email.ErrRecipientRequired), errors.Is(err, email.ErrNoContent):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.respondInternal(w, r, err)
	}
}

func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	respondError(w, http.StatusInternalServerError, "internal error")
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
