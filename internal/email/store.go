package email

import (
	"context"
	"time"

	"github.com/hirelane/mailroom/pkg/cache"
)

// LogStore persists EmailLog records. Implementations must return
// ErrLogNotFound for unknown ids.
type LogStore interface {
	Create(ctx context.Context, log *EmailLog) error

	// CreateBatch persists a chunk of logs together.
	CreateBatch(ctx context.Context, logs []*EmailLog) error

	Get(ctx context.Context, id string) (*EmailLog, error)

	// Update writes the mutable lifecycle fields (status, timestamps,
	// error message, external id) of an existing log.
	Update(ctx context.Context, log *EmailLog) error

	// List returns matching logs plus the total match count.
	List(ctx context.Context, filter LogFilter) ([]*EmailLog, int, error)

	// ListStuckPending returns ids of logs still PENDING past the given
	// creation cutoff whose scheduled time, if any, has passed. Used by
	// the requeue sweep to recover logs that lost their queue job.
	ListStuckPending(ctx context.Context, createdBefore time.Time) ([]string, error)
}

// LogFilter selects logs for List queries.
type LogFilter struct {
	CandidateID   string
	ApplicationID string
	Status        Status
	Limit         int
	Offset        int
}

// TemplateFormat describes how a template body is authored.
type TemplateFormat string

const (
	FormatHTML     TemplateFormat = "html"
	FormatMarkdown TemplateFormat = "markdown"
)

// Template statuses.
const (
	TemplateActive   = "ACTIVE"
	TemplateArchived = "ARCHIVED"
)

// Template is an authored email template with merge-field placeholders.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"` // e.g. "interview", "offer", "rejection"
	CompanyID   string         `json:"company_id,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"html_content"`
	TextContent string         `json:"text_content,omitempty"`
	Format      TemplateFormat `json:"format"`
	Status      string         `json:"status"`
	MergeFields []string       `json:"merge_fields,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TemplateFilter selects templates for List queries.
type TemplateFilter struct {
	Type      string
	CompanyID string
	Status    string
}

// TemplateStore persists authored templates. Implementations must return
// ErrTemplateNotFound for unknown ids.
type TemplateStore interface {
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, filter TemplateFilter) ([]*Template, error)
	Create(ctx context.Context, tpl *Template) error
}

const templateCacheTTL = 10 * time.Minute

// CachedTemplateStore decorates a TemplateStore with a read-through cache
// on Get. List and Create pass through; Create drops the cached entry for
// its id so readers never see a stale template after an overwrite.
type CachedTemplateStore struct {
	inner TemplateStore
	cache cache.Cache[*Template]
}

// NewCachedTemplateStore wraps store with the given cache.
func NewCachedTemplateStore(store TemplateStore, c cache.Cache[*Template]) *CachedTemplateStore {
	return &CachedTemplateStore{inner: store, cache: c}
}

func (s *CachedTemplateStore) Get(ctx context.Context, id string) (*Template, error) {
	return cache.GetOrSet(ctx, s.cache, id, func(ctx context.Context) (*Template, time.Duration, error) {
		tpl, err := s.inner.Get(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		return tpl, templateCacheTTL, nil
	})
}

func (s *CachedTemplateStore) List(ctx context.Context, filter TemplateFilter) ([]*Template, error) {
	return s.inner.List(ctx, filter)
}

func (s *CachedTemplateStore) Create(ctx context.Context, tpl *Template) error {
	if err := s.inner.Create(ctx, tpl); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, tpl.ID)
	return nil
}

var _ TemplateStore = (*CachedTemplateStore)(nil)
