package templates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/mailroom/internal/email"
	"github.com/hirelane/mailroom/pkg/logger"
	"github.com/hirelane/mailroom/pkg/mergefield"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	templates, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	byID := make(map[string]*email.Template, len(templates))
	for _, tpl := range templates {
		byID[tpl.ID] = tpl
	}

	for _, id := range []string{"interview-invite", "offer", "rejection"} {
		tpl, ok := byID[id]
		require.True(t, ok, "missing stock template %s", id)
		assert.NotEmpty(t, tpl.Subject)
		assert.NotEmpty(t, tpl.HTMLContent)
		assert.Equal(t, email.FormatMarkdown, tpl.Format)
		assert.Equal(t, email.TemplateActive, tpl.Status)
		assert.NotEmpty(t, tpl.MergeFields)
	}
}

func TestLoad_MergeFieldsResolve(t *testing.T) {
	t.Parallel()

	templates, err := Load()
	require.NoError(t, err)

	// Every placeholder in a stock template must be a registered merge
	// field; a typo here would render as an empty string in real emails.
	for _, tpl := range templates {
		result := mergefield.Validate(tpl.Subject + "\n" + tpl.HTMLContent)
		assert.True(t, result.Valid, "template %s has unknown fields %v", tpl.ID, result.InvalidFields)
	}
}

type seedRecorder struct {
	created []*email.Template
	err     error
}

func (s *seedRecorder) Get(context.Context, string) (*email.Template, error) {
	return nil, email.ErrTemplateNotFound
}

func (s *seedRecorder) List(context.Context, email.TemplateFilter) ([]*email.Template, error) {
	return nil, nil
}

func (s *seedRecorder) Create(_ context.Context, tpl *email.Template) error {
	s.created = append(s.created, tpl)
	return s.err
}

func TestSeed(t *testing.T) {
	t.Parallel()

	store := &seedRecorder{}
	require.NoError(t, Seed(context.Background(), store, logger.NewNope()))
	assert.Len(t, store.created, 3)
}

func TestSeed_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("insert failed")
	store := &seedRecorder{err: boom}
	assert.ErrorIs(t, Seed(context.Background(), store, logger.NewNope()), boom)
}
