// Package templates ships the stock email templates bundled with the
// binary and seeds them into the template store on startup.
package templates

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hirelane/mailroom/internal/email"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// seedTemplate is the YAML shape of a bundled template.
type seedTemplate struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Subject     string   `yaml:"subject"`
	Body        string   `yaml:"body"`
	Format      string   `yaml:"format"`
	MergeFields []string `yaml:"merge_fields"`
}

// Load parses the bundled templates.
func Load() ([]*email.Template, error) {
	entries, err := fs.Glob(seedFS, "seed/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("templates: glob seed files: %w", err)
	}

	templates := make([]*email.Template, 0, len(entries))
	for _, path := range entries {
		raw, err := seedFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("templates: read %s: %w", path, err)
		}

		var seed seedTemplate
		if err := yaml.Unmarshal(raw, &seed); err != nil {
			return nil, fmt.Errorf("templates: parse %s: %w", path, err)
		}
		if seed.ID == "" || seed.Subject == "" || seed.Body == "" {
			return nil, fmt.Errorf("templates: %s is missing id, subject, or body", path)
		}

		format := email.TemplateFormat(seed.Format)
		if format == "" {
			format = email.FormatMarkdown
		}

		templates = append(templates, &email.Template{
			ID:          seed.ID,
			Name:        seed.Name,
			Type:        seed.Type,
			Subject:     seed.Subject,
			HTMLContent: seed.Body,
			Format:      format,
			Status:      email.TemplateActive,
			MergeFields: seed.MergeFields,
			CreatedAt:   time.Now(),
		})
	}
	return templates, nil
}

// Seed upserts the bundled templates into the store. Safe to run on every
// startup; the store's Create overwrites by id.
func Seed(ctx context.Context, store email.TemplateStore, log *slog.Logger) error {
	templates, err := Load()
	if err != nil {
		return err
	}

	for _, tpl := range templates {
		if err := store.Create(ctx, tpl); err != nil {
			return fmt.Errorf("templates: seed %s: %w", tpl.ID, err)
		}
	}

	log.InfoContext(ctx, "seeded stock email templates", slog.Int("count", len(templates)))
	return nil
}
