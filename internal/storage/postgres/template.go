package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/mailroom/internal/email"
)

const templateColumns = `id, name, type, company_id, subject, html_content,
	text_content, format, status, merge_fields, created_at`

// TemplateStore is the PostgreSQL implementation of email.TemplateStore.
type TemplateStore struct {
	pool *pgxpool.Pool
}

// NewTemplateStore creates a template store backed by the given pool.
func NewTemplateStore(pool *pgxpool.Pool) *TemplateStore {
	return &TemplateStore{pool: pool}
}

var _ email.TemplateStore = (*TemplateStore)(nil)

func (s *TemplateStore) Get(ctx context.Context, id string) (*email.Template, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, email.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("postgres: get template %s: %w", id, err)
	}
	return tpl, nil
}

func (s *TemplateStore) List(ctx context.Context, filter email.TemplateFilter) ([]*email.Template, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.CompanyID != "" {
		add("company_id = $%d", filter.CompanyID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	query := `SELECT ` + templateColumns + ` FROM email_templates`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list templates: %w", err)
	}
	defer rows.Close()

	var templates []*email.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list templates: %w", err)
	}
	return templates, nil
}

// Create inserts a template, overwriting an existing one with the same id.
// Used by the seeder, which is idempotent across restarts.
func (s *TemplateStore) Create(ctx context.Context, tpl *email.Template) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO email_templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			company_id = EXCLUDED.company_id,
			subject = EXCLUDED.subject,
			html_content = EXCLUDED.html_content,
			text_content = EXCLUDED.text_content,
			format = EXCLUDED.format,
			status = EXCLUDED.status,
			merge_fields = EXCLUDED.merge_fields`,
		tpl.ID, tpl.Name, tpl.Type, nullable(tpl.CompanyID), tpl.Subject,
		tpl.HTMLContent, tpl.TextContent, string(tpl.Format), tpl.Status,
		tpl.MergeFields, tpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create template %s: %w", tpl.ID, err)
	}
	return nil
}

func scanTemplate(row pgx.Row) (*email.Template, error) {
	var tpl email.Template
	var format string
	var companyID *string

	err := row.Scan(
		&tpl.ID, &tpl.Name, &tpl.Type, &companyID, &tpl.Subject,
		&tpl.HTMLContent, &tpl.TextContent, &format, &tpl.Status,
		&tpl.MergeFields, &tpl.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.Format = email.TemplateFormat(format)
	tpl.CompanyID = deref(companyID)
	return &tpl, nil
}
