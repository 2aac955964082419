// Package postgres implements the email pipeline stores on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/mailroom/internal/email"
	"github.com/hirelane/mailroom/pkg/db"
)

const logColumns = `id, to_addr, cc, bcc, subject, html_content, text_content,
	status, template_id, candidate_id, application_id, submitted_by, metadata,
	error_message, external_id, scheduled_for, created_at, sent_at,
	delivered_at, opened_at, clicked_at, bounced_at`

const insertLogSQL = `
	INSERT INTO email_logs (` + logColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

// LogStore is the PostgreSQL implementation of email.LogStore.
type LogStore struct {
	pool *pgxpool.Pool
}

// NewLogStore creates a log store backed by the given pool.
func NewLogStore(pool *pgxpool.Pool) *LogStore {
	return &LogStore{pool: pool}
}

var _ email.LogStore = (*LogStore)(nil)

func (s *LogStore) Create(ctx context.Context, log *email.EmailLog) error {
	if _, err := s.pool.Exec(ctx, insertLogSQL, logInsertArgs(log)...); err != nil {
		return fmt.Errorf("postgres: create email log %s: %w", log.ID, err)
	}
	return nil
}

// CreateBatch inserts a chunk of logs atomically: either the whole chunk is
// persisted or none of it, so bulk submission ids never dangle.
func (s *LogStore) CreateBatch(ctx context.Context, logs []*email.EmailLog) error {
	if len(logs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, log := range logs {
		batch.Queue(insertLogSQL, logInsertArgs(log)...)
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for _, log := range logs {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("postgres: create email log %s in batch: %w", log.ID, err)
			}
		}
		return results.Close()
	})
}

func (s *LogStore) Get(ctx context.Context, id string) (*email.EmailLog, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM email_logs WHERE id = $1`, id)
	log, err := scanLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, email.ErrLogNotFound
		}
		return nil, fmt.Errorf("postgres: get email log %s: %w", id, err)
	}
	return log, nil
}

func (s *LogStore) Update(ctx context.Context, log *email.EmailLog) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE email_logs SET
			status = $2,
			error_message = $3,
			external_id = $4,
			sent_at = $5,
			delivered_at = $6,
			opened_at = $7,
			clicked_at = $8,
			bounced_at = $9
		WHERE id = $1`,
		log.ID, string(log.Status), log.ErrorMessage, log.ExternalID,
		log.SentAt, log.DeliveredAt, log.OpenedAt, log.ClickedAt, log.BouncedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update email log %s: %w", log.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return email.ErrLogNotFound
	}
	return nil
}

func (s *LogStore) List(ctx context.Context, filter email.LogFilter) ([]*email.EmailLog, int, error) {
	where, args := buildLogFilter(filter)

	var total int
	countSQL := `SELECT count(*) FROM email_logs` + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres: count email logs: %w", err)
	}

	listSQL := `SELECT ` + logColumns + ` FROM email_logs` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		listSQL += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		listSQL += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: list email logs: %w", err)
	}
	defer rows.Close()

	var logs []*email.EmailLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: scan email log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: list email logs: %w", err)
	}
	return logs, total, nil
}

// ListStuckPending finds logs still PENDING past the creation cutoff whose
// scheduled time, if set, has already passed. Future-scheduled logs are not
// stuck; their job is simply not due yet.
func (s *LogStore) ListStuckPending(ctx context.Context, createdBefore time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM email_logs
		WHERE status = $1
		  AND created_at < $2
		  AND (scheduled_for IS NULL OR scheduled_for < now())
		ORDER BY created_at`,
		string(email.StatusPending), createdBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list stuck pending logs: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: list stuck pending logs: %w", err)
	}
	return ids, nil
}

func buildLogFilter(filter email.LogFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.CandidateID != "" {
		add("candidate_id = $%d", filter.CandidateID)
	}
	if filter.ApplicationID != "" {
		add("application_id = $%d", filter.ApplicationID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func logInsertArgs(log *email.EmailLog) []any {
	return []any{
		log.ID, log.To, log.CC, log.BCC, log.Subject,
		log.HTMLContent, log.TextContent, string(log.Status),
		nullable(log.TemplateID), nullable(log.CandidateID),
		nullable(log.ApplicationID), nullable(log.SubmittedBy),
		log.Metadata, log.ErrorMessage, log.ExternalID,
		log.ScheduledFor, log.CreatedAt,
		log.SentAt, log.DeliveredAt, log.OpenedAt, log.ClickedAt, log.BouncedAt,
	}
}

func scanLog(row pgx.Row) (*email.EmailLog, error) {
	var log email.EmailLog
	var status string
	var templateID, candidateID, applicationID, submittedBy *string

	err := row.Scan(
		&log.ID, &log.To, &log.CC, &log.BCC, &log.Subject,
		&log.HTMLContent, &log.TextContent, &status,
		&templateID, &candidateID, &applicationID, &submittedBy,
		&log.Metadata, &log.ErrorMessage, &log.ExternalID,
		&log.ScheduledFor, &log.CreatedAt,
		&log.SentAt, &log.DeliveredAt, &log.OpenedAt, &log.ClickedAt, &log.BouncedAt,
	)
	if err != nil {
		return nil, err
	}

	log.Status = email.Status(status)
	log.TemplateID = deref(templateID)
	log.CandidateID = deref(candidateID)
	log.ApplicationID = deref(applicationID)
	log.SubmittedBy = deref(submittedBy)
	return &log, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
