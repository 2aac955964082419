package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/hirelane/mailroom/pkg/mergefield"
	"github.com/hirelane/mailroom/pkg/sanitizer"
)

// Composer produces ComposedEmail values from templates or raw content,
// resolving merge-field tokens through the merge field engine.
type Composer struct {
	templates TemplateStore
	md        goldmark.Markdown
}

// NewComposer creates a composer reading templates from the given store.
func NewComposer(templates TemplateStore) *Composer {
	return &Composer{
		templates: templates,
		md:        goldmark.New(),
	}
}

// ComposeFromTemplate loads a template, resolves the recipient, and renders
// subject and bodies against the merge data.
//
// Recipient resolution: recipientOverride if provided, else the candidate's
// email from the merge data, else ErrRecipientRequired.
func (c *Composer) ComposeFromTemplate(ctx context.Context, templateID string, data mergefield.Data, recipientOverride string) (*ComposedEmail, error) {
	tpl, err := c.templates.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
		}
		return nil, err
	}

	to := recipientOverride
	if to == "" && data.Candidate != nil {
		to = data.Candidate.Email
	}
	if to == "" {
		return nil, ErrRecipientRequired
	}

	composed := &ComposedEmail{
		To:         to,
		Subject:    mergefield.Render(tpl.Subject, data),
		TemplateID: tpl.ID,
	}

	body := mergefield.Render(tpl.HTMLContent, data)
	if tpl.Format == FormatMarkdown {
		html, err := c.markdownToHTML(body)
		if err != nil {
			return nil, err
		}
		composed.HTMLContent = html
		// Plain-text alternative is the rendered markdown itself.
		composed.TextContent = body
	} else {
		composed.HTMLContent = body
		if tpl.TextContent != "" {
			composed.TextContent = mergefield.Render(tpl.TextContent, data)
		}
	}

	return composed, nil
}

// ComposeCustom builds an email from raw caller content, without a template.
// When data is supplied the subject and bodies are rendered through the
// merge field engine; otherwise they pass through unchanged. The HTML body
// is sanitized either way since it comes from outside the template store.
func (c *Composer) ComposeCustom(to, subject, html, text string, data *mergefield.Data) (*ComposedEmail, error) {
	if to == "" {
		return nil, ErrRecipientRequired
	}
	if subject == "" || html == "" {
		return nil, ErrNoContent
	}

	if data != nil {
		subject = mergefield.Render(subject, *data)
		html = mergefield.Render(html, *data)
		if text != "" {
			text = mergefield.Render(text, *data)
		}
	}

	return &ComposedEmail{
		To:          to,
		Subject:     subject,
		HTMLContent: sanitizer.SanitizeEmailHTML(html),
		TextContent: text,
	}, nil
}

func (c *Composer) markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("email: convert markdown template: %w", err)
	}
	return buf.String(), nil
}
