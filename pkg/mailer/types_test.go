package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hirelane/mailroom/pkg/mailer"
)

func TestRecipient(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ann Lee <ann@example.com>", mailer.Recipient("Ann Lee", "ann@example.com"))
	assert.Equal(t, "ann@example.com", mailer.Recipient("", "ann@example.com"))
}
