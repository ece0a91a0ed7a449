package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatterns(t *testing.T) {
	t.Parallel()

	ps := DefaultPatterns()

	assert.NotEmpty(t, ps.Telegram)
	assert.NotEmpty(t, ps.WhatsAppPhones)
	assert.NotEmpty(t, ps.Phones)
	require.NotNil(t, ps.Email)
	assert.Equal(t, 5, ps.MaxTelegram)
	assert.Equal(t, 3, ps.MaxWhatsApp)

	_, stop := ps.TelegramStopWords["example"]
	assert.True(t, stop)
	_, stop = ps.EmailStopDomains["example.com"]
	assert.True(t, stop)
}

func TestLoadPatterns_OverridesMergeWithDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_phones: 10
telegram_stop_words:
  - spamword
`), 0o644))

	ps, err := LoadPatterns(path)
	require.NoError(t, err)

	assert.Equal(t, 10, ps.MaxPhones)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5, ps.MaxEmails)
	assert.NotEmpty(t, ps.Phones)

	_, stop := ps.TelegramStopWords["spamword"]
	assert.True(t, stop)
	_, stop = ps.TelegramStopWords["example"]
	assert.False(t, stop)
}

func TestLoadPatterns_BadRegexp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
phones:
  - "(["
`), 0o644))

	_, err := LoadPatterns(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile pattern")
}

func TestLoadPatterns_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadPatterns(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
