package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocked_words:\n  - Spam\n  - \"  \"\n  - buy now\n"), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	ctx := context.Background()
	ok, err := m.IsAllowed(ctx, "Nice walk at the park")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.IsAllowed(ctx, "SPAM everywhere")
	assert.False(t, ok)

	ok, _ = m.IsAllowed(ctx, "please BUY NOW")
	assert.False(t, ok)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocked_words: [unclosed"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
