package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuard(t *testing.T) {
	dir := t.TempDir()

	g, err := NewGuard(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, g.Root())
}

func TestNewGuard_Errors(t *testing.T) {
	_, err := NewGuard("")
	assert.Error(t, err)

	_, err = NewGuard(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestValidatePage(t *testing.T) {
	g, err := NewGuard(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name    string
		page    string
		wantErr bool
	}{
		{"simple page", "index.html", false},
		{"nested page", "suites/unit/index.html", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../outside.html", true},
		{"hidden traversal", "suites/../../outside.html", true},
		{"root itself", ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidatePage(tt.page)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
