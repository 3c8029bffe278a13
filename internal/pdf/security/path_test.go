package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathGuard(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		wantErr bool
	}{
		{"existing directory", t.TempDir(), false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"missing directory is allowed", "/non/existent/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, err := NewPathGuard(tt.root)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, guard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.root, guard.Root())
		})
	}
}

func TestPathGuard_Resolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "reports"), 0o755))
	guard, err := NewPathGuard(root)
	require.NoError(t, err)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"absolute inside", filepath.Join(root, "a.pdf"), filepath.Join(absRoot, "a.pdf"), false},
		{"relative to root", "reports/q1.pdf", filepath.Join(absRoot, "reports", "q1.pdf"), false},
		{"root itself", root, absRoot, false},
		{"NUL bytes stripped", "a\x00.pdf", filepath.Join(absRoot, "a.pdf"), false},
		{"parent traversal", "../escape.pdf", "", true},
		{"absolute outside", "/etc/passwd", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guard.Resolve(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathGuard_ResolveOutsideIsTyped(t *testing.T) {
	guard, err := NewPathGuard(t.TempDir())
	require.NoError(t, err)

	_, err = guard.Resolve("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestPathGuard_SiblingPrefix(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "docs")
	sibling := filepath.Join(parent, "docs-private")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.Mkdir(sibling, 0o755))

	guard, err := NewPathGuard(root)
	require.NoError(t, err)

	within, err := guard.Contains(filepath.Join(sibling, "secret.pdf"))
	require.NoError(t, err)
	assert.False(t, within, "a shared name prefix is not containment")
}

func TestPathGuard_Symlinks(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	outside := filepath.Join(parent, "outside")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.Mkdir(outside, 0o755))

	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF-1.4"), 0o600))
	link := filepath.Join(root, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	guard, err := NewPathGuard(root)
	require.NoError(t, err)

	within, err := guard.Contains(link)
	require.NoError(t, err)
	assert.False(t, within, "link inside the root pointing outside")

	_, err = guard.Resolve("link.pdf")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestPathGuard_MissingRootIsUnconfined(t *testing.T) {
	guard, err := NewPathGuard(filepath.Join(t.TempDir(), "not-yet"))
	require.NoError(t, err)

	within, err := guard.Contains("/etc/passwd")
	require.NoError(t, err)
	assert.True(t, within)
}
