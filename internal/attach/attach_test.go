package attach

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"logo.png", true},
		{"logo.jpg", true},
		{"logo.jpeg", true},
		{"logo.gif", true},
		{"LOGO.PNG", true},
		{"logo.Gif", true},
		{"logo.exe", false},
		{"logo.txt", false},
		{"logo", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Allowed(tt.name), tt.name)
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"logo.png", "logo.png"},
		{"my logo.png", "my_logo.png"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"/tmp/abs.png", "abs.png"},
		{"..", ""},
		{"...", ""},
		{"###", ""},
		{"über.png", "ber.png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SecureFilename(tt.name), tt.name)
	}
}

func TestManager_Store(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	files := []File{
		{Name: "a.jpg", Data: bytes.NewReader([]byte("jpg"))},
		{Name: "b.exe", Data: bytes.NewReader([]byte("exe"))},
		{Name: "C.PNG", Data: bytes.NewReader([]byte("png"))},
		{Name: "d.txt", Data: bytes.NewReader([]byte("txt"))},
	}

	saved, err := m.Store("1", "logo", files)
	require.NoError(t, err)

	// disallowed extensions dropped silently, input order preserved
	assert.Equal(t, []string{"a.jpg", "C.PNG"}, saved)

	dir := filepath.Join(root, "order_1_logo")
	for _, name := range saved {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}

	// dropped candidates never hit the disk
	_, err = os.Stat(filepath.Join(dir, "b.exe"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "d.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestManager_StoreNoAttachments(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	saved, err := m.Store("2", "logo", nil)
	require.NoError(t, err)
	assert.Empty(t, saved)

	// the namespace is only created when a file is actually written
	_, err = os.Stat(filepath.Join(root, "order_2_logo"))
	assert.True(t, os.IsNotExist(err))
}

func TestManager_StoreSanitizesTraversal(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	saved, err := m.Store("3", "logo", []File{
		{Name: "../../escape.png", Data: bytes.NewReader([]byte("x"))},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"escape.png"}, saved)

	_, err = os.Stat(filepath.Join(root, "order_3_logo", "escape.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "order_7_logo", Namespace("7", "logo"))
	assert.Equal(t, "order_7_flyer_design", Namespace("7", "flyer design"))
}
