package attach

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// allowed attachment extensions, matched case-insensitively
var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// File is one uploaded attachment candidate: the claimed filename and content.
type File struct {
	Name string
	Data io.Reader
}

// Manager persists order attachments under a per-order namespace below Root.
// Candidates with a disallowed extension are dropped silently; file content
// is never checked against the claimed extension.
type Manager struct {
	root string
}

// NewManager creates new Manager instance
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Allowed reports whether the filename carries an accepted image extension.
func Allowed(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}

// SecureFilename strips path components and unsafe characters from a claimed
// filename so it can be used as a storage key. Returns "" if nothing safe
// remains.
func SecureFilename(name string) string {
	// drop any directory part, whatever the client's separator was
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	s := strings.Trim(b.String(), "._-")
	if s == "" || s == "." || s == ".." {
		return ""
	}
	return s
}

// Namespace returns the per-order directory name for the given identifier
// and order type. The admin client resolves attachment URLs through the same
// convention, so it must not change independently.
func Namespace(orderID, orderType string) string {
	return fmt.Sprintf("order_%s_%s", orderID, SecureFilename(orderType))
}

// Dir returns the absolute namespace directory for an order.
func (m *Manager) Dir(orderID, orderType string) string {
	return filepath.Join(m.root, Namespace(orderID, orderType))
}

// Store writes the accepted candidates into the order's namespace and returns
// the filenames actually persisted, in input order. A write error stops
// processing and returns the names persisted so far along with the error.
func (m *Manager) Store(orderID, orderType string, files []File) ([]string, error) {
	dir := m.Dir(orderID, orderType)

	saved := []string{}
	for _, f := range files {
		if !Allowed(f.Name) {
			continue
		}
		name := SecureFilename(f.Name)
		if name == "" {
			continue
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return saved, fmt.Errorf("create namespace %s: %w", dir, err)
		}

		if err := writeFile(filepath.Join(dir, name), f.Data); err != nil {
			return saved, fmt.Errorf("store %s: %w", name, err)
		}
		saved = append(saved, name)
	}

	return saved, nil
}

func writeFile(path string, data io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, data)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return err
}
