package credstore

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File persists the token slot as a single file with atomic replace, the
// durable backend for desktop and terminal hosts. A missing or unreadable
// file reads as absent; write failures are best-effort and logged, matching
// the infallible Store surface.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at path. The parent directory must
// exist; the file itself is created on first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Save(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credstore-*")
	if err != nil {
		log.Print("herdgate: credential file write failed")
		return
	}

	_, werr := tmp.WriteString(token)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		log.Print("herdgate: credential file write failed")
		return
	}

	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		log.Print("herdgate: credential file write failed")
		return
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		log.Print("herdgate: credential file write failed")
	}
}

func (f *File) Read() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}

	token := strings.TrimRight(string(data), "\n")
	if token == "" {
		return "", false
	}
	return token, true
}

func (f *File) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		log.Print("herdgate: credential file clear failed")
	}
}
