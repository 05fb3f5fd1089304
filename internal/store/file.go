package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

// FileStore keeps one JSON file per user under a directory. It serves as
// the secondary local cache when the primary store is unreachable and as
// the whole store for users without a durable identity.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a user id to its document file, defusing path traversal in ids.
func (fs *FileStore) path(userID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(userID)
	return filepath.Join(fs.dir, safe+".json")
}

// Load reads the user's document, returning (nil, nil) when none exists.
func (fs *FileStore) Load(_ context.Context, userID string) (*engine.UserPracticeState, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.path(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading practice state file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return unmarshalState(data)
}

// Save writes the document atomically: a temporary file is written first
// and renamed over the target, so a failed write never clobbers the
// previously persisted document.
func (fs *FileStore) Save(_ context.Context, userID string, state *engine.UserPracticeState) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := marshalState(state)
	if err != nil {
		return err
	}

	target := fs.path(userID)
	tempFile := target + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("writing temporary state file: %w", err)
	}
	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("renaming temporary state file: %w", err)
	}
	return nil
}

// Close is a no-op; files are closed per operation.
func (fs *FileStore) Close() error { return nil }
