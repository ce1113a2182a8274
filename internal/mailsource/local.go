package mailsource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"steam-ledger/internal/logging"
)

// LocalSource reads complete message text files from a directory. It is
// interchangeable with the IMAP source; identifiers are file paths.
type LocalSource struct {
	dir    string
	logger logging.Logger
}

// NewLocal creates a source over the given directory.
func NewLocal(dir string, logger logging.Logger) *LocalSource {
	return &LocalSource{dir: dir, logger: logger}
}

// List returns the directory's file entries in name order. The since bound
// does not apply to local files; the idempotent store makes re-reading old
// messages harmless.
func (s *LocalSource) List(since time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list local folder %s: %w", s.dir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ids = append(ids, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(ids)

	s.logger.Debug("listed local messages",
		logging.Field{Key: logging.FieldFolder, Value: s.dir},
		logging.Field{Key: logging.FieldCount, Value: len(ids)})
	return ids, nil
}

// Fetch reads each identified file.
func (s *LocalSource) Fetch(ids []string) (map[string][]byte, error) {
	messages := make(map[string][]byte, len(ids))
	for _, id := range ids {
		content, err := os.ReadFile(id)
		if err != nil {
			return nil, fmt.Errorf("read local message %s: %w", id, err)
		}
		messages[id] = content
	}
	return messages, nil
}

// Close is a no-op for local directories.
func (s *LocalSource) Close() error {
	return nil
}
