package registry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FileStore keeps one registered id per line in a plain text file.
// The file is only ever appended to.
type FileStore struct {
	path string
	mu   sync.RWMutex
	ids  map[int64]struct{}
}

// OpenFile loads the ids already present in path. A missing file is an
// empty registry; it is created on the first registration.
func OpenFile(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("registry path is required")
	}
	s := &FileStore{path: path, ids: make(map[int64]struct{})}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open registry file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			// Not an id we wrote, keep going
			continue
		}
		s.ids[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return s, nil
}

func (s *FileStore) HasRegistered(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *FileStore) Register(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false, nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("open registry file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", id); err != nil {
		f.Close()
		return false, fmt.Errorf("append registry file: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close registry file: %w", err)
	}

	s.ids[id] = struct{}{}
	return true, nil
}

func (s *FileStore) Close() error { return nil }
