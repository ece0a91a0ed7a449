package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/model"
)

// FileStore keeps the whole cache in memory and mirrors it to a single
// JSON file on every write. Suited to the CLI's scale of thousands of
// records; switch to the SQLite or Postgres backend beyond that.
//
// The mutex guards in-process access only. Concurrent processes sharing
// one cache file should use a database backend instead.
type FileStore struct {
	mu      sync.Mutex
	path    string
	records map[string]*model.ContactRecord
}

// NewFileStore loads the cache file at path, creating parent directories
// as needed. A missing or unreadable file starts an empty cache; a stale
// cache is worth less than a working run.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "cache: create dir %s", dir)
		}
	}

	s := &FileStore{
		path:    path,
		records: make(map[string]*model.ContactRecord),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("cache: file unreadable, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.records); err != nil {
		zap.L().Warn("cache: file corrupt, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
		s.records = make(map[string]*model.ContactRecord)
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) (*model.ContactRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (s *FileStore) Put(_ context.Context, key string, rec *model.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[key] = &cp
	return s.flush()
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*model.ContactRecord)
	return s.flush()
}

func (s *FileStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *FileStore) Close() error { return nil }

// flush rewrites the cache file. Callers hold s.mu.
func (s *FileStore) flush() error {
	f, err := os.Create(s.path)
	if err != nil {
		return eris.Wrapf(err, "cache: create %s", s.path)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.records); err != nil {
		f.Close()
		return eris.Wrapf(err, "cache: encode %s", s.path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "cache: close %s", s.path)
	}
	return nil
}
