package mockstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/appinfo"
	"github.com/abdul-hamid-achik/urlmock/packages/settings"
	"go.uber.org/zap"
)

const (
	// CatalogKey is the settings key holding the catalog blob
	CatalogKey = "Mocks"
	// DirName is the fixture directory under the base directory
	DirName = "Mocks"
	// FileExt is the fixture file extension
	FileExt = ".json"

	dateLayout = "2006-01-02"
)

// Store manages fixture files and their catalog.
//
// Catalog updates made through one Store are serialized; separate processes
// sharing a directory and settings store are last-writer-wins.
type Store struct {
	dir      string
	settings settings.Store
	app      appinfo.Provider
	logger   *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

// Option is a functional option for Store
type Option func(*Store)

// WithAppInfo sets the provider whose version is stamped on captured entries
func WithAppInfo(p appinfo.Provider) Option {
	return func(s *Store) {
		s.app = p
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the capture date source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store keeping fixtures under baseDir/Mocks and the catalog in
// kv. The directory is created on first capture.
func New(baseDir string, kv settings.Store, opts ...Option) *Store {
	s := &Store{
		dir:      filepath.Join(baseDir, DirName),
		settings: kv,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the fixture directory.
func (s *Store) Dir() string {
	return s.dir
}

// FilePath returns where the fixture for endpoint lives.
func (s *Store) FilePath(endpoint string) string {
	return filepath.Join(s.dir, FileName(endpoint)+FileExt)
}

// Lookup returns the fixture bytes for endpoint. A missing or unreadable
// file reports false.
func (s *Store) Lookup(endpoint string) ([]byte, bool) {
	data, err := os.ReadFile(s.FilePath(endpoint))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read fixture", zap.String("endpoint", endpoint), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Capture stores rawJSON as the fixture for endpoint and records it in the
// catalog. The body is re-serialized compactly; any failure is logged and
// dropped.
func (s *Store) Capture(endpoint, rawJSON string, code int) {
	if err := s.capture(endpoint, rawJSON, code); err != nil {
		s.logger.Warn("fixture capture failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
}

func (s *Store) capture(endpoint, rawJSON string, code int) error {
	data, err := canonicalize(rawJSON)
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}

	fileName := FileName(endpoint)
	path := s.FilePath(endpoint)

	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write fixture: %w", err)
	}

	s.logger.Debug("fixture written", zap.String("endpoint", endpoint), zap.String("path", path))

	return s.recordEntryLocked(fileName, path, endpoint, code)
}

// RecordEntry sets the catalog entry for fileName, stamping today's date and
// the application version.
func (s *Store) RecordEntry(fileName, path, endpoint string, code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordEntryLocked(fileName, path, endpoint, code)
}

func (s *Store) recordEntryLocked(fileName, path, endpoint string, code int) error {
	c := s.loadCatalog()
	c[fileName] = FixtureRecord{
		Date:         s.now().Format(dateLayout),
		Path:         path,
		FileName:     fileName,
		Endpoint:     endpoint,
		ResponseCode: code,
		AppVersion:   appinfo.VersionString(s.app),
	}
	return s.saveCatalog(c)
}

// ListAll returns every catalog entry sorted by file name. Entries whose file
// still exists carry its content; the others are returned with empty content.
func (s *Store) ListAll() []FixtureRecord {
	c := s.loadCatalog()

	records := make([]FixtureRecord, 0, len(c))
	for _, record := range c {
		records = append(records, s.hydrate(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].FileName < records[j].FileName
	})
	return records
}

// Get returns the hydrated catalog entry for endpoint.
func (s *Store) Get(endpoint string) (FixtureRecord, bool) {
	record, ok := s.loadCatalog()[FileName(endpoint)]
	if !ok {
		return FixtureRecord{}, false
	}
	return s.hydrate(record), true
}

func (s *Store) hydrate(record FixtureRecord) FixtureRecord {
	if data, ok := s.Lookup(record.Endpoint); ok {
		record.Content = string(data)
	}
	return record
}

// Remove deletes the fixture file and catalog entry for endpoint. Removing
// an unknown endpoint is not an error.
func (s *Store) Remove(endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.FilePath(endpoint)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove fixture: %w", err)
	}

	c := s.loadCatalog()
	key := FileName(endpoint)
	if _, ok := c[key]; !ok {
		return nil
	}
	delete(c, key)
	return s.saveCatalog(c)
}

// Prune drops catalog entries whose fixture file no longer exists and
// returns how many were dropped.
func (s *Store) Prune() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.loadCatalog()
	pruned := 0
	for key, record := range c {
		if _, err := os.Stat(s.FilePath(record.Endpoint)); errors.Is(err, os.ErrNotExist) {
			delete(c, key)
			pruned++
		}
	}
	if pruned == 0 {
		return 0, nil
	}
	return pruned, s.saveCatalog(c)
}

// loadCatalog reads the catalog, treating a missing or corrupt blob as empty.
func (s *Store) loadCatalog() catalog {
	data, err := s.settings.Get(CatalogKey)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			s.logger.Warn("failed to load catalog", zap.Error(err))
		}
		return make(catalog)
	}

	c, err := decodeCatalog(data)
	if err != nil {
		s.logger.Warn("catalog is corrupt, starting empty", zap.Error(err))
	}
	return c
}

func (s *Store) saveCatalog(c catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := s.settings.Set(CatalogKey, data); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func (s *Store) ensureDir() error {
	if info, err := os.Stat(s.dir); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Error("failed to create fixture directory", zap.String("dir", s.dir), zap.Error(err))
		return fmt.Errorf("failed to create fixture directory: %w", err)
	}
	return nil
}

// canonicalize parses raw as JSON (top-level scalars included) and
// re-encodes it compactly with sorted object keys. Numbers keep their
// original text.
func canonicalize(raw string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeFile replaces path with data through a temporary file in the same
// directory, so readers see either the old or the new fixture.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
