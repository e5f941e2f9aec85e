package ifrs17

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/logging"
)

// Source provides the raw bytes of the source document.
type Source interface {
	// Location names the document in error messages, typically a file path.
	Location() string
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	Path string
}

// Location returns the file path.
func (s FileSource) Location() string {
	return s.Path
}

// Read reads the whole file.
func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

// Store loads the snapshot on first access and caches it until Clear.
// Concurrent first callers share a single load.
type Store struct {
	source Source
	logger *logging.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// NewStore creates a store over source. A nil logger uses the global logger.
func NewStore(source Source, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Store{
		source: source,
		logger: logger.WithField("component", "snapshot_store"),
	}
}

// NewFileStore creates a store reading the document at path.
func NewFileStore(path string, logger *logging.Logger) *Store {
	return NewStore(FileSource{Path: path}, logger)
}

// Load returns the cached snapshot, reading and decoding the source if the
// cache is empty. A missing or undecodable source yields a DATA_UNAVAILABLE
// error and leaves the cache empty so a later call can try again.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	if snap := s.snapshot.Load(); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have finished loading while we waited.
	if snap := s.snapshot.Load(); snap != nil {
		return snap, nil
	}

	start := time.Now()
	location := s.source.Location()

	data, err := s.source.Read(ctx)
	if err != nil {
		s.logger.WithField("path", location).WithError(err).Warn("IFRS 17 data file unavailable")
		return nil, apperrors.NewDataUnavailableError(location, err)
	}

	snap, err := ParseSnapshot(data)
	if err != nil {
		s.logger.WithField("path", location).WithError(err).Warn("IFRS 17 data file could not be decoded")
		return nil, apperrors.NewDataUnavailableError(location, err)
	}

	s.snapshot.Store(snap)

	s.logger.WithFields(map[string]interface{}{
		"path":        location,
		"contracts":   len(snap.Contracts),
		"movements":   len(snap.LiabilityMovements) + len(snap.CSMMovements),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("IFRS 17 snapshot loaded")

	return snap, nil
}

// Clear discards the cached snapshot. The next Load reads the source again.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Swap(nil) != nil {
		s.logger.WithField("path", s.source.Location()).Info("IFRS 17 snapshot cache cleared")
	}
}

// Cached reports whether a snapshot is currently cached.
func (s *Store) Cached() bool {
	return s.snapshot.Load() != nil
}
