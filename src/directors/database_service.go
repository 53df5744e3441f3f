package directors

import (
	"errors"
	"fmt"

	"docldb/src/engine"
	"docldb/src/models"

	"go.uber.org/zap"
)

// ErrExitCommitSkipped is returned by CommitOnExit while the database file on
// disk could not be loaded and nothing has been committed explicitly since.
var ErrExitCommitSkipped = errors.New("database file could not be loaded, leaving it untouched")

// DatabaseStore is the storage engine as seen by the service: the executor's
// save/load plus the open-with-fallback routine.
type DatabaseStore interface {
	engine.DatabaseStore
	OpenDatabase(filename string) (*models.Database, error)
}

// DatabaseService owns the database of a session and its persistence. It is
// itself the engine.DatabaseStore handed to the executor, so commit
// statements go through it.
type DatabaseService struct {
	store    DatabaseStore
	database *models.Database

	// loadErr is set when an existing file failed to load and is cleared by
	// the first successful save.
	loadErr error
	logger  *zap.SugaredLogger
}

// NewDatabaseService opens filename through store. The service is always
// usable; a non-nil error means the file could not be loaded and the service
// started from an empty database bound to filename.
func NewDatabaseService(store DatabaseStore, filename string, logger *zap.SugaredLogger) (*DatabaseService, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	database, err := store.OpenDatabase(filename)
	service := &DatabaseService{
		store:    store,
		database: database,
		logger:   logger,
	}
	if err != nil {
		if !errors.Is(err, engine.ErrDatabaseFileNotFound) {
			service.loadErr = err
		}
		return service, err
	}

	logger.Infow("Database service loaded database",
		"filename", filename,
		"collections", len(database.Collections()))
	return service, nil
}

func (s *DatabaseService) Database() *models.Database {
	return s.database
}

// LoadError reports why an existing database file could not be loaded, or
// nil when it loaded, did not exist, or has since been overwritten.
func (s *DatabaseService) LoadError() error {
	return s.loadErr
}

// SaveDatabase writes database through the underlying store.
func (s *DatabaseService) SaveDatabase(database *models.Database) error {
	if err := s.store.SaveDatabase(database); err != nil {
		return err
	}
	if s.loadErr != nil {
		s.logger.Warnw("Overwrote database file that failed to load",
			"filename", database.Filename(),
			"loadError", s.loadErr)
		s.loadErr = nil
	}
	return nil
}

func (s *DatabaseService) LoadDatabase(filename string) (*models.Database, error) {
	return s.store.LoadDatabase(filename)
}

// Commit writes the database to its file.
func (s *DatabaseService) Commit() error {
	return s.SaveDatabase(s.database)
}

// CommitOnExit commits unless the file on disk failed to load and was never
// overwritten by an explicit commit.
func (s *DatabaseService) CommitOnExit() error {
	if s.loadErr != nil {
		s.logger.Warnw("Skipping commit on exit", "filename", s.database.Filename(), "loadError", s.loadErr)
		return fmt.Errorf("%w: %w", ErrExitCommitSkipped, s.loadErr)
	}
	return s.Commit()
}
