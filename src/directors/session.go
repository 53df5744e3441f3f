package directors

import (
	"errors"

	"docldb/src/engine"
	"docldb/src/helpers"
	"docldb/src/models"

	"go.uber.org/zap"
)

// Session is the state of one shell: the open database plus the preparer and
// executor that act on it. Calls into a session must be serialized.
type Session struct {
	ID              string
	DatabaseService *DatabaseService
	preparer        *engine.Preparer
	executor        *engine.Executor
	logger          *zap.SugaredLogger
}

// NewSession wires a preparer and an executor around dbService. A nil parser
// uses engine.ParseDocument.
func NewSession(dbService *DatabaseService, parser engine.DocumentParser, logger *zap.SugaredLogger) *Session {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	id := helpers.GenerateUUID()
	logger = logger.With("session", id)

	session := &Session{
		ID:              id,
		DatabaseService: dbService,
		preparer:        engine.NewPreparer(parser, logger),
		executor:        engine.NewExecutor(dbService, logger),
		logger:          logger,
	}

	logger.Infow("Session started", "filename", dbService.Database().Filename())
	return session
}

func (s *Session) Database() *models.Database {
	return s.DatabaseService.Database()
}

// Commit saves the database outside of a commit statement, e.g. on exit.
func (s *Session) Commit() error {
	if err := s.DatabaseService.Commit(); err != nil {
		s.logger.Errorw("Commit failed", "error", err)
		return err
	}
	return nil
}

// CommitOnExit saves the database when the shell exits. See
// DatabaseService.CommitOnExit for when the save is skipped.
func (s *Session) CommitOnExit() error {
	err := s.DatabaseService.CommitOnExit()
	if err != nil && !errors.Is(err, ErrExitCommitSkipped) {
		s.logger.Errorw("Commit on exit failed", "error", err)
	}
	return err
}
