package engine

import (
	"errors"
	"fmt"

	"docldb/src/models"

	"go.uber.org/zap"
)

// MaxDocumentsPerCollection bounds the size of a single collection.
const MaxDocumentsPerCollection = 10000

// CommandResponse is what executing a statement produced. Reads return their
// output here instead of printing it.
type CommandResponse struct {
	Statement StatementType
	Result    ExecuteResult

	// ResultCount is the number of documents found, inserted or deleted.
	ResultCount int

	// Documents holds the documents found by a find, in insertion order.
	Documents []models.Document

	// Collections holds the collection names listed by a peek.
	Collections []string

	// Err explains a non-success result when there is an underlying error.
	Err error
}

// Executor runs prepared statements against a database.
type Executor struct {
	store        DatabaseStore
	maxDocuments int
	logger       *zap.SugaredLogger
}

func NewExecutor(store DatabaseStore, logger *zap.SugaredLogger) *Executor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Executor{
		store:        store,
		maxDocuments: MaxDocumentsPerCollection,
		logger:       logger,
	}
}

// Execute runs statement against database. It never returns nil.
func (e *Executor) Execute(statement *Statement, database *models.Database) *CommandResponse {
	if statement == nil {
		return &CommandResponse{Result: ExecuteFailed, Err: fmt.Errorf("no statement ready for execution")}
	}

	switch statement.Type {
	case StatementCreate:
		return e.executeCreate(statement, database)
	case StatementInsert:
		return e.executeInsert(statement, database)
	case StatementFind:
		return e.executeFind(statement, database)
	case StatementDelete:
		return e.executeDelete(statement, database)
	case StatementPeek:
		return e.executePeek(database)
	case StatementCommit:
		return e.executeCommit(database)
	default:
		e.logger.Errorw("Statement was not prepared", "type", statement.Type)
		return &CommandResponse{
			Statement: statement.Type,
			Result:    ExecuteFailed,
			Err:       fmt.Errorf("no statement ready for execution"),
		}
	}
}

func (e *Executor) executeCreate(statement *Statement, database *models.Database) *CommandResponse {
	response := &CommandResponse{Statement: StatementCreate}

	if _, exists := database.FindCollection(statement.NewCollectionName); exists {
		response.Result = ExecuteCollectionAlreadyExists
		return response
	}

	if err := database.AddCollection(models.NewCollection(statement.NewCollectionName)); err != nil {
		if errors.Is(err, models.ErrCollectionExists) {
			response.Result = ExecuteCollectionAlreadyExists
		} else {
			response.Result = ExecuteFailed
		}
		response.Err = err
		return response
	}

	e.logger.Infow("Collection created", "collection", statement.NewCollectionName)
	response.Result = ExecuteSuccess
	return response
}

func (e *Executor) executeInsert(statement *Statement, database *models.Database) *CommandResponse {
	response := &CommandResponse{Statement: StatementInsert}

	collection, exists := database.FindCollection(statement.Collection)
	if !exists {
		response.Result = ExecuteTableUndefined
		return response
	}

	if collection.Count() >= e.maxDocuments {
		e.logger.Warnw("Collection is full", "collection", collection.Name(), "count", collection.Count())
		response.Result = ExecuteTableFull
		return response
	}

	collection.Append(statement.Query())

	response.Result = ExecuteSuccess
	response.ResultCount = 1
	return response
}

func (e *Executor) executeFind(statement *Statement, database *models.Database) *CommandResponse {
	response := &CommandResponse{Statement: StatementFind}

	collection, exists := database.FindCollection(statement.Collection)
	if !exists {
		response.Result = ExecuteTableUndefined
		return response
	}

	response.Documents = collection.Search(statement.Query())
	response.ResultCount = len(response.Documents)
	response.Result = ExecuteSuccess
	return response
}

func (e *Executor) executeDelete(statement *Statement, database *models.Database) *CommandResponse {
	response := &CommandResponse{Statement: StatementDelete}

	collection, exists := database.FindCollection(statement.Collection)
	if !exists {
		response.Result = ExecuteTableUndefined
		return response
	}

	response.ResultCount = collection.DeleteMatching(statement.Query())
	e.logger.Debugw("Documents deleted", "collection", collection.Name(), "count", response.ResultCount)

	response.Result = ExecuteSuccess
	return response
}

func (e *Executor) executePeek(database *models.Database) *CommandResponse {
	names := database.CollectionNames()
	return &CommandResponse{
		Statement:   StatementPeek,
		Result:      ExecuteSuccess,
		ResultCount: len(names),
		Collections: names,
	}
}

func (e *Executor) executeCommit(database *models.Database) *CommandResponse {
	response := &CommandResponse{Statement: StatementCommit}

	if e.store == nil {
		response.Result = ExecuteCantSaveDatabase
		response.Err = fmt.Errorf("no storage engine configured")
		return response
	}

	if err := e.store.SaveDatabase(database); err != nil {
		e.logger.Errorw("Failed to save database", "filename", database.Filename(), "error", err)
		response.Result = ExecuteCantSaveDatabase
		response.Err = err
		return response
	}

	response.Result = ExecuteSuccess
	return response
}
