package engine

import "docldb/src/models"

type StatementType int

const (
	StatementUninitialized StatementType = iota
	StatementInsert
	StatementFind
	StatementCreate
	StatementPeek
	StatementCommit
	StatementDelete
)

func (t StatementType) String() string {
	switch t {
	case StatementInsert:
		return "insert"
	case StatementFind:
		return "find"
	case StatementCreate:
		return "create"
	case StatementPeek:
		return "peek"
	case StatementCommit:
		return "commit"
	case StatementDelete:
		return "delete"
	default:
		return "uninitialized"
	}
}

// Statement is one prepared command, ready for the executor.
type Statement struct {
	Type StatementType

	// Collection is the target of insert, find and delete. Prepare only sets
	// it once the collection is known to exist.
	Collection string

	// Document is the insert payload or the find/delete query. Nil for a
	// find without a query.
	Document *models.Document

	// NewCollectionName is only used by create.
	NewCollectionName string
}

// Query returns the statement's document, or an empty document when there is none.
func (s *Statement) Query() models.Document {
	if s.Document == nil {
		return models.Document{}
	}
	return *s.Document
}
