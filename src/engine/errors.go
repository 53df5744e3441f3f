package engine

import "errors"

// Errors returned by Prepare. They are wrapped with context, so compare with errors.Is.
var (
	ErrUnrecognizedStatement = errors.New("unrecognized statement")
	ErrSyntax                = errors.New("syntax error")
	ErrMissingCollection     = errors.New("collection name is missing")
	ErrCollectionDoesntExist = errors.New("collection does not exist")
	ErrCantParseJSON         = errors.New("document is not valid JSON")
)

// Errors returned by the storage engine.
var (
	ErrDatabaseFileNotFound = errors.New("database file does not exist")
	ErrCorruptDatabase      = errors.New("database file is corrupt")
)

// ExecuteResult is the outcome of executing a prepared statement.
type ExecuteResult int

const (
	ExecuteSuccess ExecuteResult = iota
	ExecuteTableFull
	ExecuteFailed
	ExecuteTableUndefined
	ExecuteCollectionAlreadyExists
	ExecuteCantSaveDatabase
)

func (r ExecuteResult) String() string {
	switch r {
	case ExecuteSuccess:
		return "success"
	case ExecuteTableFull:
		return "table full"
	case ExecuteFailed:
		return "failed"
	case ExecuteTableUndefined:
		return "table undefined"
	case ExecuteCollectionAlreadyExists:
		return "collection already exists"
	case ExecuteCantSaveDatabase:
		return "cant save database"
	default:
		return "unknown"
	}
}
