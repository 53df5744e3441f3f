package engine

import (
	"fmt"
	"strings"

	"docldb/src/models"

	"go.uber.org/zap"
)

// Preparer turns command lines into statements. Collection existence for
// insert, find and delete is checked here, so the executor can rely on it.
type Preparer struct {
	parse  DocumentParser
	logger *zap.SugaredLogger
}

// NewPreparer creates a Preparer. A nil parser falls back to ParseDocument.
func NewPreparer(parser DocumentParser, logger *zap.SugaredLogger) *Preparer {
	if parser == nil {
		parser = ParseDocument
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Preparer{
		parse:  parser,
		logger: logger,
	}
}

// Prepare parses one command line against db.
//
//	create <name>
//	insert <name> <json>
//	find <name> [json]
//	delete <name> <json>
//	peek
//	commit
func (p *Preparer) Prepare(command string, db *models.Database) (*Statement, error) {
	commandParts := strings.Fields(command)
	if len(commandParts) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrUnrecognizedStatement)
	}

	switch commandParts[0] {
	case "create":
		return p.prepareCreate(commandParts)
	case "insert":
		return p.prepareInsert(commandParts, db)
	case "find":
		return p.prepareQuery(StatementFind, commandParts, db, false)
	case "delete":
		return p.prepareQuery(StatementDelete, commandParts, db, true)
	case "peek":
		return &Statement{Type: StatementPeek}, nil
	case "commit":
		return &Statement{Type: StatementCommit}, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnrecognizedStatement, commandParts[0])
	}
}

func (p *Preparer) prepareCreate(commandParts []string) (*Statement, error) {
	if len(commandParts) < 2 {
		return nil, fmt.Errorf("%w: create requires a collection name", ErrMissingCollection)
	}

	return &Statement{
		Type:              StatementCreate,
		NewCollectionName: commandParts[1],
	}, nil
}

func (p *Preparer) prepareInsert(commandParts []string, db *models.Database) (*Statement, error) {
	collectionName, err := p.resolveCollection("insert", commandParts, db)
	if err != nil {
		return nil, err
	}

	if len(commandParts) < 3 {
		return nil, fmt.Errorf("%w: insert requires a document", ErrSyntax)
	}

	doc, err := p.parsePayload(commandParts[2:])
	if err != nil {
		return nil, err
	}

	return &Statement{
		Type:       StatementInsert,
		Collection: collectionName,
		Document:   &doc,
	}, nil
}

// prepareQuery handles find and delete, which only differ in whether the
// query document is mandatory.
func (p *Preparer) prepareQuery(statementType StatementType, commandParts []string, db *models.Database, queryRequired bool) (*Statement, error) {
	collectionName, err := p.resolveCollection(statementType.String(), commandParts, db)
	if err != nil {
		return nil, err
	}

	statement := &Statement{
		Type:       statementType,
		Collection: collectionName,
	}

	if len(commandParts) < 3 {
		if queryRequired {
			return nil, fmt.Errorf("%w: %s requires a query document", ErrSyntax, statementType)
		}
		return statement, nil
	}

	query, err := p.parsePayload(commandParts[2:])
	if err != nil {
		return nil, err
	}
	statement.Document = &query

	return statement, nil
}

func (p *Preparer) resolveCollection(keyword string, commandParts []string, db *models.Database) (string, error) {
	if len(commandParts) < 2 {
		return "", fmt.Errorf("%w: %s requires a collection name", ErrMissingCollection, keyword)
	}

	collectionName := commandParts[1]
	if _, exists := db.FindCollection(collectionName); !exists {
		return "", fmt.Errorf("%w: '%s'", ErrCollectionDoesntExist, collectionName)
	}

	return collectionName, nil
}

// parsePayload joins the payload tokens without whitespace and parses them.
func (p *Preparer) parsePayload(tokens []string) (models.Document, error) {
	payload := strings.Join(tokens, "")

	doc, err := p.parse(payload)
	if err != nil {
		p.logger.Debugw("Rejected document payload", "payload", payload, "error", err)
		return models.Document{}, fmt.Errorf("%w: %v", ErrCantParseJSON, err)
	}

	return doc, nil
}
