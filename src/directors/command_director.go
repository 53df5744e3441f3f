package directors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"docldb/src/engine"
)

// CommandDirector prepares and executes one command line in session. A
// non-nil error is a prepare failure; execution outcomes, including
// failures, come back in the response.
func CommandDirector(session *Session, command string) (*engine.CommandResponse, error) {
	command = strings.TrimSpace(command)

	statement, err := session.preparer.Prepare(command, session.Database())
	if err != nil {
		session.logger.Debugw("Statement rejected", "command", command, "error", err)
		return nil, err
	}

	response := session.executor.Execute(statement, session.Database())
	session.logger.Debugw("Statement executed",
		"statement", statement.Type,
		"collection", statement.Collection,
		"result", response.Result,
		"count", response.ResultCount)

	return response, nil
}

// RenderResponse writes the user-facing output of an executed statement.
func RenderResponse(w io.Writer, response *engine.CommandResponse) {
	switch response.Statement {
	case engine.StatementFind:
		for _, doc := range response.Documents {
			fmt.Fprintln(w, doc)
		}
	case engine.StatementPeek:
		quoted := make([]string, 0, len(response.Collections))
		for _, name := range response.Collections {
			quoted = append(quoted, fmt.Sprintf("%q", name))
		}
		fmt.Fprintf(w, "[%s]\n", strings.Join(quoted, ", "))
	}

	switch response.Result {
	case engine.ExecuteSuccess:
		switch response.Statement {
		case engine.StatementDelete:
			fmt.Fprintf(w, "Executed. %d document(s) deleted.\n", response.ResultCount)
		case engine.StatementCommit:
			fmt.Fprintln(w, "Database saved.")
		default:
			fmt.Fprintln(w, "Executed.")
		}
	case engine.ExecuteTableFull:
		fmt.Fprintln(w, "Table full.")
	case engine.ExecuteTableUndefined:
		fmt.Fprintln(w, "Collection does not exist.")
	case engine.ExecuteCollectionAlreadyExists:
		fmt.Fprintln(w, "Collection already exists.")
	case engine.ExecuteCantSaveDatabase:
		fmt.Fprintf(w, "Can't commit changes to database: %v\n", response.Err)
	default:
		fmt.Fprintln(w, "Failed.")
	}
}

// RenderError writes the user-facing message for a prepare failure.
func RenderError(w io.Writer, command string, err error) {
	switch {
	case errors.Is(err, engine.ErrUnrecognizedStatement):
		fmt.Fprintf(w, "Unrecognized keyword at start of '%s'.\n", strings.TrimSpace(command))
	case errors.Is(err, engine.ErrSyntax):
		fmt.Fprintln(w, "Syntax error. Could not parse statement.")
	case errors.Is(err, engine.ErrMissingCollection):
		fmt.Fprintln(w, "Collection is missing in query.")
	case errors.Is(err, engine.ErrCollectionDoesntExist):
		fmt.Fprintln(w, "Collection does not exist.")
	case errors.Is(err, engine.ErrCantParseJSON):
		fmt.Fprintln(w, "The JSON can't be parsed.")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
