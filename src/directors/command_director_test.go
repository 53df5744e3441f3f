package directors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docldb/src/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, path string) *Session {
	t.Helper()
	service, err := NewDatabaseService(engine.NewDatabaseStore(false, nil), path, nil)
	if err != nil {
		require.ErrorIs(t, err, engine.ErrDatabaseFileNotFound)
	}
	return NewSession(service, nil, nil)
}

// execute runs a command line the way the shell does and returns its output.
func execute(t *testing.T, session *Session, command string) string {
	t.Helper()
	var out bytes.Buffer
	response, err := CommandDirector(session, command)
	if err != nil {
		RenderError(&out, command, err)
	} else {
		RenderResponse(&out, response)
	}
	return out.String()
}

func TestSessionEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	session := newTestSession(t, path)

	steps := []struct {
		command string
		want    string
	}{
		{"create users", "Executed.\n"},
		{"create users", "Collection already exists.\n"},
		{`insert users {"name":"a","age":1}`, "Executed.\n"},
		{`insert users {"name":"b","age":2}`, "Executed.\n"},
		{`find users {"age":1}`, "{\"name\":\"a\",\"age\":1}\nExecuted.\n"},
		{"find users", "{\"name\":\"a\",\"age\":1}\n{\"name\":\"b\",\"age\":2}\nExecuted.\n"},
		{`delete users {"name":"a"}`, "Executed. 1 document(s) deleted.\n"},
		{`delete users {"name":"b"}`, "Executed. 1 document(s) deleted.\n"},
		{"find users", "Executed.\n"},
		{"peek", "[\"users\"]\nExecuted.\n"},
		{"commit", "Database saved.\n"},
	}

	for _, step := range steps {
		assert.Equal(t, step.want, execute(t, session, step.command), step.command)
	}

	reopened := newTestSession(t, path)
	users, ok := reopened.Database().FindCollection("users")
	require.True(t, ok)
	assert.Equal(t, 0, users.Count())
	assert.Equal(t, []string{"users"}, reopened.Database().CollectionNames())
}

func TestCommittedDocumentsSurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	session := newTestSession(t, path)

	execute(t, session, "create users")
	execute(t, session, "create orders")
	execute(t, session, `insert users {"name":"a","address":{"city":"x"},"tags":["p","q"]}`)
	require.NoError(t, session.Commit())

	reopened := newTestSession(t, path)
	assert.Equal(t, "[\"users\", \"orders\"]\nExecuted.\n", execute(t, reopened, "peek"))
	assert.Equal(t,
		"{\"name\":\"a\",\"address\":{\"city\":\"x\"},\"tags\":[\"p\",\"q\"]}\nExecuted.\n",
		execute(t, reopened, `find users {"address":{"city":"x"}}`))
}

func TestUncommittedChangesAreLost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	session := newTestSession(t, path)

	execute(t, session, "create users")
	require.NoError(t, session.Commit())
	execute(t, session, `insert users {"name":"a"}`)

	reopened := newTestSession(t, path)
	assert.Equal(t, "Executed.\n", execute(t, reopened, "find users"))
}

func TestPrepareErrorMessages(t *testing.T) {
	session := newTestSession(t, filepath.Join(t.TempDir(), "users.docl"))
	execute(t, session, "create users")

	tests := []struct {
		command string
		want    string
	}{
		{"select users", "Unrecognized keyword at start of 'select users'.\n"},
		{"create", "Collection is missing in query.\n"},
		{"find orders", "Collection does not exist.\n"},
		{"insert users", "Syntax error. Could not parse statement.\n"},
		{"delete users", "Syntax error. Could not parse statement.\n"},
		{`insert users {"name":}`, "The JSON can't be parsed.\n"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, execute(t, session, tt.command), tt.command)
	}
}

func TestRenderResponseFailures(t *testing.T) {
	tests := []struct {
		response engine.CommandResponse
		want     string
	}{
		{engine.CommandResponse{Statement: engine.StatementInsert, Result: engine.ExecuteTableFull}, "Table full.\n"},
		{engine.CommandResponse{Statement: engine.StatementFind, Result: engine.ExecuteTableUndefined}, "Collection does not exist.\n"},
		{engine.CommandResponse{Statement: engine.StatementCommit, Result: engine.ExecuteCantSaveDatabase, Err: errors.New("disk full")},
			"Can't commit changes to database: disk full\n"},
		{engine.CommandResponse{Result: engine.ExecuteFailed}, "Failed.\n"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		RenderResponse(&out, &tt.response)
		assert.Equal(t, tt.want, out.String())
	}
}

func TestRenderErrorFallback(t *testing.T) {
	var out bytes.Buffer
	RenderError(&out, "x", fmt.Errorf("boom"))
	assert.Equal(t, "Error: boom\n", out.String())
}

func TestCommitToUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "users.docl")
	session := newTestSession(t, path)

	out := execute(t, session, "commit")
	assert.True(t, strings.HasPrefix(out, "Can't commit changes to database: "), out)
	assert.Error(t, session.Commit())
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	service, err := NewDatabaseService(engine.NewDatabaseStore(false, nil), path, nil)
	assert.ErrorIs(t, err, engine.ErrCorruptDatabase)
	require.NotNil(t, service)
	assert.Empty(t, service.Database().Collections())
	assert.Equal(t, path, service.Database().Filename())
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	assert.NotEqual(t, newTestSession(t, path).ID, newTestSession(t, path).ID)
}

func TestUnreadableFileIsKeptOnExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	session := newTestSession(t, path)
	execute(t, session, "create users")
	execute(t, session, `insert users {"name":"a"}`)
	require.NoError(t, session.Commit())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	damaged := append([]byte{0xff, 0xff, 0xff, 0x7f}, data[4:]...)
	require.NoError(t, os.WriteFile(path, damaged, 0644))

	service, err := NewDatabaseService(engine.NewDatabaseStore(false, nil), path, nil)
	require.ErrorIs(t, err, engine.ErrCorruptDatabase)
	assert.ErrorIs(t, service.LoadError(), engine.ErrCorruptDatabase)
	reopened := NewSession(service, nil, nil)
	execute(t, reopened, "create orders")

	err = reopened.CommitOnExit()
	assert.ErrorIs(t, err, ErrExitCommitSkipped)
	assert.ErrorIs(t, err, engine.ErrCorruptDatabase)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, damaged, after)
}

func TestExplicitCommitReplacesUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	service, err := NewDatabaseService(engine.NewDatabaseStore(false, nil), path, nil)
	require.ErrorIs(t, err, engine.ErrCorruptDatabase)
	session := NewSession(service, nil, nil)

	execute(t, session, "create users")
	assert.Equal(t, "Database saved.\n", execute(t, session, "commit"))
	assert.NoError(t, service.LoadError())

	execute(t, session, "create orders")
	require.NoError(t, session.CommitOnExit())

	reopened := newTestSession(t, path)
	assert.Equal(t, []string{"users", "orders"}, reopened.Database().CollectionNames())
}

func TestCommitOnExitWithMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.docl")
	session := newTestSession(t, path)
	assert.NoError(t, session.DatabaseService.LoadError())

	execute(t, session, "create users")
	require.NoError(t, session.CommitOnExit())

	reopened := newTestSession(t, path)
	assert.Equal(t, []string{"users"}, reopened.Database().CollectionNames())
}
