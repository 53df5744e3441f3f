package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docldb.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefaultArguments(t *testing.T) {
	args := DefaultArguments()

	assert.Equal(t, DefaultDatabaseFile, args.DatabaseFile)
	assert.True(t, args.CommitOnExit)
	assert.False(t, args.AtomicCommit)
	assert.NotEmpty(t, args.Version)
}

func TestGetSettingsIsShared(t *testing.T) {
	assert.Same(t, GetSettings(), GetSettings())
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `{
		// where the data lives
		"database_file": "/tmp/users.docl",
		"commit_on_exit": false,
		"atomic_commit": true, /* trailing comma below */
	}`)

	args := DefaultArguments()
	require.NoError(t, LoadConfigFile(path, &args))

	assert.Equal(t, "/tmp/users.docl", args.DatabaseFile)
	assert.False(t, args.CommitOnExit)
	assert.True(t, args.AtomicCommit)
	assert.Equal(t, path, args.ConfigFile)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, DefaultArguments().LogFile, args.LogFile)
}

func TestLoadConfigFileErrors(t *testing.T) {
	args := DefaultArguments()

	err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.jsonc"), &args)
	assert.ErrorIs(t, err, ErrConfigFileRead)

	err = LoadConfigFile(writeConfig(t, `{"database_file": `), &args)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	err = LoadConfigFile(writeConfig(t, `{"databse_file": "typo.docl"}`), &args)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	err = LoadConfigFile(writeConfig(t, `{"commit_on_exit": "yes"}`), &args)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	assert.Equal(t, DefaultArguments(), args, "failed loads must not modify the arguments")
}

func TestValidateArguments(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"new file in existing dir", filepath.Join(dir, "db.docl"), false},
		{"relative default", DefaultDatabaseFile, false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"directory", dir, true},
		{"missing parent", filepath.Join(dir, "missing", "db.docl"), true},
		{"parent is a file", filepath.Join(notADir, "db.docl"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := DefaultArguments()
			args.DatabaseFile = tt.path

			err := ValidateArguments(&args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
