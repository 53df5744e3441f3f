package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tailscale/hujson"
)

// DefaultDatabaseFile is used when no database path is given.
const DefaultDatabaseFile = "./db.docl"

var (
	ErrConfigFileRead = errors.New("cannot read config file")
	ErrConfigInvalid  = errors.New("invalid config file")
)

type Arguments struct {
	// The file the database is loaded from and committed to
	DatabaseFile string

	ConfigFile string

	// Where zap writes; empty means stderr
	LogFile string

	// liner history; empty disables history
	HistoryFile string

	// Save the database when the shell exits
	CommitOnExit bool

	// Commit through a temp file and rename instead of overwriting in place
	AtomicCommit bool

	Verbose bool
	Debug   bool
	Version string
}

// fileConfig is the JSONC config file shape. Pointers tell unset apart from
// false/empty.
type fileConfig struct {
	DatabaseFile *string `json:"database_file"`
	LogFile      *string `json:"log_file"`
	HistoryFile  *string `json:"history_file"`
	CommitOnExit *bool   `json:"commit_on_exit"`
	AtomicCommit *bool   `json:"atomic_commit"`
	Verbose      *bool   `json:"verbose"`
	Debug        *bool   `json:"debug"`
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the process wide settings, initialized to the defaults.
func GetSettings() *Arguments {
	once.Do(func() {
		args := DefaultArguments()
		instance = &args
	})
	return instance
}

// DefaultArguments returns the default settings.
func DefaultArguments() Arguments {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".docldb_history")
	}

	return Arguments{
		DatabaseFile: DefaultDatabaseFile,
		LogFile:      "./log_files/docldb.log",
		HistoryFile:  history,
		CommitOnExit: true,
		Version:      "0.1.0",
	}
}

// LoadConfigFile overlays the values found in the JSONC file at path onto
// args. Keys absent from the file leave args untouched.
func LoadConfigFile(path string, args *Arguments) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	applyConfig(args, cfg)
	args.ConfigFile = path
	return nil
}

func parseConfig(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig
	decoder := json.NewDecoder(strings.NewReader(string(standardized)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func applyConfig(args *Arguments, cfg fileConfig) {
	if cfg.DatabaseFile != nil {
		args.DatabaseFile = *cfg.DatabaseFile
	}
	if cfg.LogFile != nil {
		args.LogFile = *cfg.LogFile
	}
	if cfg.HistoryFile != nil {
		args.HistoryFile = *cfg.HistoryFile
	}
	if cfg.CommitOnExit != nil {
		args.CommitOnExit = *cfg.CommitOnExit
	}
	if cfg.AtomicCommit != nil {
		args.AtomicCommit = *cfg.AtomicCommit
	}
	if cfg.Verbose != nil {
		args.Verbose = *cfg.Verbose
	}
	if cfg.Debug != nil {
		args.Debug = *cfg.Debug
	}
}

// ValidateArguments validates the arguments and returns an error if invalid
func ValidateArguments(args *Arguments) error {
	if strings.TrimSpace(args.DatabaseFile) == "" {
		return fmt.Errorf("database file path is empty")
	}

	// The database file may not exist yet, but it must not be a directory
	// and its directory must exist.
	if info, err := os.Stat(args.DatabaseFile); err == nil && info.IsDir() {
		return fmt.Errorf("database path exists but is a directory: %s", args.DatabaseFile)
	}

	dir := filepath.Dir(args.DatabaseFile)
	if dirInfo, err := os.Stat(dir); err != nil {
		return fmt.Errorf("error accessing database directory: %w", err)
	} else if !dirInfo.IsDir() {
		return fmt.Errorf("database directory path exists but is not a directory: %s", dir)
	}

	return nil
}
