package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"docldb/src/directors"
	"docldb/src/engine"
	"docldb/src/helpers"
	"docldb/src/settings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const prompt = "db > "

const helpText = `Statements:
  create <name>            create a collection
  insert <name> <json>     insert a document
  find <name> [json]       list documents matching a query
  delete <name> <json>     delete documents matching a query
  peek                     list collections
  commit                   save the database
Commands:
  .tables                  same as peek
  .help                    show this help
  .exit                    leave the shell`

// printUsage prints helpful usage information
func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "docldb - an embedded document store")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  docldb [options] [database-file]")
	fmt.Fprintln(w, "\nOptions:")
	fs.PrintDefaults()

	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, "  docldb ./users.docl")
	fmt.Fprintln(w, "  docldb --commit-on-exit=false --log-file=/tmp/docldb.log")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := settings.GetSettings()

	fs := flag.NewFlagSet("docldb", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	showVersion, err := parseArguments(fs, os.Args[1:], args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Println(args.Version)
		return nil
	}

	logger, err := helpers.NewLogger(args.LogFile, args.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if args.Verbose {
		fmt.Println("docldb starting with options:")
		fmt.Printf("  Database File: %s\n", args.DatabaseFile)
		fmt.Printf("  Config File: %s\n", args.ConfigFile)
		fmt.Printf("  Log File: %s\n", args.LogFile)
		fmt.Printf("  Commit On Exit: %v\n", args.CommitOnExit)
		fmt.Printf("  Atomic Commit: %v\n", args.AtomicCommit)
	}

	store := engine.NewDatabaseStore(args.AtomicCommit, logger)
	dbService, err := directors.NewDatabaseService(store, args.DatabaseFile, logger)
	if err != nil {
		if errors.Is(err, engine.ErrDatabaseFileNotFound) {
			fmt.Printf("Creating new database %s\n", args.DatabaseFile)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %v\nStarting with an empty database. The file is only overwritten by an explicit commit.\n", err)
		}
	}

	session := directors.NewSession(dbService, nil, logger)
	return runShell(session, args, logger)
}

// parseArguments fills args from defaults, the optional config file and then
// the flags set on the command line, in that order, and validates the result.
// Problems are returned, not printed; usage goes to the flag set's output.
func parseArguments(fs *flag.FlagSet, argv []string, args *settings.Arguments) (bool, error) {
	defaults := settings.DefaultArguments()

	var flagArgs settings.Arguments
	fs.StringVarP(&flagArgs.ConfigFile, "config", "c", "", "Path to a JSONC config file")
	fs.StringVar(&flagArgs.LogFile, "log-file", defaults.LogFile, "File to write logs to (empty for stderr)")
	fs.StringVar(&flagArgs.HistoryFile, "history", defaults.HistoryFile, "Shell history file (empty to disable)")
	fs.BoolVar(&flagArgs.CommitOnExit, "commit-on-exit", defaults.CommitOnExit, "Save the database when the shell exits")
	fs.BoolVar(&flagArgs.AtomicCommit, "atomic-commit", defaults.AtomicCommit, "Commit through a temporary file and rename")
	fs.BoolVarP(&flagArgs.Verbose, "verbose", "v", defaults.Verbose, "Print startup details")
	fs.BoolVar(&flagArgs.Debug, "debug", defaults.Debug, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(argv); err != nil {
		return false, err
	}
	if *showVersion {
		return true, nil
	}

	if flagArgs.ConfigFile != "" {
		if err := settings.LoadConfigFile(flagArgs.ConfigFile, args); err != nil {
			return false, err
		}
	}
	applyFlags(fs, args, &flagArgs)
	if fs.NArg() > 0 {
		args.DatabaseFile = fs.Arg(0)
	}

	if err := settings.ValidateArguments(args); err != nil {
		printUsage(fs)
		return false, err
	}

	return false, nil
}

// applyFlags copies the flags given on the command line over args.
func applyFlags(fs *flag.FlagSet, args, flagArgs *settings.Arguments) {
	if fs.Changed("log-file") {
		args.LogFile = flagArgs.LogFile
	}
	if fs.Changed("history") {
		args.HistoryFile = flagArgs.HistoryFile
	}
	if fs.Changed("commit-on-exit") {
		args.CommitOnExit = flagArgs.CommitOnExit
	}
	if fs.Changed("atomic-commit") {
		args.AtomicCommit = flagArgs.AtomicCommit
	}
	if fs.Changed("verbose") {
		args.Verbose = flagArgs.Verbose
	}
	if fs.Changed("debug") {
		args.Debug = flagArgs.Debug
	}
}

func runShell(session *directors.Session, args *settings.Arguments, logger *zap.SugaredLogger) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if args.HistoryFile != "" {
		if f, err := os.Open(args.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ".") {
			if handleMetaCommand(session, input, os.Stdout) {
				break
			}
			continue
		}

		response, err := directors.CommandDirector(session, input)
		if err != nil {
			directors.RenderError(os.Stdout, input, err)
			continue
		}
		directors.RenderResponse(os.Stdout, response)
	}

	var shutdownErr error
	if args.CommitOnExit {
		if err := session.CommitOnExit(); errors.Is(err, directors.ErrExitCommitSkipped) {
			fmt.Printf("Not saving on exit: %v\nRun 'commit' to overwrite the file.\n", err)
		} else if err != nil {
			fmt.Printf("Can't commit changes to database: %v\n", err)
			shutdownErr = multierr.Append(shutdownErr, err)
		} else {
			fmt.Println("Database saved.")
		}
	} else {
		logger.Infow("Exiting without commit", "filename", session.Database().Filename())
	}

	if args.HistoryFile != "" {
		f, err := os.Create(args.HistoryFile)
		if err == nil {
			_, err = line.WriteHistory(f)
			err = multierr.Append(err, f.Close())
		}
		if err != nil {
			logger.Warnw("Failed to save history", "file", args.HistoryFile, "error", err)
			shutdownErr = multierr.Append(shutdownErr, err)
		}
	}

	fmt.Println("Bye!")
	return shutdownErr
}

// handleMetaCommand runs a dot command and reports whether the shell should exit.
func handleMetaCommand(session *directors.Session, command string, w io.Writer) bool {
	switch strings.Fields(command)[0] {
	case ".exit":
		return true
	case ".help":
		fmt.Fprintln(w, helpText)
	case ".tables":
		response, err := directors.CommandDirector(session, "peek")
		if err != nil {
			directors.RenderError(w, command, err)
			return false
		}
		directors.RenderResponse(w, response)
	default:
		fmt.Fprintf(w, "Unrecognized command '%s'.\n", command)
	}
	return false
}
