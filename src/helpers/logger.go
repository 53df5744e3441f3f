package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// NewLogger builds the process logger. Output goes to logFile so the
// terminal stays free for the shell; errors inside zap itself go to stderr.
// Debug mode uses the development config with debug level enabled.
func NewLogger(logFile string, debug bool) (*zap.SugaredLogger, error) {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	if logFile == "" {
		config.OutputPaths = []string{"stderr"}
	} else {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		config.OutputPaths = []string{logFile}
	}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.Sugar(), nil
}
