package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ErrEmptyDataFile is returned when a data file exists but holds no bytes.
var ErrEmptyDataFile = errors.New("data file is empty")

// FileExists checks if a file exists and is not a directory
func FileExists(filename string, logger *zap.SugaredLogger) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warnw("Error checking file for existence", "file", filename, "error", err)
		}
		return false
	}

	return !info.IsDir()
}

// ReadDataFile memory maps a data file and returns a copy of its contents.
func ReadDataFile(filePath string) ([]byte, error) {
	dataFile, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening data file %s: %w", filePath, err)
	}
	defer dataFile.Close()

	stat, err := dataFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	fileSize := int(stat.Size())

	if fileSize == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataFile, filePath)
	}

	data, err := unix.Mmap(int(dataFile.Fd()), 0, fileSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to memory map file: %w", err)
	}
	defer unix.Munmap(data)

	contents := make([]byte, len(data))
	copy(contents, data)

	return contents, nil
}

// WriteDataFile replaces the contents of a data file in place. A crash
// halfway through leaves a truncated file behind.
func WriteDataFile(filePath string, data []byte) error {
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening data file %s: %w", filePath, err)
	}

	fileLen, err := file.Write(data)
	if err != nil {
		file.Close()
		return fmt.Errorf("error writing to data file %s: %w", filePath, err)
	}

	if fileLen != len(data) {
		file.Close()
		return fmt.Errorf("error writing to data file %s: wrote %d bytes, expected %d", filePath, fileLen, len(data))
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing data file %s: %w", filePath, err)
	}

	return nil
}

// WriteDataFileAtomic writes to a temporary file and renames it over filePath.
func WriteDataFileAtomic(filePath string, data []byte) error {
	if err := atomic.WriteFile(filePath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error writing data file %s: %w", filePath, err)
	}
	return nil
}

// EncodeBSON marshals a value into a BSON document.
func EncodeBSON(value interface{}) ([]byte, error) {
	bsonData, err := bson.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}

	return bsonData, nil
}

// DecodeBSON unmarshals a BSON document into target.
func DecodeBSON(bsonData []byte, target interface{}) error {
	if err := bson.Unmarshal(bsonData, target); err != nil {
		return fmt.Errorf("error decoding BSON: %w", err)
	}

	return nil
}
