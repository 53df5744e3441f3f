package engine

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"docldb/src/models"

	"github.com/tailscale/hujson"
	"go.mongodb.org/mongo-driver/bson"
)

// DocumentParser turns the raw payload text of a command into a document.
type DocumentParser func(raw string) (models.Document, error)

// ParseDocument parses a JSON object into a document. Comments and trailing
// commas are accepted. Numbers become int32, int64 or float64 depending on
// their form and size, and extended JSON wrappers such as {"$oid": ...} are
// honored.
func ParseDocument(raw string) (models.Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Document{}, errors.New("empty document")
	}

	standardized, err := hujson.Standardize([]byte(raw))
	if err != nil {
		return models.Document{}, fmt.Errorf("invalid JSON: %w", err)
	}

	standardized = bytes.TrimSpace(standardized)
	if len(standardized) == 0 || standardized[0] != '{' {
		return models.Document{}, errors.New("document must be a JSON object")
	}

	var d bson.D
	if err := bson.UnmarshalExtJSON(standardized, false, &d); err != nil {
		return models.Document{}, fmt.Errorf("error decoding document: %w", err)
	}

	return models.NewDocument(d), nil
}
