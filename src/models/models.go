package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCollectionExists is returned by AddCollection when the name is taken.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrInvalidCollection is returned by AddCollection for nil or unnamed collections.
	ErrInvalidCollection = errors.New("invalid collection")
)

type Database struct {
	// Filename is the path the database is persisted to.
	filename string

	// Collections in creation order. Names are unique.
	collections []*Collection
}

type Collection struct {
	// Name is the name of the collection, unique within its database.
	name string

	// Count always equals len(documents); it is maintained on every
	// append and delete rather than derived.
	count int

	// Documents in insertion order.
	documents []Document
}

// NewDatabase returns an empty database bound to filename.
func NewDatabase(filename string) *Database {
	return &Database{
		filename:    filename,
		collections: []*Collection{},
	}
}

func (db *Database) Filename() string {
	return db.filename
}

// Collections returns the collections in creation order. The slice is a
// copy; the collections themselves are shared.
func (db *Database) Collections() []*Collection {
	out := make([]*Collection, len(db.collections))
	copy(out, db.collections)
	return out
}

// CollectionNames returns the collection names in creation order.
func (db *Database) CollectionNames() []string {
	names := make([]string, 0, len(db.collections))
	for _, c := range db.collections {
		names = append(names, c.name)
	}
	return names
}

// FindCollection looks a collection up by exact name.
func (db *Database) FindCollection(name string) (*Collection, bool) {
	for _, c := range db.collections {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// AddCollection registers a collection. This is the only way collections
// enter a database, so name uniqueness is checked here.
func (db *Database) AddCollection(collection *Collection) error {
	if collection == nil || collection.name == "" {
		return ErrInvalidCollection
	}
	if _, exists := db.FindCollection(collection.name); exists {
		return fmt.Errorf("%w: %s", ErrCollectionExists, collection.name)
	}
	db.collections = append(db.collections, collection)
	return nil
}

// NewCollection returns an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		name:      name,
		documents: []Document{},
	}
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Count() int {
	return c.count
}

// Append adds doc at the end of the collection. Capacity is enforced by the
// executor, not here.
func (c *Collection) Append(doc Document) {
	c.documents = append(c.documents, doc)
	c.count++
}

// All returns every document in insertion order.
func (c *Collection) All() []Document {
	out := make([]Document, len(c.documents))
	copy(out, c.documents)
	return out
}

// Search returns the documents matching query in insertion order.
func (c *Collection) Search(query Document) []Document {
	matches := []Document{}
	for _, doc := range c.documents {
		if doc.Matches(query) {
			matches = append(matches, doc)
		}
	}
	return matches
}

// DeleteMatching removes every document matching query, keeping the order of
// the remaining ones, and returns how many were removed.
func (c *Collection) DeleteMatching(query Document) int {
	kept := c.documents[:0]
	removed := 0
	for _, doc := range c.documents {
		if doc.Matches(query) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	// Clear the tail so removed documents are not kept alive by the backing array.
	for i := len(kept); i < len(c.documents); i++ {
		c.documents[i] = Document{}
	}
	c.documents = kept
	c.count -= removed
	return removed
}

func (c *Collection) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Collection Name: %s\n", c.name)
	fmt.Fprintf(&sb, "Number of Documents: %d\n", c.count)
	sb.WriteString("Documents:\n")
	for i, doc := range c.documents {
		fmt.Fprintf(&sb, "Row %d: %s\n", i+1, doc)
	}
	return sb.String()
}
