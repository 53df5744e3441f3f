package engine

import (
	"errors"
	"fmt"

	"docldb/src/helpers"
	"docldb/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DatabaseStore defines the persistence operations the executor needs.
type DatabaseStore interface {
	// SaveDatabase writes the whole database to its filename.
	SaveDatabase(database *models.Database) error

	// LoadDatabase reads a database back from filename.
	LoadDatabase(filename string) (*models.Database, error)
}

// DatabaseStorageEngine persists a database as a single BSON document:
//
//	{
//	  filename: string,
//	  collections: [{name: string, num_documents: int64, documents: [document]}]
//	}
//
// There is no version field.
type DatabaseStorageEngine struct {
	// AtomicWrites switches SaveDatabase from truncate-and-write to
	// write-temp-and-rename.
	AtomicWrites bool
	logger       *zap.SugaredLogger
}

type databaseRecord struct {
	Filename    string             `bson:"filename"`
	Collections []collectionRecord `bson:"collections"`
}

type collectionRecord struct {
	Name         string   `bson:"name"`
	NumDocuments int64    `bson:"num_documents"`
	Documents    []bson.D `bson:"documents"`
}

func NewDatabaseStore(atomicWrites bool, logger *zap.SugaredLogger) *DatabaseStorageEngine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DatabaseStorageEngine{
		AtomicWrites: atomicWrites,
		logger:       logger,
	}
}

// SaveDatabase encodes the database and overwrites its file.
func (d *DatabaseStorageEngine) SaveDatabase(database *models.Database) error {
	encodedDB, err := helpers.EncodeBSON(dbToRecord(database))
	if err != nil {
		return fmt.Errorf("error encoding database %s: %w", database.Filename(), err)
	}

	if d.AtomicWrites {
		err = helpers.WriteDataFileAtomic(database.Filename(), encodedDB)
	} else {
		err = helpers.WriteDataFile(database.Filename(), encodedDB)
	}
	if err != nil {
		return err
	}

	d.logger.Infow("Database saved",
		"filename", database.Filename(),
		"collections", len(database.Collections()),
		"bytes", len(encodedDB))

	return nil
}

// LoadDatabase reads and decodes the database stored at filename. The
// returned database is bound to filename even if the file recorded another
// path.
func (d *DatabaseStorageEngine) LoadDatabase(filename string) (*models.Database, error) {
	if !helpers.FileExists(filename, d.logger) {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseFileNotFound, filename)
	}

	data, err := helpers.ReadDataFile(filename)
	if err != nil {
		if errors.Is(err, helpers.ErrEmptyDataFile) {
			return nil, fmt.Errorf("%w: %w", ErrCorruptDatabase, err)
		}
		return nil, err
	}

	var record databaseRecord
	if err := helpers.DecodeBSON(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptDatabase, filename, err)
	}

	if record.Filename != filename {
		d.logger.Warnw("Database file was saved under another path",
			"filename", filename,
			"recordedFilename", record.Filename)
	}
	record.Filename = filename

	database, err := recordToDB(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptDatabase, filename, err)
	}

	d.logger.Infow("Database loaded",
		"filename", filename,
		"collections", len(record.Collections))

	return database, nil
}

// OpenDatabase loads filename, falling back to an empty database bound to
// filename when the file is missing or unreadable. The database is never nil;
// the error reports why the fallback was taken.
func (d *DatabaseStorageEngine) OpenDatabase(filename string) (*models.Database, error) {
	database, err := d.LoadDatabase(filename)
	if err != nil {
		d.logger.Warnw("Starting with an empty database", "filename", filename, "error", err)
		return models.NewDatabase(filename), err
	}
	return database, nil
}

// dbToRecord converts a database into its on-disk shape. Empty slices are
// kept non-nil so they encode as BSON arrays.
func dbToRecord(database *models.Database) databaseRecord {
	collections := database.Collections()
	record := databaseRecord{
		Filename:    database.Filename(),
		Collections: make([]collectionRecord, 0, len(collections)),
	}

	for _, collection := range collections {
		docs := collection.All()
		collRecord := collectionRecord{
			Name:         collection.Name(),
			NumDocuments: int64(collection.Count()),
			Documents:    make([]bson.D, 0, len(docs)),
		}
		for _, doc := range docs {
			collRecord.Documents = append(collRecord.Documents, doc.D())
		}
		record.Collections = append(record.Collections, collRecord)
	}

	return record
}

// recordToDB rebuilds a database from its on-disk shape.
func recordToDB(record databaseRecord) (*models.Database, error) {
	database := models.NewDatabase(record.Filename)

	for _, collRecord := range record.Collections {
		if collRecord.NumDocuments != int64(len(collRecord.Documents)) {
			return nil, fmt.Errorf("collection %s records %d documents but holds %d",
				collRecord.Name, collRecord.NumDocuments, len(collRecord.Documents))
		}

		collection := models.NewCollection(collRecord.Name)
		for _, doc := range collRecord.Documents {
			collection.Append(models.NewDocument(doc))
		}

		if err := database.AddCollection(collection); err != nil {
			return nil, err
		}
	}

	return database, nil
}
