package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"sweetshop/internal/store"
)

const DocumentsCollection = "documents"

type storedDocument struct {
	Name      string    `bson:"name"`
	Data      string    `bson:"data"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// DocumentStorage keeps each XML document as one record of the documents
// collection. Every write bumps the record's version and only applies when
// the version still matches the one the writer loaded.
type DocumentStorage struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewDocumentStorage(db *mongo.Database) *DocumentStorage {
	return &DocumentStorage{db: db, coll: db.Collection(DocumentsCollection)}
}

func (s *DocumentStorage) Load(ctx context.Context, name string) ([]byte, store.Version, error) {
	var doc storedDocument
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, "", fmt.Errorf("%w: %s", store.ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: load %s: %v", store.ErrStorage, name, err)
	}
	return []byte(doc.Data), formatVersion(doc.Version), nil
}

func (s *DocumentStorage) Save(ctx context.Context, name string, data []byte, expected store.Version) (store.Version, error) {
	now := time.Now().UTC()

	if expected == "" {
		_, err := s.coll.InsertOne(ctx, storedDocument{Name: name, Data: string(data), Version: 1, UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s was created concurrently", store.ErrConflict, name)
		}
		if err != nil {
			return "", fmt.Errorf("%w: insert %s: %v", store.ErrStorage, name, err)
		}
		return formatVersion(1), nil
	}

	current, err := parseVersion(expected)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", store.ErrConflict, name, err)
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"name": name, "version": current},
		bson.M{"$set": bson.M{"data": string(data), "version": current + 1, "updatedAt": now}},
	)
	if err != nil {
		return "", fmt.Errorf("%w: update %s: %v", store.ErrStorage, name, err)
	}
	if res.MatchedCount == 0 {
		return "", fmt.Errorf("%w: %s changed since version %d", store.ErrConflict, name, current)
	}
	return formatVersion(current + 1), nil
}

func (s *DocumentStorage) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStorage, err)
	}
	return nil
}

func formatVersion(v int64) store.Version {
	return store.Version(strconv.FormatInt(v, 10))
}

func parseVersion(v store.Version) (int64, error) {
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("version %q is not a document version", v)
	}
	return n, nil
}
