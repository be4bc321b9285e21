package lifecycle

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"leaflog/internal/database"
)

var (
	// ErrValidation means a required field is missing or malformed; no
	// write was attempted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the plant was gone from the store at write time.
	ErrNotFound = errors.New("plant not found")

	// ErrEventLogFull means the embedded event log reached its configured
	// bound; no write was attempted.
	ErrEventLogFull = errors.New("event log full")

	// ErrStoreUnavailable wraps any other document-store failure. The
	// lifecycle store never retries; in-memory state is whatever the last
	// read delivered.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

func wrapStore(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, database.ErrNoDocumentsModified) ||
		errors.Is(err, primitive.ErrInvalidHex) {
		return errors.Wrap(ErrNotFound, op)
	}
	return errors.Wrapf(ErrStoreUnavailable, "%s: %v", op, err)
}
