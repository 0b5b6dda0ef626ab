package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/google/uuid"

	"github.com/tabilog-dev/receipt-engine/internal/common"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

const receiptBucket = "receipts"

// Record is a persisted extraction result.
type Record struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Receipt   engine.EnrichedReceipt `json:"receipt"`
}

// Store defines the persistence operations for extraction records.
type Store interface {
	// Save persists the record, assigning an ID if it has none.
	Save(rec *Record) error

	// Get retrieves a record by ID.
	Get(id string) (*Record, error)

	// List returns all records.
	List() ([]*Record, error)

	// Delete removes a record by ID.
	Delete(id string) error

	// Close closes the underlying database.
	Close() error
}

// BoltStore implements Store on top of a single-file bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(receiptBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(receiptBucket))
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return bucket.Put([]byte(rec.ID), data)
	})
}

func (b *BoltStore) Get(id string) (*Record, error) {
	var rec *Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(receiptBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return common.NewAppError("RECORD_NOT_FOUND", fmt.Sprintf("record not found: %s", id), common.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *BoltStore) List() ([]*Record, error) {
	records := make([]*Record, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(receiptBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling record: %w", err)
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (b *BoltStore) Delete(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(receiptBucket))
		if bucket.Get([]byte(id)) == nil {
			return common.NewAppError("RECORD_NOT_FOUND", fmt.Sprintf("record not found: %s", id), common.ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
