// Package store persists compacted sheets in a bbolt database, one bucket
// per workbook and one key per sheet.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// ErrNotFound indicates a missing workbook or sheet.
var ErrNotFound = errors.New("not found")

// Store is a snapshot store backed by bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return New(db), nil
}

// New wraps an open database.
func New(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the compact form of one sheet.
func (s *Store) Put(book, sheet string, c models.Compact) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return s.db.Batch(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(book))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(sheet), data)
	})
}

// Get loads the compact form of one sheet.
func (s *Store) Get(book, sheet string) (models.Compact, error) {
	var c models.Compact
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(book))
		if bucket == nil {
			return fmt.Errorf("workbook %s: %w", book, ErrNotFound)
		}
		data := bucket.Get([]byte(sheet))
		if data == nil {
			return fmt.Errorf("sheet %s/%s: %w", book, sheet, ErrNotFound)
		}
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes one sheet. Deleting the last sheet removes the workbook.
func (s *Store) Delete(book, sheet string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(book))
		if bucket == nil || bucket.Get([]byte(sheet)) == nil {
			return fmt.Errorf("sheet %s/%s: %w", book, sheet, ErrNotFound)
		}
		if err := bucket.Delete([]byte(sheet)); err != nil {
			return err
		}
		if k, _ := bucket.Cursor().First(); k == nil {
			return tx.DeleteBucket([]byte(book))
		}
		return nil
	})
}

// List returns the sheet names of a workbook in byte order.
func (s *Store) List(book string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(book))
		if bucket == nil {
			return fmt.Errorf("workbook %s: %w", book, ErrNotFound)
		}
		return bucket.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// PutSnapshot replaces the workbook book with the sheets of snap in one
// transaction.
func (s *Store) PutSnapshot(book string, snap models.Snapshot) error {
	encoded := make(map[string][]byte, len(snap.Sheets))
	for name, c := range snap.Sheets {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		encoded[name] = data
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(book)) != nil {
			if err := tx.DeleteBucket([]byte(book)); err != nil {
				return err
			}
		}
		if len(encoded) == 0 {
			return nil
		}
		bucket, err := tx.CreateBucket([]byte(book))
		if err != nil {
			return err
		}
		for name, data := range encoded {
			if err := bucket.Put([]byte(name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot loads every sheet of a workbook.
func (s *Store) Snapshot(book string) (models.Snapshot, error) {
	snap := models.Snapshot{
		Version: models.SnapshotVersion,
		Sheets:  make(map[string]models.Compact),
	}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(book))
		if bucket == nil {
			return fmt.Errorf("workbook %s: %w", book, ErrNotFound)
		}
		return bucket.ForEach(func(k, v []byte) error {
			var c models.Compact
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("sheet %s/%s: %w", book, k, err)
			}
			snap.Sheets[string(k)] = c
			return nil
		})
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}
