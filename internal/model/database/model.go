package database

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/nbayes/internal/database"
	"github.com/go-sod/nbayes/internal/model"
)

var ErrNotFound = errors.New("model not found")

const (
	bucketModels = "models"
	bucketUsage  = "usage"
)

type FilterFn func(r model.Record) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

// DB stores XDR encoded records keyed by model name.
type DB struct {
	sDB *database.DB
}

// Keys returns the names of all stored models in key order.
func (db *DB) Keys() ([]string, error) {
	var keys []string
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModels))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})

	return keys, err
}

// Store inserts or replaces the record with the same name.
func (db *DB) Store(_ context.Context, r model.Record) error {
	bytes, err := model.Encode(r)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketModels))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(r.Name), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) Find(_ context.Context, name string) (model.Record, error) {
	var r model.Record
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModels))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		decoded, err := model.Decode(v)
		if err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		r = decoded
		return nil
	}); err != nil {
		return model.Record{}, fmt.Errorf("view transaction error: %w", err)
	}

	return r, nil
}

func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Record, error) {
	var records []model.Record
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModels))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			r, err := model.Decode(v)
			if err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			if filter == nil || filter(r) {
				records = append(records, r)
			}
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return records, nil
}

// Delete removes the named record and reports whether it existed.
func (db *DB) Delete(_ context.Context, name string) (bool, error) {
	var found bool
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModels))
		if b == nil {
			return nil
		}
		found = b.Get([]byte(name)) != nil
		if err := b.Delete([]byte(name)); err != nil {
			return err
		}
		if u := tx.Bucket([]byte(bucketUsage)); u != nil {
			return u.Delete([]byte(name))
		}
		return nil
	}); err != nil {
		return false, fmt.Errorf("update transaction error: %w", err)
	}

	return found, nil
}

func (db *DB) Count() (int, error) {
	var n int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModels))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %w", err)
	}

	return n, nil
}

// Touch records the last time every named model was used. Names without a stored model are skipped.
func (db *DB) Touch(_ context.Context, usage map[string]time.Time) error {
	if len(usage) == 0 {
		return nil
	}
	if err := db.sDB.DB.Batch(func(tx *bolt.Tx) error {
		models := tx.Bucket([]byte(bucketModels))
		if models == nil {
			return nil
		}
		b, err := tx.CreateBucketIfNotExists([]byte(bucketUsage))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for name, at := range usage {
			if models.Get([]byte(name)) == nil {
				continue
			}
			var v [8]byte
			binary.BigEndian.PutUint64(v[:], uint64(at.UnixNano()))
			if err := b.Put([]byte(name), v[:]); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("batch transaction error: %w", err)
	}

	return nil
}

// LastUsed returns the last recorded use of every model that has one.
func (db *DB) LastUsed(_ context.Context) (map[string]time.Time, error) {
	usage := map[string]time.Time{}
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketUsage))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if len(v) != 8 {
				return fmt.Errorf("usage of %s: malformed value", k)
			}
			usage[string(k)] = time.Unix(0, int64(binary.BigEndian.Uint64(v)))
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return usage, nil
}
