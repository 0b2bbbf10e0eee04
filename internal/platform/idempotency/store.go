package idempotency

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "idempotency_keys"

// inFlightTimeout frees a claim whose request never finished, e.g. after a crash.
const inFlightTimeout = 2 * time.Minute

// Record is a stored response for one idempotency key.
type Record struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
	InFlight    bool      `json:"in_flight,omitempty"`
}

// Store keeps recorded responses in a single BoltDB file.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
}

// Open opens (or creates) the store at path. Records older than ttl are ignored; zero keeps them forever.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open idempotency store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create idempotency bucket: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record for key, or nil when none is stored or it has expired.
func (s *Store) Get(key string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if v == nil {
			return nil
		}
		var r Record
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rec != nil && !s.live(*rec) {
		return nil, nil
	}
	return rec, nil
}

// Claim atomically reserves key for a request about to run. When a live record already
// exists (finished or still in flight) it is returned and claimed is false.
func (s *Store) Claim(key string) (existing *Record, claimed bool, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		if v := b.Get([]byte(key)); v != nil {
			var r Record
			if err := json.Unmarshal(v, &r); err == nil && s.live(r) {
				existing = &r
				return nil
			}
		}

		data, err := json.Marshal(Record{InFlight: true, StoredAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		claimed = true
		return b.Put([]byte(key), data)
	})
	return existing, claimed, err
}

// Complete replaces the in-flight marker for key with the finished response.
func (s *Store) Complete(key string, rec Record) error {
	rec.InFlight = false
	if rec.StoredAt.IsZero() {
		rec.StoredAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// Release drops the claim on key so the request can be retried.
func (s *Store) Release(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}

func (s *Store) live(r Record) bool {
	age := time.Since(r.StoredAt)
	if r.InFlight {
		return age <= inFlightTimeout
	}
	return s.ttl == 0 || age <= s.ttl
}
