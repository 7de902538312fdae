// Package userdata persists per-user settings (API key, base URL, entity
// id) in a small bbolt database under the cache directory.
package userdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "user_data"

const (
	KeyAPIKey   = "api_key"
	KeyBaseURL  = "base_url"
	KeyEntityID = "entity_id"
)

var ErrStoreClosed = errors.New("user data store is closed")

// UserData is the persisted settings snapshot.
type UserData struct {
	APIKey   string
	BaseURL  string
	EntityID string
}

type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

func OpenStore(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("user data path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure user data dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	db, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open user data db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure user data bucket: %w", err)
	}
	return &Store{db: db, path: trimmed}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		value = string(raw)
		return nil
	})
	return value, err
}

func (s *Store) Set(key, value string) error {
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), []byte(value))
	})
}

// Load reads the full settings snapshot. Missing keys come back empty.
func (s *Store) Load() (UserData, error) {
	var data UserData
	err := s.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data.APIKey = string(bucket.Get([]byte(KeyAPIKey)))
		data.BaseURL = string(bucket.Get([]byte(KeyBaseURL)))
		data.EntityID = string(bucket.Get([]byte(KeyEntityID)))
		return nil
	})
	return data, err
}

// Save writes the full settings snapshot in one transaction.
func (s *Store) Save(data UserData) error {
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		for key, value := range map[string]string{
			KeyAPIKey:   data.APIKey,
			KeyBaseURL:  data.BaseURL,
			KeyEntityID: data.EntityID,
		} {
			if err := bucket.Put([]byte(key), []byte(value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}
