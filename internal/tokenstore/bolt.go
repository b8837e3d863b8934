package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "session"

var (
	keyAccess  = []byte("access")
	keyRefresh = []byte("refresh")
	keyUser    = []byte("user")
)

// BoltStore keeps the session in a bbolt file.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens (or creates) the session database at path with mode 0600.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db: %w", err)
	}

	return &BoltStore{db: db, bucket: []byte(bucketName)}, nil
}

// Save writes all three entries in one transaction.
func (s *BoltStore) Save(tokens Tokens, user User) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if err := b.Put(keyAccess, []byte(tokens.Access)); err != nil {
			return err
		}
		if err := b.Put(keyRefresh, []byte(tokens.Refresh)); err != nil {
			return err
		}
		return b.Put(keyUser, payload)
	})
}

// Load reads the session. A corrupt user entry is treated as empty.
func (s *BoltStore) Load() (Session, bool, error) {
	if s == nil || s.db == nil {
		return Session{}, false, ErrClosed
	}
	var sess Session
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		sess.Access = string(b.Get(keyAccess))
		sess.Refresh = string(b.Get(keyRefresh))
		if raw := b.Get(keyUser); len(raw) > 0 {
			if err := json.Unmarshal(raw, &sess.User); err != nil {
				sess.User = User{}
			}
		}
		return nil
	})
	if err != nil {
		return Session{}, false, err
	}
	return sess, sess.Access != "", nil
}

// SetAccessToken replaces the access token, keeping the rest.
func (s *BoltStore) SetAccessToken(access string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(keyAccess, []byte(access))
	})
}

// Clear deletes all three entries in one transaction.
func (s *BoltStore) Clear() error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, k := range [][]byte{keyAccess, keyRefresh, keyUser} {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
