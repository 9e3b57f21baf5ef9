package state

import (
	"errors"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"stablestake/storage"
)

// Store is a journaled key/value overlay on top of a storage.Database.
// Writes stay in memory until Commit flushes them in a single batch; any
// write since a Snapshot can be undone with RevertToSnapshot.
type Store struct {
	mu      sync.RWMutex
	db      storage.Database
	dirty   map[string]overlayValue
	journal []journalEntry
}

type overlayValue struct {
	data    []byte
	deleted bool
}

type journalEntry struct {
	key     string
	prev    overlayValue
	hadPrev bool
}

// NewStore wraps db. The store does not take ownership of db.
func NewStore(db storage.Database) *Store {
	return &Store{db: db, dirty: make(map[string]overlayValue)}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func (s *Store) read(key []byte) ([]byte, error) {
	hashed := kvKey(key)
	s.mu.RLock()
	entry, ok := s.dirty[string(hashed)]
	s.mu.RUnlock()
	if ok {
		if entry.deleted {
			return nil, nil
		}
		return entry.data, nil
	}
	data, err := s.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (s *Store) write(key []byte, value overlayValue) {
	hashed := string(kvKey(key))
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.dirty[hashed]
	s.journal = append(s.journal, journalEntry{key: hashed, prev: prev, hadPrev: had})
	s.dirty[hashed] = value
}

// KVPut RLP-encodes value under key.
func (s *Store) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	s.write(key, overlayValue{data: encoded})
	return nil
}

// KVGet decodes the value stored under key into out. The boolean reports
// whether the key existed.
func (s *Store) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := s.read(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes key.
func (s *Store) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	s.write(key, overlayValue{deleted: true})
	return nil
}

// Snapshot returns an identifier for the current journal position.
func (s *Store) Snapshot() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journal)
}

// RevertToSnapshot undoes every write made after id was taken.
func (s *Store) RevertToSnapshot(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 {
		id = 0
	}
	for i := len(s.journal) - 1; i >= id; i-- {
		entry := s.journal[i]
		if entry.hadPrev {
			s.dirty[entry.key] = entry.prev
		} else {
			delete(s.dirty, entry.key)
		}
	}
	if id < len(s.journal) {
		s.journal = s.journal[:id]
	}
}

// Commit flushes pending writes to the database and clears the journal. On
// failure the pending writes are left in place.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dirty) == 0 {
		s.journal = nil
		return nil
	}
	batch := storage.NewBatch()
	for key, value := range s.dirty {
		if value.deleted {
			batch.Delete([]byte(key))
			continue
		}
		batch.Put([]byte(key), value.data)
	}
	if err := s.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	s.dirty = make(map[string]overlayValue)
	s.journal = nil
	return nil
}
