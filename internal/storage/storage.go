package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Storage keys
const (
	keyAgents    = "agents"
	keyLastSaved = "last_saved"
)

// badger reports a held directory lock only through its message.
const lockHeld = "Another process is using this Badger database"

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	log *zap.Logger

	// ephemeral is set when the store fell back to memory; saves are lost.
	ephemeral bool
}

// NewStorage opens the store in the platform data directory. A store that
// cannot be opened is recovered rather than reported, see OpenOrRecover.
func NewStorage(log *zap.Logger) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenOrRecover(dbDir, log), nil
}

// OpenOrRecover opens the store in dir and never fails. A directory locked
// by another client falls back to an in-memory store. Any other open error
// moves the directory aside and starts a fresh store in its place.
func OpenOrRecover(dir string, log *zap.Logger) *Storage {
	if log == nil {
		log = zap.NewNop()
	}

	s, err := Open(dir, log)
	if err == nil {
		return s
	}

	if !strings.Contains(err.Error(), lockHeld) {
		aside := fmt.Sprintf("%s.corrupt-%d", dir, time.Now().Unix())
		log.Warn("agent store unreadable, starting empty",
			zap.String("dir", dir), zap.String("moved_to", aside), zap.Error(err))
		if rerr := os.Rename(dir, aside); rerr == nil {
			if s, err = Open(dir, log); err == nil {
				return s
			}
		} else {
			err = rerr
		}
	}

	log.Warn("agent store unavailable, agents will not be saved",
		zap.String("dir", dir), zap.Error(err))
	return openMemory(log)
}

func openMemory(log *zap.Logger) *Storage {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		// An in-memory store has no files to fail on.
		panic(fmt.Sprintf("storage: in-memory open: %v", err))
	}
	return &Storage{db: db, log: log, ephemeral: true}
}

// Open opens the store in dir
func Open(dir string, log *zap.Logger) (*Storage, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	log.Debug("storage opened", zap.String("dir", dir))
	return &Storage{db: db, log: log}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ephemeral reports whether saved agents are kept only until Close.
func (s *Storage) Ephemeral() bool {
	return s.ephemeral
}

// SaveAgents saves the ordered list of agent reference-handles
func (s *Storage) SaveAgents(hrefs []string) error {
	if hrefs == nil {
		hrefs = []string{}
	}
	if s.ephemeral {
		s.log.Warn("agent store is in memory, agent list will not persist",
			zap.Int("count", len(hrefs)))
	}
	data, err := json.Marshal(hrefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyAgents), data); err != nil {
			return err
		}
		stamp, err := time.Now().UTC().MarshalText()
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyLastSaved), stamp)
	})
}

// LoadAgents loads the agent list. A missing or malformed entry yields an
// empty list; only database failures are returned as errors.
func (s *Storage) LoadAgents() ([]string, error) {
	var hrefs []string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyAgents))
		if err == badger.ErrKeyNotFound {
			return nil // Start empty
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &hrefs); err != nil {
				s.log.Warn("discarding malformed agent list",
					zap.ByteString("value", val), zap.Error(err))
				hrefs = nil
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if hrefs == nil {
		hrefs = []string{}
	}
	return hrefs, nil
}

// LastSaved returns when the agent list was last written, or the zero time
func (s *Storage) LastSaved() (time.Time, error) {
	var t time.Time

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLastSaved))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return t.UnmarshalText(val)
		})
	})

	return t, err
}
