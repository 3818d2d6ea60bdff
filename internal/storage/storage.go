// Package storage persists games and server counters in BadgerDB.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessmatch/internal/game"
)

// Storage keys
const (
	keyGamePrefix = "game/"
	keyGameSeq    = "seq/game"
	keyStats      = "stats"

	seqBandwidth = 64
)

var ErrGameNotFound = errors.New("game not found")

// Stats counts what the server has done over the lifetime of the store.
type Stats struct {
	GamesCreated int `json:"games_created"`
	Moves        int `json:"moves"`
	Captures     int `json:"captures"`
	Rejections   int `json:"rejections"`
}

// Outcome is one operation to fold into Stats.
type Outcome int

const (
	OutcomeGameCreated Outcome = iota
	OutcomeMove
	OutcomeCapture
	OutcomeRejected
)

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (creating if needed) the store under dir. An empty dir uses the
// platform data directory.
func Open(dir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	seq, err := db.GetSequence([]byte(keyGameSeq), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db, seq: seq}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.seq != nil {
		if err := s.seq.Release(); err != nil {
			s.db.Close()
			return err
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NextGameID returns a fresh game identifier.
func (s *Storage) NextGameID() (string, error) {
	n, err := s.seq.Next()
	if err != nil {
		return "", fmt.Errorf("storage: next game id: %w", err)
	}
	return strconv.FormatUint(n+1, 10), nil
}

func gameKey(id string) []byte {
	return []byte(keyGamePrefix + id)
}

// SaveGame writes the game's snapshot, replacing any previous version.
func (s *Storage) SaveGame(g *game.Game) error {
	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(g.ID()), data)
	})
}

// LoadGame reads a game back. opts are applied on top of the stored options.
func (s *Storage) LoadGame(id string, opts ...game.Option) (*game.Game, error) {
	var snap game.Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return nil, err
	}

	return game.Restore(snap, opts...)
}

// DeleteGame removes a game. Deleting an unknown game is an error.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(id)); err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		} else if err != nil {
			return err
		}
		return txn.Delete(gameKey(id))
	})
}

// ListGames returns every stored game ID in key order.
func (s *Storage) ListGames() ([]string, error) {
	ids := []string{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyGamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, keyGamePrefix))
		}
		return nil
	})

	return ids, err
}

// LoadStats loads the counters, or zeroes if none were recorded yet.
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordOutcome bumps the counter for o. The read and the write share one
// transaction so concurrent callers do not lose updates; badger reports a
// conflict instead, which is retried.
func (s *Storage) RecordOutcome(o Outcome) error {
	for {
		err := s.db.Update(func(txn *badger.Txn) error {
			stats := &Stats{}
			item, err := txn.Get([]byte(keyStats))
			switch {
			case err == badger.ErrKeyNotFound:
			case err != nil:
				return err
			default:
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, stats)
				}); err != nil {
					return err
				}
			}

			switch o {
			case OutcomeGameCreated:
				stats.GamesCreated++
			case OutcomeMove:
				stats.Moves++
			case OutcomeCapture:
				stats.Captures++
			case OutcomeRejected:
				stats.Rejections++
			}

			data, err := json.Marshal(stats)
			if err != nil {
				return err
			}
			return txn.Set([]byte(keyStats), data)
		})
		if err != badger.ErrConflict {
			return err
		}
	}
}
