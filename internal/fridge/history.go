package fridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const historyBucketName = "history"

// Actions recorded in the history log
const (
	ActionScan   = "scan"
	ActionCook   = "cook"
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionClear  = "clear"
)

// HistoryEntry records one fridge-changing action for a user
type HistoryEntry struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryDB defines the interface for the activity log
type HistoryDB interface {
	// SaveEntry appends an entry to the log
	SaveEntry(entry *HistoryEntry) error

	// ListEntries returns a user's entries, newest first
	ListEntries(user string) ([]*HistoryEntry, error)

	// Close closes the database connection
	Close() error
}

// BoltHistory implements HistoryDB using BoltDB
type BoltHistory struct {
	db *bbolt.DB
}

// NewBoltHistory creates a new BoltHistory instance
func NewBoltHistory(path string) (*BoltHistory, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltHistory{db: db}, nil
}

// SaveEntry appends an entry to the log
func (b *BoltHistory) SaveEntry(entry *HistoryEntry) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucketName))
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling history entry: %w", err)
		}
		return bucket.Put([]byte(entry.ID), data)
	})
}

// ListEntries returns a user's entries, newest first
func (b *BoltHistory) ListEntries(user string) ([]*HistoryEntry, error) {
	entries := make([]*HistoryEntry, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var entry HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshaling history entry: %w", err)
			}
			if entry.User == user {
				entries = append(entries, &entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Close closes the database connection
func (b *BoltHistory) Close() error {
	return b.db.Close()
}
