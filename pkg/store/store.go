// Package store abstracts the persistent evaluation history kept by wrepl.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var initDB = map[string]func(*bolt.Tx) error{}

// Store is an interface satisfied by the evaluation history storage.
type Store interface {
	// NextEvalSeq returns the sequence number that the next AddEval will use.
	NextEvalSeq() (int, error)
	// AddEval adds an evaluation record, returning its sequence number.
	AddEval(form, result string) (int, error)
	// Eval returns the evaluation record with the given sequence number.
	Eval(seq int) (EvalRecord, error)
	// EvalsWithSeq returns all records with sequence numbers in [from, upto).
	EvalsWithSeq(from, upto int) ([]EvalRecord, error)
	// DelEval deletes the record with the given sequence number.
	DelEval(seq int) error
	// Close closes the store and the underlying database.
	Close() error
}

// EvalRecord is one entry in the evaluation history.
type EvalRecord struct {
	Seq    int
	Form   string
	Result string
}

type dbStore struct {
	db *bolt.DB
}

// NewStore creates a Store backed by the bolt database at the given path,
// creating the file if it does not exist.
func NewStore(dbPath string) (Store, error) {
	db, err := bolt.Open(dbPath, 0644,
		&bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a Store from an existing bolt database.
func NewStoreFromDB(db *bolt.DB) (Store, error) {
	st := &dbStore{db}
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			err := fn(tx)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (s *dbStore) Close() error {
	return s.db.Close()
}
