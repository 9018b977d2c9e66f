package store

import (
	"bytes"
	"encoding/binary"
	"errors"

	bolt "go.etcd.io/bbolt"
)

const bucketEval = "eval"

// ErrNoMatchingEval is returned when an Eval query has no result.
var ErrNoMatchingEval = errors.New("no matching evaluation record")

func init() {
	initDB["initialize evaluation history table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEval))
		return err
	}
}

// NextEvalSeq returns the next sequence number of the evaluation history.
func (s *dbStore) NextEvalSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEval))
		seq = b.Sequence() + 1
		return nil
	})
	return int(seq), err
}

// AddEval adds a new record to the evaluation history.
func (s *dbStore) AddEval(form, result string) (int, error) {
	var (
		seq uint64
		err error
	)
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEval))
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), marshalRecord(form, result))
	})
	return int(seq), err
}

// Eval queries the evaluation record with the specified sequence number.
func (s *dbStore) Eval(seq int) (EvalRecord, error) {
	var rec EvalRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEval))
		v := b.Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingEval
		}
		rec = unmarshalRecord(seq, v)
		return nil
	})
	return rec, err
}

// EvalsWithSeq returns all records with sequence numbers within [from, upto).
func (s *dbStore) EvalsWithSeq(from, upto int) ([]EvalRecord, error) {
	var recs []EvalRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEval))
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			recs = append(recs, unmarshalRecord(int(unmarshalSeq(k)), v))
		}
		return nil
	})
	return recs, err
}

// DelEval deletes an evaluation record with the given sequence number.
func (s *dbStore) DelEval(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEval))
		return b.Delete(marshalSeq(uint64(seq)))
	})
}

func marshalSeq(seq uint64) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, seq)
	return buf.Bytes()
}

func unmarshalSeq(key []byte) uint64 {
	var seq uint64
	binary.Read(bytes.NewReader(key), binary.BigEndian, &seq)
	return seq
}

// A record value is the form, a NUL byte, and the result. Forms are source
// text and never contain NUL.
func marshalRecord(form, result string) []byte {
	v := make([]byte, 0, len(form)+1+len(result))
	v = append(v, form...)
	v = append(v, 0)
	v = append(v, result...)
	return v
}

func unmarshalRecord(seq int, v []byte) EvalRecord {
	i := bytes.IndexByte(v, 0)
	if i == -1 {
		return EvalRecord{Seq: seq, Form: string(v)}
	}
	return EvalRecord{Seq: seq, Form: string(v[:i]), Result: string(v[i+1:])}
}
