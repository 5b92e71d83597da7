package bolt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/history"
)

var (
	bucketRuns   = []byte("runs")
	bucketLatest = []byte("latest")
)

// fixed part of an encoded record: at(8) rtt(8) passed(1) kind length(1)
const recordHeaderSize = 18

// boltStore implements history.Store using bbolt.
// runs is keyed by name, 0x00, big-endian unix nanos; latest is keyed by name.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (history.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketLatest); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Append(rec domain.RunRecord) error {
	val, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRuns).Put(runKey(rec.Case, rec.At), val); err != nil {
			return err
		}
		return tx.Bucket(bucketLatest).Put([]byte(rec.Case), val)
	})
}

func (s *boltStore) Latest(name string) (domain.RunRecord, bool, error) {
	var (
		rec domain.RunRecord
		ok  bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLatest).Get([]byte(name))
		if v == nil {
			return nil
		}
		var err error
		rec, err = decodeRecord(name, v)
		ok = err == nil
		return err
	})
	return rec, ok, err
}

// Runs walks the run log for name with a prefix scan, oldest first.
func (s *boltStore) Runs(name string) ([]domain.RunRecord, error) {
	var out []domain.RunRecord
	prefix := append([]byte(name), 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			rec, err := decodeRecord(name, v)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *boltStore) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLatest).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func (s *boltStore) Stats() history.StoreStats {
	st := history.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketLatest); b != nil {
			st.Cases = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketRuns); b != nil {
			st.Runs = uint64(b.Stats().KeyN)
		}
		return nil
	})
	return st
}

func runKey(name string, at time.Time) []byte {
	key := make([]byte, 0, len(name)+9)
	key = append(key, name...)
	key = append(key, 0)
	return binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
}

func encodeRecord(rec domain.RunRecord) ([]byte, error) {
	if len(rec.Kind) > 255 {
		return nil, fmt.Errorf("failure kind too long: %d bytes", len(rec.Kind))
	}
	buf := make([]byte, 0, recordHeaderSize+len(rec.Kind))
	buf = binary.BigEndian.AppendUint64(buf, uint64(rec.At.UnixNano()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(rec.RTT))
	if rec.Passed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, byte(len(rec.Kind)))
	return append(buf, rec.Kind...), nil
}

func decodeRecord(name string, v []byte) (domain.RunRecord, error) {
	if len(v) < recordHeaderSize || len(v) != recordHeaderSize+int(v[17]) {
		return domain.RunRecord{}, fmt.Errorf("corrupt history record for %s: %d bytes", name, len(v))
	}
	return domain.RunRecord{
		Case:   name,
		At:     time.Unix(0, int64(binary.BigEndian.Uint64(v[0:8]))).UTC(),
		RTT:    time.Duration(binary.BigEndian.Uint64(v[8:16])),
		Passed: v[16] == 1,
		Kind:   domain.FailureKind(v[recordHeaderSize:]),
	}, nil
}
