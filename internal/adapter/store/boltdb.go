package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"corpus/internal/domain"
)

var (
	bucketDocuments = []byte("documents")
	bucketMeta      = []byte("meta")
	keySavedAt      = []byte("saved_at")
	keyDocCount     = []byte("doc_count")
)

// BoltStore keeps a corpus snapshot in a bbolt file. Documents are stored as
// JSON under their big-endian identifier so that cursor order is id order.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocuments, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// Save replaces the stored snapshot with docs in a single transaction.
func (s *BoltStore) Save(docs []domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketDocuments); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(bucketDocuments)
		if err != nil {
			return err
		}

		for _, r := range toRecords(docs) {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := b.Put(itob(r.ID), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keySavedAt, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
			return err
		}
		count, _ := json.Marshal(len(docs))
		return meta.Put(keyDocCount, count)
	})
}

func (s *BoltStore) Load() ([]domain.Document, error) {
	var records []record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding document %d: %w", binary.BigEndian.Uint64(k), err)
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

// Get reads a single document without loading the snapshot.
func (s *BoltStore) Get(id int) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get(itob(id))
		if data == nil {
			return fmt.Errorf("%w: %d", domain.ErrDocumentNotFound, id)
		}
		var r record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		var err error
		doc, err = r.document()
		return err
	})
	return doc, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
