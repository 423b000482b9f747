package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"
)

// ArtifactName is the index artifact filename inside a corpus directory.
const ArtifactName = "index.db"

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")

	keyDimension = []byte("dimension")
)

type storedVector struct {
	Vector []float32 `json:"v"`
}

// WriteFile persists the index to a bbolt file at path, replacing any
// previous contents. Keys in the vectors bucket are big-endian positions,
// so iteration order is insertion order.
func WriteFile(path string, idx *Flat) error {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketVectors) != nil {
			if err := tx.DeleteBucket(bucketVectors); err != nil {
				return err
			}
		}
		vb, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := mb.Put(keyDimension, []byte(strconv.Itoa(idx.Dimension()))); err != nil {
			return err
		}

		for i, v := range idx.vectors {
			data, err := json.Marshal(storedVector{Vector: v})
			if err != nil {
				return err
			}
			if err := vb.Put(positionKey(i), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadFile loads an index artifact. Any structural defect (missing
// buckets, undecodable entries, gaps in the position sequence, dimension
// mismatch) is an error: a partially loaded index would silently return
// wrong neighbors.
func ReadFile(path string) (*Flat, error) {
	db, err := bbolt.Open(path, 0o444, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	var idx *Flat
	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return fmt.Errorf("index file has no meta bucket")
		}
		dimRaw := mb.Get(keyDimension)
		if dimRaw == nil {
			return fmt.Errorf("index file has no dimension record")
		}
		dimension, err := strconv.Atoi(string(dimRaw))
		if err != nil {
			return fmt.Errorf("index dimension is not a number: %w", err)
		}

		idx, err = NewFlat(dimension)
		if err != nil {
			return err
		}

		vb := tx.Bucket(bucketVectors)
		if vb == nil {
			return fmt.Errorf("index file has no vectors bucket")
		}

		next := 0
		err = vb.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("unexpected vector key length %d", len(k))
			}
			pos := int(binary.BigEndian.Uint64(k))
			if pos != next {
				return fmt.Errorf("vector positions are not contiguous: expected %d, got %d", next, pos)
			}
			next++

			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("failed to decode vector %d: %w", pos, err)
			}
			return idx.Add(stored.Vector)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func positionKey(i int) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(i))
	return key[:]
}
