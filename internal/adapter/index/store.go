package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketVectors  = []byte("vectors")
	bucketManifest = []byte("manifest")
	keyManifest    = []byte("current")
)

// Manifest records what the persisted vectors were built from. A mismatch on
// either field invalidates the cache and forces a rebuild.
type Manifest struct {
	Model       string `json:"model"`
	Fingerprint string `json:"fingerprint"`
	Dimension   int    `json:"dimension"`
	Count       int    `json:"count"`
}

// Store persists a VectorIndex in a BoltDB file so the embedding batch only
// runs when the catalogue or encoder model changes.
type Store struct {
	db *bbolt.DB
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

// OpenStore opens (creating if needed) the index database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketManifest)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted index if its manifest matches the expected model
// and fingerprint. Returns (nil, nil) on a clean miss; corruption is reported
// as an error so the caller can log and rebuild.
func (s *Store) Load(model, fingerprint string) (*VectorIndex, error) {
	var manifest Manifest
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketManifest)
		if b == nil {
			return nil
		}
		data := b.Get(keyManifest)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("corrupt manifest: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found || manifest.Model != model || manifest.Fingerprint != fingerprint {
		return nil, nil
	}

	vectors := make([][]float32, manifest.Count)
	err = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return fmt.Errorf("vectors bucket missing")
		}
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("corrupt vector key")
			}
			pos := int(binary.BigEndian.Uint64(k))
			if pos >= manifest.Count {
				return fmt.Errorf("vector position %d outside manifest count %d", pos, manifest.Count)
			}
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt vector at position %d: %w", pos, err)
			}
			if len(stored.Vector) != manifest.Dimension {
				return fmt.Errorf("vector dimension mismatch at position %d: expected %d, got %d", pos, manifest.Dimension, len(stored.Vector))
			}
			vectors[pos] = stored.Vector
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for pos, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("missing vector at position %d", pos)
		}
	}

	return New(vectors, manifest.Dimension, manifest.Model, manifest.Fingerprint), nil
}

// Save replaces the persisted vectors and manifest with the given index.
// The whole replacement runs in one transaction, so readers of the file see
// either the previous index or the new one.
func (s *Store) Save(idx *VectorIndex) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}

		for pos, vector := range idx.Vectors() {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(pos))

			data, err := json.Marshal(storedVector{Vector: vector})
			if err != nil {
				return err
			}
			if err := b.Put(key, data); err != nil {
				return err
			}
		}

		mb := tx.Bucket(bucketManifest)
		if mb == nil {
			mb, err = tx.CreateBucket(bucketManifest)
			if err != nil {
				return err
			}
		}
		manifest, err := json.Marshal(Manifest{
			Model:       idx.Model(),
			Fingerprint: idx.Fingerprint(),
			Dimension:   idx.Dimension(),
			Count:       idx.Size(),
		})
		if err != nil {
			return err
		}
		return mb.Put(keyManifest, manifest)
	})
}
