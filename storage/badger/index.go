package badger

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/storage"
	"github.com/dgraph-io/badger/v4"
)

// KnowledgeIndex implements storage.KnowledgeIndex for BadgerDB.
//
// Vectors are L2-normalized on write and on query, so the dot product of
// a stored vector and a query vector equals their cosine similarity.
type KnowledgeIndex struct {
	backend *Backend
}

var _ storage.KnowledgeIndex = (*KnowledgeIndex)(nil)

// NewKnowledgeIndex creates a new KnowledgeIndex over the given backend.
func NewKnowledgeIndex(backend *Backend) (storage.KnowledgeIndex, error) {
	return &KnowledgeIndex{
		backend: backend,
	}, nil
}

// Close releases resources. KnowledgeIndex has no resources to release.
func (r *KnowledgeIndex) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *KnowledgeIndex) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// HasSource reports whether any records for the source have been stored.
func (r *KnowledgeIndex) HasSource(ctx context.Context, sourceID string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeSourceKey(sourceID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// InsertRecords stores one or more embedding records atomically.
func (r *KnowledgeIndex) InsertRecords(ctx context.Context, records ...*core.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx)
		if err != nil {
			return err
		}

		sourceCounts := make(map[string]uint64)
		for _, record := range records {
			if err := core.ValidateRecord(record); err != nil {
				return err
			}

			// First vector ever written fixes the index dimension
			if dim == 0 {
				dim = len(record.Vector)
				if err := tx.Set([]byte(knowledgeDimKey), storage.MarshalID(core.ID(dim))); err != nil {
					return fmt.Errorf("%w: %w", storage.ErrIndexWrite, err)
				}
			}
			if len(record.Vector) != dim {
				return storage.ErrDimensionMismatch
			}

			// Use content-based ID if not set
			if record.Id == 0 {
				record.Id = core.RecordID(record.SourceID, record.Seq)
			}
			record.Vector = normalizeVector(record.Vector)

			key := makeRecordKey(record.Id)
			value := storage.MarshalEmbeddingRecord(record)
			if err := tx.Set(key, value); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrIndexWrite, err)
			}

			sourceCounts[record.SourceID]++
		}

		// Mark sources as indexed, with how many records each contributed
		for sourceID, count := range sourceCounts {
			if err := tx.Set(makeSourceKey(sourceID), storage.MarshalID(core.ID(count))); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrIndexWrite, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrIndexWrite, err)
		}
		return nil
	}, true)
}

// Search finds records similar to the given vector.
func (r *KnowledgeIndex) Search(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	query := normalizeVector(vector)

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx)
		if err != nil {
			return err
		}
		if dim == 0 {
			// Empty index
			return nil
		}
		if len(query) != dim {
			return storage.ErrDimensionMismatch
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(knowledgeRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var record *core.EmbeddingRecord
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			// Stored vectors are normalized, so dot product is cosine similarity
			similarity := dotProduct(query, record.Vector)

			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Record: record,
					Score:  similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of embedding records in the index.
func (r *KnowledgeIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(knowledgeRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Reset removes all records, source markers, and the dimension marker.
func (r *KnowledgeIndex) Reset(ctx context.Context) error {
	return r.backend.DropPrefix(
		[]byte(knowledgeRecordPrefix+":"),
		[]byte(knowledgeSourcePrefix+":"),
		[]byte(knowledgeDimKey),
	)
}

// readDimension reads the index dimension marker.
// Returns 0 if no vector has been written yet.
func readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(knowledgeDimKey))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	var dim core.ID
	err = item.Value(func(val []byte) error {
		var err error
		dim, err = storage.UnmarshalID(val)
		return err
	})
	return int(dim), err
}

// normalizeVector returns a unit-length copy of the vector.
// A zero vector is returned unchanged.
func normalizeVector(vector []float32) []float32 {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	out := make([]float32, len(vector))
	if norm == 0 {
		copy(out, vector)
		return out
	}
	scale := float32(1.0 / math.Sqrt(norm))
	for i, v := range vector {
		out[i] = v * scale
	}
	return out
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
