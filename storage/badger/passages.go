package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/storage"
)

// PassageRepository implements storage.PassageRepository for BadgerDB.
type PassageRepository struct {
	backend *Backend
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// NewPassageRepository creates a new PassageRepository.
func NewPassageRepository(backend *Backend) (*PassageRepository, error) {
	return &PassageRepository{backend: backend}, nil
}

// Close releases repository resources. The backend stays open; it may
// be shared with other repositories.
func (r *PassageRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *PassageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutPassages stores passages and maintains the per-document index.
func (r *PassageRepository) PutPassages(ctx context.Context, passages ...*core.Passage) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, passage := range passages {
			if err := core.ValidatePassage(passage); err != nil {
				return err
			}

			key := makePassageKey(passage.Id)
			if err := tx.Set(key, storage.MarshalPassage(passage)); err != nil {
				return err
			}

			docKey := makePassageDocKey(passage.DocID, passage.Id)
			if err := tx.Set(docKey, storage.MarshalID(passage.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPassage retrieves a single passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPassages retrieves multiple passages, skipping missing IDs.
func (r *PassageRepository) GetPassages(ctx context.Context, ids ...core.ID) ([]*core.Passage, error) {
	var result []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			passage, err := readPassage(tx, makePassageKey(id))
			if err != nil {
				return err
			}
			if passage != nil {
				result = append(result, passage)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetPassagesByDoc retrieves every stored passage of one document.
func (r *PassageRepository) GetPassagesByDoc(ctx context.Context, docID string) ([]*core.Passage, error) {
	var results []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPassageDocKey(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			passage, err := readPassage(tx, makePassageKey(id))
			if err != nil {
				return err
			}
			if passage != nil {
				results = append(results, passage)
			}
		}
		return nil
	}, false)
	return results, err
}

// AllPassages retrieves every stored passage.
func (r *PassageRepository) AllPassages(ctx context.Context) ([]*core.Passage, error) {
	var results []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(passageRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var passage *core.Passage
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				passage, err = storage.UnmarshalPassage(val)
				return err
			}); err != nil {
				return err
			}
			if passage != nil {
				results = append(results, passage)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeletePassagesByDoc removes a document's passages and index entries.
func (r *PassageRepository) DeletePassagesByDoc(ctx context.Context, docID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect first: deleting while iterating invalidates the
		// iterator's view of the prefix.
		var ids []core.ID
		var docKeys [][]byte

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPassageDocKey(docID)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, id)
			docKeys = append(docKeys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for i, id := range ids {
			if err := tx.Delete(makePassageKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(docKeys[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readPassage reads a passage from the transaction, nil when missing.
func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		passage, unmarshalErr = storage.UnmarshalPassage(val)
		return unmarshalErr
	})
	return passage, err
}
