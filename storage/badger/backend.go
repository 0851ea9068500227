package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend wraps one BadgerDB instance shared by the passage and
// document repositories.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLogger routes BadgerDB's own log lines through slog.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any)   { l.logger.Error(fmt.Sprintf(msg, items...)) }
func (l *badgerLogger) Warningf(msg string, items ...any) { l.logger.Warn(fmt.Sprintf(msg, items...)) }
func (l *badgerLogger) Infof(msg string, items ...any)    { l.logger.Info(fmt.Sprintf(msg, items...)) }
func (l *badgerLogger) Debugf(msg string, items ...any)   { l.logger.Debug(fmt.Sprintf(msg, items...)) }

// OpenBackend opens the database at filePath, creating the directory
// when missing. With inMemory set, nothing touches disk; the in-memory
// form backs the test repositories.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	opts, err := openOptions(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	opts.Logger = &badgerLogger{logger: slog.Default()}
	// Passage values are mostly float32 vectors, which compress poorly.
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

func openOptions(filePath string, inMemory bool) (badger.Options, error) {
	if inMemory {
		return badger.DefaultOptions("").WithInMemory(true), nil
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filePath, 0755); err != nil {
			return badger.Options{}, err
		}
		info, err = os.Stat(filePath)
	}
	if err != nil {
		return badger.Options{}, err
	}
	if !info.IsDir() {
		return badger.Options{}, fmt.Errorf("%s is not a directory", filePath)
	}
	return badger.DefaultOptions(filePath), nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside one BadgerDB transaction. The transaction is
// discarded when fn returns an error; read-write transactions commit
// inside fn.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction implements the storage.Repository transaction
// contract over one read-write transaction.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
