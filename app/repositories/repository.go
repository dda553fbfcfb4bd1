package repositories

import (
	"fmt"
	"io"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Repository owns the badger database behind the Badger repositories.
type Repository struct {
	db    *badger.DB
	mutex sync.RWMutex
}

// NewRepository opens the badger database at path. An empty path opens an
// in-memory database, which is what tests use.
func NewRepository(path string) (*Repository, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return &Repository{db: db}, nil
}

// Store returns the Badger implementation of every repository.
func (r *Repository) Store() *Store {
	return &Store{
		Users:    NewBadgerUserRepository(r.db),
		Groups:   NewBadgerGroupRepository(r.db),
		Posts:    NewBadgerPostRepository(r.db),
		Comments: NewBadgerCommentRepository(r.db),
		Follows:  NewBadgerFollowRepository(r.db),
	}
}

// DB exposes the underlying handle for maintenance commands.
func (r *Repository) DB() *badger.DB {
	return r.db
}

// Backup writes a full backup of the database to w.
func (r *Repository) Backup(w io.Writer) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, err := r.db.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup.
func (r *Repository) Restore(rd io.Reader) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.db.Load(rd, 256)
}

func (r *Repository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.db.Close()
}
