package repositories

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix       = "user:"
	UsernameKeyPrefix   = "username:"
	GroupKeyPrefix      = "group:"
	GroupSlugKeyPrefix  = "groupslug:"
	PostKeyPrefix       = "post:"
	CommentKeyPrefix    = "comment:"
	CommentIDKeyPrefix  = "commentid:"
	CommentByKeyPrefix  = "commentby:"
	FollowKeyPrefix     = "follow:"
	FollowerKeyPrefix   = "follower:"
	FeedAllPrefix       = "feed:all:"
	FeedGroupKeyPrefix  = "feed:group:"
	FeedAuthorKeyPrefix = "feed:author:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	GroupSeqKey   = "seq:group"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

// idWidth keeps numeric key segments fixed width so byte order is numeric order.
const idWidth = 10

// maxTxnRetries bounds how often a write transaction is replayed after a conflict.
const maxTxnRetries = 8

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return int(id), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}

func padID(id int) string {
	return fmt.Sprintf("%0*d", idWidth, id)
}

func entityKey(prefix string, id int) []byte {
	return []byte(prefix + padID(id))
}

// feedSortKey orders newest first, then by ascending id for equal timestamps.
func feedSortKey(pubDate time.Time, id int) string {
	inv := uint64(math.MaxInt64 - pubDate.UnixNano())
	return fmt.Sprintf("%016x%s", inv, padID(id))
}

// idFromKeySuffix reads the fixed-width id at the end of an index key.
func idFromKeySuffix(key []byte) (int, error) {
	if len(key) < idWidth {
		return 0, fmt.Errorf("malformed index key %q", key)
	}
	return strconv.Atoi(string(key[len(key)-idWidth:]))
}

// getEntity loads and decodes the value at key, mapping a miss to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// getIndexedID reads an id stored as the value of a lookup key.
func getIndexedID(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		n, err := strconv.Atoi(string(val))
		id = n
		return err
	})
	return id, err
}

// collectKeys returns copies of every key under prefix.
func collectKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// scanKeys skips the first skip keys under prefix and returns copies of at
// most limit keys after them.
func scanKeys(txn *badger.Txn, prefix []byte, skip, limit int) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix) && len(keys) < limit; it.Next() {
		if skip > 0 {
			skip--
			continue
		}
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

func countKeys(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n
}

// update runs fn in a read-write transaction, replaying it when badger
// reports a conflict with a concurrent writer.
func update(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func view(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}
