package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
)

const badgerKeyPrefix = "session:"

// BadgerRepository is the default file-backed session store. Each record is
// written with a Badger TTL equal to the time left until ExpiresAt, so
// expired sessions disappear from reads without a sweeper.
type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func (r *BadgerRepository) put(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+s.ID), data).WithTTL(ttl)
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		return nil
	})
}

func (r *BadgerRepository) Create(ctx context.Context, s *Session) error {
	return r.put(s)
}

func (r *BadgerRepository) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *BadgerRepository) Touch(ctx context.Context, s *Session) error {
	return r.put(s)
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(badgerKeyPrefix + id))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// Count returns the number of live (unexpired) sessions.
func (r *BadgerRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if it.Item().IsDeletedOrExpired() {
				continue
			}
			count++
		}
		return nil
	})
	return count, err
}

// RunGC reclaims value-log space left behind by expired and deleted sessions.
// badger.ErrNoRewrite means there was nothing worth rewriting.
func (r *BadgerRepository) RunGC() error {
	err := r.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// StartGC runs RunGC every interval until ctx is canceled.
func (r *BadgerRepository) StartGC(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.RunGC(); err != nil {
					logger.Warnf("session store gc: %v", err)
				}
			}
		}
	}()
}
