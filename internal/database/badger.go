package database

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens (creating if needed) the Badger directory used by the
// file-backed session store. Caller should call db.Close().
func OpenBadger(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("badger dir: %w", err)
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return db, nil
}
