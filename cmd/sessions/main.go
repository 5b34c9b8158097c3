// Command sessions inspects and maintains the file-backed session store.
//
//	sessions count          number of live sessions
//	sessions gc             reclaim value-log space
//	sessions revoke <id>    delete one session
//
// The API server must be stopped first; Badger holds an exclusive lock on
// the directory.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ytdash/ytdash/backend/go-services/internal/config"
	"github.com/ytdash/ytdash/backend/go-services/internal/database"
	"github.com/ytdash/ytdash/backend/go-services/internal/sessions"
	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := run(context.Background(), os.Args[1:]); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sessions count|gc|revoke <id>")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Session.Store != config.StoreFile {
		return fmt.Errorf("SESSION_STORE=%s; this tool only handles the file store", cfg.Session.Store)
	}
	db, err := database.OpenBadger(cfg.Session.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return exec(ctx, sessions.NewBadgerRepository(db), args)
}

func exec(ctx context.Context, repo *sessions.BadgerRepository, args []string) error {
	switch args[0] {
	case "count":
		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
	case "gc":
		if err := repo.RunGC(); err != nil {
			return err
		}
		logger.Infof("value log gc done")
	case "revoke":
		if len(args) < 2 {
			return fmt.Errorf("usage: sessions revoke <id>")
		}
		if err := repo.Delete(ctx, args[1]); err != nil {
			return err
		}
		logger.Infof("session %s revoked", args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
