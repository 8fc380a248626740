// exposes a Store interface for completion-record persistence
package db

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/miqat-dev/miqat/internal/model"
)

type Store interface {
	// completion functions
	UpsertCompletion(ctx context.Context, prayerID model.PrayerID, day string, completed bool) (model.CompletionRecord, error)
	DeleteCompletion(ctx context.Context, prayerID model.PrayerID, day string) error
	GetCompletion(ctx context.Context, prayerID model.PrayerID, day string) (*model.CompletionRecord, error)
	ListCompletions(ctx context.Context, prayerID model.PrayerID, since string) ([]model.CompletionRecord, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
