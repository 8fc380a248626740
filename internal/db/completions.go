package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/errs"
	"github.com/miqat-dev/miqat/internal/model"
)

func (s *pgStore) UpsertCompletion(ctx context.Context, prayerID model.PrayerID, day string, completed bool) (model.CompletionRecord, error) {
	var rec model.CompletionRecord
	const q = `
	INSERT INTO completions (id, prayer_id, day, completed, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	ON CONFLICT (prayer_id, day)
	DO UPDATE SET completed = EXCLUDED.completed, updated_at = now()
	RETURNING id, prayer_id, day, completed, created_at, updated_at;`
	if err := s.db.GetContext(ctx, &rec, q, uuid.NewString(), prayerID, day, completed); err != nil {
		log.Error().Err(err).Str("prayer", string(prayerID)).Str("day", day).Msg("UpsertCompletion failed")
		return model.CompletionRecord{}, errs.Persistence("upsert completion", day, err)
	}
	return rec, nil
}

func (s *pgStore) DeleteCompletion(ctx context.Context, prayerID model.PrayerID, day string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM completions WHERE prayer_id = $1 AND day = $2;`, prayerID, day)
	if err != nil {
		log.Error().Err(err).Str("prayer", string(prayerID)).Str("day", day).Msg("DeleteCompletion failed")
		return errs.Persistence("delete completion", day, err)
	}
	return nil
}

func (s *pgStore) GetCompletion(ctx context.Context, prayerID model.PrayerID, day string) (*model.CompletionRecord, error) {
	var rec model.CompletionRecord
	const q = `
	SELECT id, prayer_id, day, completed, created_at, updated_at
	  FROM completions
	 WHERE prayer_id = $1 AND day = $2;`
	err := s.db.GetContext(ctx, &rec, q, prayerID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("prayer", string(prayerID)).Str("day", day).Msg("GetCompletion failed")
		return nil, errs.Persistence("get completion", day, err)
	}
	return &rec, nil
}

func (s *pgStore) ListCompletions(ctx context.Context, prayerID model.PrayerID, since string) ([]model.CompletionRecord, error) {
	var out []model.CompletionRecord
	const q = `
	SELECT id, prayer_id, day, completed, created_at, updated_at
	  FROM completions
	 WHERE prayer_id = $1 AND day >= $2
	 ORDER BY day;`
	if err := s.db.SelectContext(ctx, &out, q, prayerID, since); err != nil {
		log.Error().Err(err).Str("prayer", string(prayerID)).Msg("ListCompletions failed")
		return nil, errs.Persistence("list completions", string(prayerID), err)
	}
	return out, nil
}
