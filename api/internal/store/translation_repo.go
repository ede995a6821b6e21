package store

import (
	"context"
	"database/sql"
	"time"
)

// TranslationRepo — кэш переводов, чтобы не дёргать модель за одним и
// тем же текстом.
type TranslationRepo struct{ DB *sql.DB }

func NewTranslationRepo(db *sql.DB) *TranslationRepo { return &TranslationRepo{DB: db} }

// Find возвращает закэшированный перевод текста. Если maxAge > 0 и
// запись старше, вернёт sql.ErrNoRows (чтобы вызвать модель заново).
func (r *TranslationRepo) Find(ctx context.Context, sourceText string, maxAge time.Duration) (string, error) {
	const q = `select translation, created_at
	           from translations_cache
	           where source_text=$1`
	var (
		translation string
		ts          time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, sourceText).Scan(&translation, &ts); err != nil {
		return "", err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return "", sql.ErrNoRows
	}
	return translation, nil
}

// Upsert сохраняет/обновляет перевод. PK: source_text.
func (r *TranslationRepo) Upsert(ctx context.Context, sourceText, translation string) error {
	const q = `
insert into translations_cache(source_text, translation)
values ($1,$2)
on conflict (source_text)
do update set translation=excluded.translation, created_at=now()`
	_, err := r.DB.ExecContext(ctx, q, sourceText, translation)
	return err
}
