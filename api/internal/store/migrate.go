package store

import (
	"context"
	"database/sql"
)

// Migrate создаёт таблицы, если их ещё нет.
func Migrate(ctx context.Context, db *sql.DB) error {
	const q = `
create table if not exists translations_cache (
    source_text text primary key,
    translation text not null,
    created_at  timestamptz not null default now()
);

create table if not exists quiz_results (
    id         bigserial primary key,
    user_id    bigint not null,
    level      text not null,
    score      int not null,
    total      int not null,
    created_at timestamptz not null default now()
);

create index if not exists quiz_results_user_idx on quiz_results(user_id, created_at desc);
`
	_, err := db.ExecContext(ctx, q)
	return err
}
