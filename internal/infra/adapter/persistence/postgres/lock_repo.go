package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"papersorter/internal/repository"
)

// LockRepo implements repository.LockRepository using Postgres session-level
// advisory locks. Named locks are hashed to the int64 key pg_advisory_lock
// takes; a dedicated connection is held for the lock's lifetime since
// session advisory locks are tied to the connection that took them.
type LockRepo struct{ db *sql.DB }

func NewLockRepo(db *sql.DB) repository.LockRepository {
	return &LockRepo{db: db}
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

func (repo *LockRepo) TryLock(ctx context.Context, name string) (bool, func(context.Context) error, error) {
	conn, err := repo.db.Conn(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("TryLock: Conn: %w", err)
	}

	var acquired bool
	key := lockKey(name)
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&acquired); err != nil {
		_ = conn.Close()
		return false, nil, fmt.Errorf("TryLock: %w", err)
	}
	if !acquired {
		_ = conn.Close()
		return false, nil, nil
	}

	unlock := func(unlockCtx context.Context) error {
		defer func() { _ = conn.Close() }()
		_, err := conn.ExecContext(unlockCtx, `SELECT pg_advisory_unlock($1)`, key)
		return err
	}
	return true, unlock, nil
}
