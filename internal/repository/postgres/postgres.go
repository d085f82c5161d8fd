package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luanafs/clube/internal/repository"
	"go.uber.org/zap"
)

// DBTX is the slice of pgx both *pgxpool.Pool and pgx.Tx implement. Stores
// hold a DBTX, so the same store code runs against the shared pool or
// inside a transaction, depending on who constructed it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewStores binds every store to the given handle.
func NewStores(db DBTX) repository.Stores {
	return repository.Stores{
		Users:        NewUserStore(db),
		Groups:       NewGroupStore(db),
		Memberships:  NewMembershipStore(db),
		JoinRequests: NewJoinRequestStore(db),
		Invites:      NewInviteStore(db),
		Selections:   NewSelectionStore(db),
		ClubBooks:    NewClubBookStore(db),
		Messages:     NewClubBookMessageStore(db),
		Artifacts:    NewClubBookArtifactStore(db),
	}
}

// maxSerializableAttempts bounds the retry loop for serializable
// transactions before the caller sees ErrConcurrency.
const maxSerializableAttempts = 3

// TxRunner implements repository.TxManager on a pgx pool.
type TxRunner struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewTxRunner(pool *pgxpool.Pool, logger *zap.Logger) *TxRunner {
	return &TxRunner{pool: pool, logger: logger}
}

func (r *TxRunner) ReadCommitted(ctx context.Context, fn func(repository.Stores) error) error {
	return r.run(ctx, pgx.ReadCommitted, 1, fn)
}

func (r *TxRunner) Serializable(ctx context.Context, fn func(repository.Stores) error) error {
	return r.run(ctx, pgx.Serializable, maxSerializableAttempts, fn)
}

func (r *TxRunner) run(ctx context.Context, iso pgx.TxIsoLevel, attempts int, fn func(repository.Stores) error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = r.attempt(ctx, iso, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		r.logger.Debug("transaction serialization failure",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	// Retries exhausted on contention. The caller can rerun the whole
	// use-case; nothing was committed.
	return fmt.Errorf("transaction after %d attempts: %w", attempts, repository.ErrConcurrency)
}

func (r *TxRunner) attempt(ctx context.Context, iso pgx.TxIsoLevel, fn func(repository.Stores) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after a successful commit is a no-op error; safe to defer
	// unconditionally.
	defer tx.Rollback(ctx)

	if err := fn(NewStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isUniqueViolation matches Postgres SQLSTATE 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isSerializationFailure matches 40001 (serialization_failure) and
// 40P01 (deadlock_detected), both safe to retry from scratch.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
