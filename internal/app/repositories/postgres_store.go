package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

// PostgresStore implements Store on a pgx pool. Each WithTx call is one database
// transaction, retried by the db layer on serialization failures.
type PostgresStore struct {
	db *db.PostgresDB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(database *db.PostgresDB) *PostgresStore {
	return &PostgresStore{db: database}
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, newPgTx(tx))
	})
}

type pgTx struct {
	base pgRepo
}

func newPgTx(tx pgx.Tx) *pgTx {
	return &pgTx{base: pgRepo{
		q:  tx,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}}
}

func (t *pgTx) Users() UserRepository { return userRepository{t.base} }
func (t *pgTx) Clubs() ClubRepository { return clubRepository{t.base} }
func (t *pgTx) Members() MemberRepository { return memberRepository{t.base} }
func (t *pgTx) Posts() PostRepository { return postRepository{t.base} }
func (t *pgTx) Comments() CommentRepository { return commentRepository{t.base} }
func (t *pgTx) Threads() ThreadRepository { return threadRepository{t.base} }
func (t *pgTx) Replies() ReplyRepository { return replyRepository{t.base} }
func (t *pgTx) Events() EventRepository { return eventRepository{t.base} }
func (t *pgTx) Interactions() InteractionRepository { return interactionRepository{t.base} }

// pgRepo is the shared plumbing of every PostgreSQL repository.
type pgRepo struct {
	q  pgx.Tx
	sb squirrel.StatementBuilderType
}

func (r pgRepo) exec(ctx context.Context, b squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	return tag, translate(err)
}

// execOne fails with ErrNotFound when the statement touched no row.
func (r pgRepo) execOne(ctx context.Context, b squirrel.Sqlizer) error {
	tag, err := r.exec(ctx, b)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r pgRepo) query(ctx context.Context, b squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r pgRepo) count(ctx context.Context, b squirrel.SelectBuilder) (int, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// one runs a single-row select and scans it.
func one[T any](ctx context.Context, r pgRepo, b squirrel.SelectBuilder, scan func(pgx.Row) (T, error)) (*T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	v, err := scan(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// many runs a select and scans every row.
func many[T any](ctx context.Context, r pgRepo, b squirrel.SelectBuilder, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := r.query(ctx, b)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// translate maps driver errors onto the repository sentinels. Anything else is
// returned as is, wrapped errors stay inspectable.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case dberrors.IsForeignKeyViolation(err):
		// The parent row went away, usually a club deleted mid-request.
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case dberrors.IsDuplicateConstraintError(err, ""):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func paginate(b squirrel.SelectBuilder, p models.Page) squirrel.SelectBuilder {
	if p.Offset > 0 {
		b = b.Offset(uint64(p.Offset))
	}
	if p.Limit > 0 {
		b = b.Limit(uint64(p.Limit))
	}
	return b
}

// objectRef rebuilds a nullable object reference from its three columns.
func objectRef(bucket, key, etag *string) *models.ObjectRef {
	if key == nil {
		return nil
	}
	ref := &models.ObjectRef{Key: *key}
	if bucket != nil {
		ref.Bucket = *bucket
	}
	if etag != nil {
		ref.ETag = *etag
	}
	return ref
}

// objectColumns flattens a reference for insert/update, nil becomes NULLs.
func objectColumns(ref *models.ObjectRef) (any, any, any) {
	if ref == nil {
		return nil, nil, nil
	}
	return ref.Bucket, ref.Key, ref.ETag
}
