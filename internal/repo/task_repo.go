package repo

import (
	"context"
	"embed"
	"errors"
	"fmt"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is the persistence boundary of the task engine.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, t dom.Task) error
	Get(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context, p Predicate, o Order) ([]dom.Task, error)
	ApplyUpdate(ctx context.Context, id string, ch FieldChanges) (dom.Task, error)
	// HardDelete physically removes the row. Soft delete lives in the
	// engine; nothing in the HTTP surface reaches this.
	HardDelete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// PGStore is the Postgres-backed Store. Connections are pooled; each
// operation acquires and releases per call via the pool.
type PGStore struct {
	db  *pgxpool.Pool
	dsn string
}

func NewPGStore(db *pgxpool.Pool, dsn string) *PGStore {
	return &PGStore{db: db, dsn: dsn}
}

// EnsureSchema applies the embedded migrations. Idempotent: safe to run on
// every startup.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	db, err := goose.OpenDBWithDriver("pgx", s.dsn)
	if err != nil {
		return fmt.Errorf("%w: goose open: %v", dom.ErrStorageUnavailable, err)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: goose dialect: %v", dom.ErrStorageUnavailable, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%w: goose up: %v", dom.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PGStore) Insert(ctx context.Context, t dom.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.Exec(ctx, query,
		t.ID, t.Title, t.DueDate, string(t.Status), t.Comments, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return fmt.Errorf("%w: %s", dom.ErrDuplicateID, t.ID)
		}
		return storageErr("insert task", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, dom.ErrNotFound
		}
		return dom.Task{}, storageErr("get task", err)
	}
	return t, nil
}

func (s *PGStore) List(ctx context.Context, p Predicate, o Order) ([]dom.Task, error) {
	query, args := buildListQuery(p, o)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list tasks", err)
	}
	defer rows.Close()

	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageErr("scan task", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list tasks", err)
	}
	return list, nil
}

// ApplyUpdate writes the named fields in one statement and returns the
// post-update row. Zero rows affected means the id does not exist.
func (s *PGStore) ApplyUpdate(ctx context.Context, id string, ch FieldChanges) (dom.Task, error) {
	query, args := buildUpdateQuery(id, ch)
	t, err := scanTask(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, dom.ErrNotFound
		}
		return dom.Task{}, storageErr("update task", err)
	}
	return t, nil
}

func (s *PGStore) HardDelete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var (
		t      dom.Task
		status string
	)
	err := row.Scan(&t.ID, &t.Title, &t.DueDate, &status, &t.Comments,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return dom.Task{}, err
	}
	t.Status = dom.Status(status)
	return t, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", dom.ErrStorageUnavailable, op, err)
}
