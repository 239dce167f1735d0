package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type entry struct {
	bun.BaseModel `bun:"table:portal_storage,alias:ps"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLStorage keeps values in a single table through bun
type SQLStorage struct {
	db  *bun.DB
	now func() time.Time
}

func NewSQLStorage(db *bun.DB) *SQLStorage {
	return &SQLStorage{db: db, now: time.Now}
}

// OpenSQLite opens a SQLite database, e.g. "file:portal.db?cache=shared"
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql storage: open: %w", err)
	}
	// SQLite allows a single writer
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate creates the storage table
func (s *SQLStorage) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*entry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sql storage: migrate: %w", err)
	}
	return nil
}

func (s *SQLStorage) Read(ctx context.Context, key string) (string, bool, error) {
	e := new(entry)
	err := s.db.NewSelect().
		Model(e).
		Where("name = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sql storage: select: %w", err)
	}
	return e.Value, true, nil
}

func (s *SQLStorage) Write(ctx context.Context, key, value string) error {
	e := &entry{
		Name:      key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}

	_, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sql storage: upsert: %w", err)
	}
	return nil
}

func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*entry)(nil)).
		Where("name = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sql storage: delete: %w", err)
	}
	return nil
}
