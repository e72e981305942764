package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-hybridauth/migrations"
)

// ConnectionConfig is the subset of go-persistence-bun configuration Open
// needs.
type ConnectionConfig interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

type driverSpec struct {
	sqlDriver string
	migration string
	dialect   func() schema.Dialect
}

var drivers = map[string]driverSpec{
	"postgres":   {sqlDriver: "postgres", migration: migrations.DialectPostgres, dialect: newPostgresDialect},
	"postgresql": {sqlDriver: "postgres", migration: migrations.DialectPostgres, dialect: newPostgresDialect},
	"sqlite":     {sqlDriver: "sqlite3", migration: migrations.DialectSQLite, dialect: newSQLiteDialect},
	"sqlite3":    {sqlDriver: "sqlite3", migration: migrations.DialectSQLite, dialect: newSQLiteDialect},
}

func newPostgresDialect() schema.Dialect { return pgdialect.New() }

func newSQLiteDialect() schema.Dialect { return sqlitedialect.New() }

// MigrationDialect maps a database/sql driver name to its migration dialect.
func MigrationDialect(driver string) (string, error) {
	spec, ok := drivers[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return "", fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	return spec.migration, nil
}

// Open connects a persistence client for cfg.GetDriver() and applies the
// storage migrations for that dialect.
func Open(ctx context.Context, cfg ConnectionConfig) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: connection config is required")
	}
	spec, ok := drivers[strings.ToLower(strings.TrimSpace(cfg.GetDriver()))]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.GetDriver())
	}
	sqlDB, err := sql.Open(spec.sqlDriver, cfg.GetServer())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", spec.sqlDriver, err)
	}
	if spec.migration == migrations.DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, spec.dialect())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: persistence client: %w", err)
	}
	if err := migrations.Apply(ctx, client, spec.migration); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// OpenStore is Open followed by NewStore.
func OpenStore(ctx context.Context, cfg ConnectionConfig, opts ...Option) (*Store, *persistence.Client, error) {
	client, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewStore(client, opts...)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, client, nil
}
