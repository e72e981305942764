package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"

	"github.com/goliatone/go-hybridauth/migrations"
	"github.com/goliatone/go-hybridauth/providers/devkit"
	sqlstore "github.com/goliatone/go-hybridauth/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-hybridauth-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"hybridauth_storage",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "hybridauth_storage" {
		t.Fatalf("expected hybridauth_storage table, got %q", tableName)
	}
}

func TestStore_Conformance(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewStore(client)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := devkit.ValidateStorageConformance(context.Background(), store); err != nil {
		t.Fatalf("sql store conformance: %v", err)
	}
}

func TestStore_SessionsAndLikeEscaping(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewStore(client.DB(), sqlstore.WithSession("alice"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	bob := store.ForSession("bob")

	for _, key := range []string{"my_idp.state", "myxidp.state"} {
		if err := store.Set(ctx, key, "v"); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := bob.Set(ctx, "my_idp.state", "bob"); err != nil {
		t.Fatalf("set bob: %v", err)
	}

	if err := store.DeleteMatch(ctx, "my_idp."); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if _, found, _ := store.Get(ctx, "my_idp.state"); found {
		t.Fatalf("expected prefixed key to be deleted")
	}
	if _, found, _ := store.Get(ctx, "myxidp.state"); !found {
		t.Fatalf("expected underscore to match literally")
	}
	value, found, err := bob.Get(ctx, "my_idp.state")
	if err != nil || !found || value != "bob" {
		t.Fatalf("expected other session untouched, got %q %v %v", value, found, err)
	}
}

func TestStore_PurgeRemovesStaleRows(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewStore(client)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Set(ctx, "github.access_token", "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	removed, err := store.Purge(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one purged row, got %d", removed)
	}
	if _, found, _ := store.Get(ctx, "github.access_token"); found {
		t.Fatalf("expected purged row to be gone")
	}
}

func TestNewStore_RejectsUnsupportedClient(t *testing.T) {
	if _, err := sqlstore.NewStore(nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := sqlstore.NewStore("not-a-db"); err == nil {
		t.Fatalf("expected error for unsupported client")
	}
}

func TestOpenStore_SQLiteAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:hybridauth-open-%d?mode=memory&cache=shared", time.Now().UnixNano())
	store, client, err := sqlstore.OpenStore(ctx, testPersistenceConfig{driver: "SQLite", server: dsn}, sqlstore.WithSession("carol"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer client.Close()

	if store.Session() != "carol" {
		t.Fatalf("expected session option to apply, got %q", store.Session())
	}
	if err := store.Set(ctx, "gitlab.state", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := store.Get(ctx, "gitlab.state")
	if err != nil || !found || value != "abc" {
		t.Fatalf("expected stored value, got %q %v %v", value, found, err)
	}
}

func TestOpen_RejectsUnsupportedDriver(t *testing.T) {
	if _, err := sqlstore.Open(context.Background(), testPersistenceConfig{driver: "mysql", server: "x"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqlstore.Open(context.Background(), nil); err == nil {
		t.Fatalf("expected nil config error")
	}
}

func TestMigrationDialect(t *testing.T) {
	cases := map[string]string{
		"postgres":   migrations.DialectPostgres,
		"PostgreSQL": migrations.DialectPostgres,
		"sqlite3":    migrations.DialectSQLite,
		" sqlite ":   migrations.DialectSQLite,
	}
	for driver, want := range cases {
		got, err := sqlstore.MigrationDialect(driver)
		if err != nil {
			t.Fatalf("dialect for %q: %v", driver, err)
		}
		if got != want {
			t.Fatalf("expected %q for %q, got %q", want, driver, got)
		}
	}
	if _, err := sqlstore.MigrationDialect("oracle"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:hybridauth-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	client, err := sqlstore.Open(context.Background(), testPersistenceConfig{driver: "sqlite3", server: dsn})
	if err != nil {
		t.Fatalf("open sqlite client: %v", err)
	}
	return client, func() {
		_ = client.Close()
	}
}
