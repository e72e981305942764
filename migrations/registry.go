package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"

	hybridauth "github.com/goliatone/go-hybridauth"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultSourceLabel = "go-hybridauth"
	migrationsDir      = "data/sql/migrations"
)

// FilesystemSpec is one dialect's migration directory.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc hands one dialect filesystem to the host migration runner.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets limits registration to the given dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if next := normalizeDialects(targets); len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// WithFilesystems replaces the embedded schema, e.g. to append host tables.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		copied := make([]FilesystemSpec, 0, len(filesystems))
		for _, spec := range filesystems {
			dialect := strings.TrimSpace(strings.ToLower(spec.Dialect))
			if dialect == "" || spec.FS == nil {
				continue
			}
			copied = append(copied, FilesystemSpec{Dialect: dialect, Path: spec.Path, FS: spec.FS})
		}
		if len(copied) > 0 {
			r.Filesystems = copied
		}
	}
}

// Filesystems splits the migration tree into the postgres root and the sqlite
// subdirectory. The embedded tree is used when no source is given.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := hybridauth.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, basePath, err := migrationsRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: pathJoin(basePath, "sqlite"), FS: sqliteFS},
	}
	for _, spec := range filesystems {
		matches, globErr := fs.Glob(spec.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", spec.Dialect, spec.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", spec.Dialect, spec.Path)
		}
	}
	return filesystems, nil
}

// Register calls registerFn once per targeted dialect.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	for _, spec := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, spec.Dialect) {
			continue
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}
	return reg, nil
}

// Apply registers the storage schema for dialect on a go-persistence-bun
// client and runs its pending migrations.
func Apply(ctx context.Context, client *persistence.Client, dialect string) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	dialect = strings.TrimSpace(strings.ToLower(dialect))
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	_, err := Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, WithValidationTargets(dialect))
	if err != nil {
		return err
	}
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: migrate %s: %w", dialect, err)
	}
	return nil
}

func migrationsRoot(root fs.FS) (fs.FS, string, error) {
	if sub, err := fs.Sub(root, migrationsDir); err == nil {
		if _, statErr := fs.Stat(sub, "."); statErr == nil {
			return sub, migrationsDir, nil
		}
	}
	entries, err := fs.ReadDir(root, ".")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
				return root, ".", nil
			}
		}
	}
	return nil, "", fmt.Errorf("migrations: %s not found", migrationsDir)
}

func normalizeDialects(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" || slices.Contains(out, trimmed) {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func pathJoin(base string, suffix string) string {
	if base == "." {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(suffix, "/")
}
