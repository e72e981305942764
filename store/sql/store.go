package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-hybridauth/core"
)

const DefaultSession = "default"

// Store persists session state in the hybridauth_storage table, one row per
// (session, key).
type Store struct {
	db      *bun.DB
	repo    repository.Repository[*storageRecord]
	session string
	now     func() time.Time
}

type Option func(*Store)

func WithSession(session string) Option {
	return func(s *Store) {
		if session = strings.TrimSpace(session); session != "" {
			s.session = session
		}
	}
}

// NewStore accepts a *bun.DB or any client exposing DB() *bun.DB, such as a
// go-persistence-bun client.
func NewStore(persistenceClient any, opts ...Option) (*Store, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository[*storageRecord](db, storageHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid storage repository wiring: %w", err)
		}
	}
	store := &Store{
		db:      db,
		repo:    repo,
		session: DefaultSession,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// ForSession returns a store sharing the database, scoped to another session.
func (s *Store) ForSession(session string) *Store {
	cloned := *s
	cloned.session = DefaultSession
	if session = strings.TrimSpace(session); session != "" {
		cloned.session = session
	}
	return &cloned
}

func (s *Store) Session() string {
	return s.session
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.repo == nil {
		return "", false, fmt.Errorf("sqlstore: storage is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("session_id", "=", s.session),
		repository.SelectBy("storage_key", "=", key),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return "", false, fmt.Errorf("sqlstore: get %s: %w", key, err)
	}
	if len(records) == 0 {
		return "", false, nil
	}
	return records[0].Value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: storage is not configured")
	}
	now := s.now()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := new(storageRecord)
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.session_id = ?", s.session).
			Where("?TableAlias.storage_key = ?", key).
			Limit(1).
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err != nil {
			_, createErr := s.repo.CreateTx(ctx, tx, &storageRecord{
				ID:        uuid.NewString(),
				SessionID: s.session,
				Key:       key,
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			})
			return createErr
		}
		_, updateErr := tx.NewUpdate().
			Model((*storageRecord)(nil)).
			Set("storage_value = ?", value).
			Set("updated_at = ?", now).
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
	if err != nil {
		return fmt.Errorf("sqlstore: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: storage is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*storageRecord)(nil)).
		Where("session_id = ?", s.session).
		Where("storage_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteMatch(ctx context.Context, prefix string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: storage is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*storageRecord)(nil)).
		Where("session_id = ?", s.session).
		Where("storage_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: delete %s*: %w", prefix, err)
	}
	return nil
}

// Purge removes rows of every session not updated since before.
func (s *Store) Purge(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: storage is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*storageRecord)(nil)).
		Where("updated_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: purge: %w", err)
	}
	return res.RowsAffected()
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

var _ core.Storage = (*Store)(nil)
