// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
)

const kvTable = "kv_store"

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type sqliteKeyValueStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteKeyValueStore returns a KeyValueStore backed by the kv_store table.
// The schema is created by [DB.Migrate].
func NewSQLiteKeyValueStore(db *DB, log *logger.Logger) KeyValueStore {
	return &sqliteKeyValueStore{db: db, logger: log.Component("kv_store")}
}

func (s *sqliteKeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := builder.
		Select("value").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Err(err).Str("key", key).Msg("get failed")
		return nil, false, fmt.Errorf("%w: get %s: %w", ErrScanningRow, key, err)
	}

	return value, true, nil
}

func (s *sqliteKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := builder.
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, sq.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("key", key).Msg("set failed")
		return fmt.Errorf("%w: set %s: %w", ErrExecutingStatement, key, err)
	}

	return nil
}

func (s *sqliteKeyValueStore) Delete(ctx context.Context, key string) error {
	query, args, err := builder.
		Delete(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("key", key).Msg("delete failed")
		return fmt.Errorf("%w: delete %s: %w", ErrExecutingStatement, key, err)
	}

	return nil
}
