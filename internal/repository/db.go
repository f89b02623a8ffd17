package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"loremaster/internal/apperr"
)

// DB is the subset of *pgxpool.Pool the repositories use. pgx.Tx and
// pgxmock pools satisfy it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// translate maps a pgx error to an apperr error. what names the record in
// messages, e.g. "character".
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(what + " not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.CodeConflict, what+" already exists", err)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.CodeValidation, "referenced record does not exist or is still in use", err)
		case pgCheckViolation, pgInvalidText:
			return apperr.Wrap(apperr.CodeValidation, "invalid "+what, err)
		}
	}
	return apperr.Internal("failed to access "+what, err)
}

func queryRow(ctx context.Context, db DB, b sq.Sqlizer) (pgx.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.QueryRow(ctx, query, args...), nil
}

func query(ctx context.Context, db DB, b sq.Sqlizer) (pgx.Rows, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.Query(ctx, q, args...)
}

func exec(ctx context.Context, db DB, b sq.Sqlizer) (pgconn.CommandTag, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build query: %w", err)
	}
	return db.Exec(ctx, q, args...)
}

// execOne runs b and reports NotFound when no row was affected.
func execOne(ctx context.Context, db DB, b sq.Sqlizer, what string) error {
	tag, err := exec(ctx, db, b)
	if err != nil {
		return translate(err, what)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func withTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("failed to commit transaction", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// searchPredicate is a case-insensitive substring match on any of the columns.
// LIKE wildcards in term match literally.
func searchPredicate(term string, columns ...string) sq.Sqlizer {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	or := sq.Or{}
	for _, c := range columns {
		or = append(or, sq.ILike{c: pattern})
	}
	return or
}

// deleteEntityRefs removes the polymorphic rows pointing at an entity. Those
// tables cannot carry foreign keys so they are cleaned up by hand.
func deleteEntityRefs(ctx context.Context, tx pgx.Tx, entityType string, entityID int) error {
	for _, table := range []string{"entity_tags", "entity_images", "quest_links"} {
		_, err := exec(ctx, tx, psql.Delete(table).Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}))
		if err != nil {
			return translate(err, "entity reference")
		}
	}
	return nil
}

// deleteEntity deletes one row of table and its polymorphic references in a
// single transaction.
func deleteEntity(ctx context.Context, db DB, table, entityType string, campaignID, id int, what string) error {
	return withTx(ctx, db, func(tx pgx.Tx) error {
		if err := execOne(ctx, tx, psql.Delete(table).Where(sq.Eq{"id": id, "campaign_id": campaignID}), what); err != nil {
			return err
		}
		return deleteEntityRefs(ctx, tx, entityType, id)
	})
}
