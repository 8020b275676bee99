// Package repository реализует хранилище документов (туры, пользователи, отзывы)
// на основе PostgreSQL. Проверка схемы (обязательные поля, уникальность,
// перечисления, пользовательские правила) выполняется ограничениями базы,
// а их нарушения переводятся в ошибки apperr.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// DBTX — операции, общие для пула и транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool — пул соединений; его реализуют pgxpool.Pool и pgxmock.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB     Pool
	Limits query.Limits
}

// New создаёт пул соединений и проверяет доступность базы.
func New(ctx context.Context, connString string, maxConns int32, limits query.Limits) (*Storage, *pgxpool.Pool, error) {
	const op = "storage.New"

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewWithPool(pool, limits), pool, nil
}

// NewWithPool оборачивает готовый пул.
func NewWithPool(db Pool, limits query.Limits) *Storage {
	return &Storage{DB: db, Limits: limits}
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул.
func (s *Storage) Close() {
	s.DB.Close()
}

// inTx выполняет fn в транзакции и фиксирует её, если fn не вернула ошибку.
func (s *Storage) inTx(ctx context.Context, fn func(DBTX) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}
