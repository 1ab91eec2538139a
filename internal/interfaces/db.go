package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX объединяет *pgxpool.Pool и pgx.Tx: репозитории принимают его,
// чтобы один и тот же метод мог работать и на пуле, и внутри транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager выполняет функцию внутри транзакции БД: коммит при успехе,
// откат при ошибке или панике.
//
//go:generate mockery --name TxManager --output ../mocks --outpkg mocks --case=underscore
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}
