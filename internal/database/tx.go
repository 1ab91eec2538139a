package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
)

// Compile-time check
var _ interfaces.TxManager = (*pgxTxManager)(nil)

// pgxTxManager реализует TxManager поверх пула pgx.
type pgxTxManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTxManager создает менеджер транзакций поверх пула соединений.
func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) interfaces.TxManager {
	return &pgxTxManager{
		pool:   pool,
		logger: logger.Named("TxManager"),
	}
}

// WithTransaction выполняет fn в рамках транзакции: коммитит при успехе,
// откатывает при ошибке. Паника откатывает транзакцию и пробрасывается дальше.
func (m *pgxTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				m.logger.Error("Failed to rollback transaction after panic",
					zap.Error(rollbackErr),
					zap.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			m.logger.Error("Failed to rollback transaction",
				zap.Error(rollbackErr),
				zap.NamedError("original_error", err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
