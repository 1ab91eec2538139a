package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

const (
	createCharacterQuery = `
        INSERT INTO characters
            (id, book_id, name, description, visual_description, reference_image, reference_prompt, reference_url, has_reference, reference_created_at, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	getCharacterByIDQuery = `
        SELECT id, book_id, name, description, visual_description, reference_image, reference_prompt, reference_url, has_reference, reference_created_at, created_at
        FROM characters
        WHERE id = $1
    `
	listCharactersByBookQuery = `
        SELECT id, book_id, name, description, visual_description, reference_image, reference_prompt, reference_url, has_reference, reference_created_at, created_at
        FROM characters
        WHERE book_id = $1
        ORDER BY created_at, id
    `
	saveCharacterReferenceQuery = `
        UPDATE characters
        SET reference_image = $2, reference_prompt = $3, reference_url = NULLIF($4, ''), has_reference = TRUE, reference_created_at = $5
        WHERE id = $1
    `
)

// Compile-time check
var _ interfaces.CharacterRepository = (*pgCharacterRepository)(nil)

// pgCharacterRepository реализует интерфейс CharacterRepository для PostgreSQL.
type pgCharacterRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgCharacterRepository создает новый экземпляр репозитория персонажей.
func NewPgCharacterRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CharacterRepository {
	return &pgCharacterRepository{
		db:     db,
		logger: logger.Named("PgCharacterRepo"),
	}
}

// Create создает нового персонажа. Несогласованный референс отклоняется
// до записи в базу.
func (r *pgCharacterRepository) Create(ctx context.Context, querier interfaces.DBTX, character *models.Character) error {
	if !character.ReferenceConsistent() {
		return fmt.Errorf("%w: has_reference flag does not match stored reference data", models.ErrReferenceInconsistent)
	}

	if character.ID == uuid.Nil {
		character.ID = uuid.New()
	}
	character.CreatedAt = time.Now().UTC()

	logFields := []zap.Field{
		zap.String("characterID", character.ID.String()),
		zap.String("bookID", character.BookID.String()),
		zap.String("name", character.Name),
	}
	r.logger.Debug("Creating character", logFields...)

	_, err := querier.Exec(ctx, createCharacterQuery,
		character.ID, character.BookID, character.Name, character.Description, character.VisualDescription,
		character.ReferenceImage, character.ReferencePrompt, character.ReferenceURL,
		character.HasReference, character.ReferenceCreated, character.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create character", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания персонажа: %w", err)
	}

	r.logger.Info("Character created successfully", logFields...)
	return nil
}

// GetByID возвращает персонажа вместе с байтами референса.
func (r *pgCharacterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Character, error) {
	log := r.logger.With(zap.String("characterID", id.String()))

	var character models.Character
	err := pgxscan.Get(ctx, querier, &character, getCharacterByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Character not found by ID")
			return nil, models.ErrNotFound
		}
		log.Error("Failed to get character by ID", zap.Error(err))
		return nil, fmt.Errorf("failed to get character by ID %s: %w", id, err)
	}

	return &character, nil
}

// ListByBook возвращает всех персонажей книги в порядке создания.
func (r *pgCharacterRepository) ListByBook(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID) ([]*models.Character, error) {
	log := r.logger.With(zap.String("bookID", bookID.String()))

	characters := make([]*models.Character, 0)
	err := pgxscan.Select(ctx, querier, &characters, listCharactersByBookQuery, bookID)
	if err != nil {
		log.Error("Failed to list characters by book", zap.Error(err))
		return nil, fmt.Errorf("failed to list characters for book %s: %w", bookID, err)
	}

	log.Debug("Characters listed successfully", zap.Int("count", len(characters)))
	return characters, nil
}

// SaveReference перезаписывает референсный портрет персонажа и поднимает
// флаг has_reference. Повторная генерация заменяет предыдущий референс.
func (r *pgCharacterRepository) SaveReference(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, image []byte, prompt, publishedURL string, createdAt time.Time) error {
	if len(image) == 0 || prompt == "" {
		return fmt.Errorf("%w: reference image and prompt must both be present", models.ErrReferenceInconsistent)
	}

	logFields := []zap.Field{
		zap.String("characterID", id.String()),
		zap.Int("imageSize", len(image)),
	}
	r.logger.Debug("Saving character reference", logFields...)

	commandTag, err := querier.Exec(ctx, saveCharacterReferenceQuery, id, image, prompt, publishedURL, createdAt)
	if err != nil {
		r.logger.Error("Failed to save character reference", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка сохранения референса персонажа %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to save reference for non-existent character", logFields...)
		return models.ErrNotFound
	}

	r.logger.Info("Character reference saved successfully", logFields...)
	return nil
}
