package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"book-server/internal/imagegen"
	"book-server/internal/interfaces"
	"book-server/internal/models"
	"book-server/internal/textgen"
)

// ReferenceService генерирует референсные портреты персонажей. Портрет
// хранится байтами в БД и одновременно публикуется как файл: байты идут
// референсом в генерацию сцен, URL - в ответы API.
//
//go:generate mockery --name ReferenceService --output ../mocks --outpkg mocks --case=underscore
type ReferenceService interface {
	// GenerateReference создает портрет персонажа по его описанию внешности
	// и перезаписывает сохраненный референс. Возвращает персонажа с
	// обновленными полями референса.
	GenerateReference(ctx context.Context, characterID uuid.UUID) (*models.Character, error)
}

// Compile-time check
var _ ReferenceService = (*referenceService)(nil)

type referenceService struct {
	db            interfaces.DBTX
	characterRepo interfaces.CharacterRepository
	translator    textgen.Translator
	generator     imagegen.Generator
	blobs         interfaces.BlobPublisher
	logger        *zap.Logger
}

// NewReferenceService создает сервис референсных портретов.
func NewReferenceService(
	db interfaces.DBTX,
	characterRepo interfaces.CharacterRepository,
	translator textgen.Translator,
	generator imagegen.Generator,
	blobs interfaces.BlobPublisher,
	logger *zap.Logger,
) ReferenceService {
	return &referenceService{
		db:            db,
		characterRepo: characterRepo,
		translator:    translator,
		generator:     generator,
		blobs:         blobs,
		logger:        logger.Named("ReferenceService"),
	}
}

// GenerateReference генерирует и сохраняет референсный портрет персонажа.
func (s *referenceService) GenerateReference(ctx context.Context, characterID uuid.UUID) (*models.Character, error) {
	log := s.logger.With(zap.String("characterID", characterID.String()))

	character, err := s.characterRepo.GetByID(ctx, s.db, characterID)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("name", character.Name))

	// Для портрета берется описание внешности, при его отсутствии общее описание
	description := character.VisualDescription
	if description == "" {
		description = character.Description
	}
	if description == "" {
		return nil, fmt.Errorf("%w: у персонажа %s нет описания для портрета", models.ErrInvalidInput, character.Name)
	}

	englishDescription := s.translator.TranslateToEnglish(ctx, description)
	prompt := imagegen.BuildCharacterPortraitPrompt(englishDescription)

	// Портрет рисуется без референсов: он сам станет референсом для сцен
	image, err := s.generator.Generate(ctx, prompt, nil)
	if err != nil {
		log.Error("Reference portrait generation failed", zap.Error(err))
		return nil, err
	}

	publishedURL, err := s.blobs.Publish(ctx, image.Data, image.MimeType, "reference_"+characterID.String())
	if err != nil {
		log.Error("Failed to publish reference portrait", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	character.ReferenceImage = image.Data
	character.ReferencePrompt = &prompt
	character.ReferenceURL = &publishedURL
	character.HasReference = true
	character.ReferenceCreated = &now

	// Инвариант согласованности продублирован CHECK-ограничением в БД,
	// проверка до записи дает внятную ошибку вместо отказа констрейнта
	if !character.ReferenceConsistent() {
		return nil, models.ErrReferenceInconsistent
	}

	if err := s.characterRepo.SaveReference(ctx, s.db, character.ID, image.Data, prompt, publishedURL, now); err != nil {
		return nil, err
	}

	log.Info("Character reference portrait saved",
		zap.String("model", image.Model),
		zap.String("referenceURL", publishedURL),
		zap.Int("imageBytes", len(image.Data)))

	return character, nil
}
