// Package imagegen реализует генерацию иллюстраций с перебором моделей.
// Клиент держит упорядоченный список кандидатов и отдает результат первой
// модели, вернувшей изображение; сравнение качества между моделями не
// выполняется.
package imagegen

import (
	"context"
	"fmt"
	"strings"

	"book-server/internal/models"
)

// Базовые части промтов иллюстраций.
const (
	referenceStyleBase   = "Disney-Pixar children's book illustration, 2D cartoon art, bright cheerful colors."
	referenceComposition = "Composition: Wide shot showing all characters clearly, warm lighting, clean composition suitable for children's book."
	referenceTechnical   = "Technical: High quality illustration, no text or words in image, family-friendly content, clear and simple composition."

	plainStyleBase           = "Children's book illustration, cartoon style, bright colors, friendly atmosphere"
	plainQualityRequirements = "High quality illustration, no text or words"
)

// ImageRequest - подготовленный запрос для одной модели. Несет оба варианта
// текста: модели с поддержкой референсов используют ReferencePrompt вместе
// с бинарными частями, остальные ограничиваются PlainPrompt.
type ImageRequest struct {
	ReferencePrompt string                      // Текст с нумерованными привязками к референсным изображениям
	PlainPrompt     string                      // Текст без привязок к изображениям
	References      []models.CharacterReference // Референсы в порядке ростера, идут перед текстовой частью
}

// GeneratedImage - результат успешной генерации.
type GeneratedImage struct {
	Data     []byte
	MimeType string
	Model    string // Имя модели, которая выдала изображение
}

// ImageModel - один кандидат в списке перебора.
type ImageModel interface {
	Name() string
	Generate(ctx context.Context, req ImageRequest) (*GeneratedImage, error)
}

// Generator - интерфейс клиента генерации для сервисного слоя.
//
//go:generate mockery --name Generator --output ../mocks --outpkg mocks --case=underscore
type Generator interface {
	// Generate перебирает модели по порядку и возвращает первое полученное
	// изображение. Исчерпание всех моделей дает models.ErrAllModelsFailed;
	// отмена контекста возвращает ошибку контекста без продолжения перебора.
	Generate(ctx context.Context, scenePrompt string, references []models.CharacterReference) (*GeneratedImage, error)
}

// BuildReferenceScenePrompt строит текст запроса с привязкой персонажей к
// референсным изображениям. Нумерация инструкций совпадает с порядком
// бинарных частей (с единицы). Для пустого ростера возвращает пустую строку.
func BuildReferenceScenePrompt(scenePrompt string, references []models.CharacterReference) string {
	if len(references) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Style: ")
	sb.WriteString(referenceStyleBase)
	sb.WriteString("\n\nCharacters (maintain exact appearance from reference images):\n")
	for i, ref := range references {
		fmt.Fprintf(&sb, "%d. %s: Reference image %d shows this character\n", i+1, ref.Name, i+1)
	}
	sb.WriteString("\nScene: ")
	sb.WriteString(scenePrompt)
	sb.WriteString("\n\n")
	sb.WriteString(referenceComposition)
	sb.WriteString("\n")
	sb.WriteString(referenceTechnical)
	return sb.String()
}

// BuildPlainScenePrompt строит описательный текст запроса без привязки к
// референсам. Внешность персонажей, когда она известна, передается словами.
func BuildPlainScenePrompt(scenePrompt string, references []models.CharacterReference, styleSuffix string) string {
	parts := []string{
		plainStyleBase,
		"Scene: " + scenePrompt,
	}

	if len(references) > 0 {
		descriptions := make([]string, 0, len(references))
		for _, ref := range references {
			descriptions = append(descriptions, ref.Name+": "+ref.Description)
		}
		parts = append(parts, "Characters should look like: "+strings.Join(descriptions, "; "))
	}

	parts = append(parts,
		"Make it suitable for children aged 6-10",
		"Use bright, warm colors",
		"Safe and family-friendly content",
		plainQualityRequirements,
	)

	prompt := strings.Join(parts, ". ")
	if styleSuffix != "" {
		prompt += styleSuffix
	}
	return prompt
}

// BuildCharacterPortraitPrompt строит промт референсного портрета персонажа.
// Портрет рисуется на белом фоне без лишних деталей, чтобы моделям было
// проще переносить внешность с референса на сцены.
func BuildCharacterPortraitPrompt(description string) string {
	return "Simple Disney-Pixar character portrait, minimalist 2D cartoon style, basic rounded features.\n\n" +
		description +
		"\n\nCreate a small, simple character reference image. Basic cartoon portrait, minimal details, clean style, small size. White background, no complex elements, just the character."
}

// truncateRunes усекает строку до max рун, добавляя многоточие.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
