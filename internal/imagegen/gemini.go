package imagegen

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"book-server/internal/models"
)

const defaultImageMimeType = "image/png"

// geminiModel - кандидат генерации через Gemini. Поддерживает референсные
// изображения: бинарные части идут перед единственной текстовой частью,
// нумерация в тексте совпадает с порядком частей.
type geminiModel struct {
	client *genai.Client
	name   string
}

var _ ImageModel = (*geminiModel)(nil)

func (m *geminiModel) Name() string {
	return m.name
}

// Generate выполняет один запрос к модели. Ответ сканируется по частям,
// берется первая часть с изображением; ответ без изображения считается
// ошибкой, чтобы перебор перешел к следующему кандидату.
func (m *geminiModel) Generate(ctx context.Context, req ImageRequest) (*GeneratedImage, error) {
	prompt := req.PlainPrompt
	var parts []*genai.Part
	if len(req.References) > 0 {
		prompt = req.ReferencePrompt
		for _, ref := range req.References {
			mime := ref.MimeType
			if mime == "" {
				mime = defaultImageMimeType
			}
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: ref.ImageBytes}})
		}
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	generateConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.name, contents, generateConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: в ответе Gemini нет кандидатов", models.ErrImageGenerationFailed)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = defaultImageMimeType
			}
			return &GeneratedImage{
				Data:     part.InlineData.Data,
				MimeType: mime,
				Model:    m.name,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: в ответе Gemini нет части с изображением", models.ErrImageGenerationFailed)
}
