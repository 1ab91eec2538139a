package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"

	openaigo "github.com/sashabaranov/go-openai"

	"book-server/internal/models"
)

// Ограничение длины промта DALL-E (в рунах).
const dalleMaxPromptLength = 1000

// dalleModel - кандидат генерации через OpenAI Image API. Модель не
// принимает референсные изображения, поэтому всегда использует
// описательный текст без привязок.
type dalleModel struct {
	client *openaigo.Client
	name   string
}

var _ ImageModel = (*dalleModel)(nil)

func (m *dalleModel) Name() string {
	return m.name
}

// Generate выполняет один запрос к DALL-E. Ответ запрашивается в base64,
// чтобы сразу получить байты без дополнительного скачивания по URL.
func (m *dalleModel) Generate(ctx context.Context, req ImageRequest) (*GeneratedImage, error) {
	prompt := truncateRunes(req.PlainPrompt, dalleMaxPromptLength)

	resp, err := m.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         prompt,
		Model:          m.name,
		N:              1,
		Size:           openaigo.CreateImageSize1024x1024,
		Quality:        openaigo.CreateImageQualityStandard,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к DALL-E: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: в ответе DALL-E нет изображения", models.ErrImageGenerationFailed)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось декодировать ответ DALL-E: %v", models.ErrImageGenerationFailed, err)
	}

	return &GeneratedImage{
		Data:     data,
		MimeType: defaultImageMimeType,
		Model:    m.name,
	}, nil
}
