package textgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"book-server/internal/models"
)

// Бюджеты контекста для промта. Полная история книги в промт не помещается,
// поэтому каждая глава усекается, а окно истории ограничено по токенам.
const (
	maxChapterContextRunes = 200  // Максимум рун содержимого одной главы в контексте
	historyTokenBudget     = 1200 // Общий бюджет токенов на блок предыдущих глав
	fallbackEncodingName   = "cl100k_base"
)

// systemPromptTemplate - системный промт генерации главы.
// {{IMAGE_COUNT}} заменяется настройкой книги images_per_chapter.
const systemPromptTemplate = `Ты - мастер создания детских историй. Пиши добрые, понятные и увлекательные истории для детей 6-10 лет.

Принципы написания:
- Простой образный язык и короткие предложения.
- Каждая глава продолжает общий сюжет и заканчивается мягким намеком на продолжение.
- Персонажи ведут себя последовательно и узнаваемо от главы к главе.
- Не пересказывай предыдущие главы, сразу продолжай историю.

Ограничения:
- Без насилия, жестокости и пугающих сцен.
- Без сложных терминов и взрослых тем.

Правила для иллюстраций:
- Вставь в текст главы ровно {{IMAGE_COUNT}} меток вида [MARKER: краткое описание сцены].
- Первая метка не может стоять в самом начале главы, последняя - в самом конце.
- Описание сцены опирается только на события, которые уже произошли в тексте до метки.
- Не упоминай метки в самом повествовании и не используй квадратные скобки ни для чего другого.

В ответе верни только текст главы с метками, без заголовка и без пояснений.`

// userPromptTemplate - пользовательский промт с контекстом книги.
const userPromptTemplate = `Напиши главу детской книги длиной примерно {{WORD_COUNT}} слов.

Название: {{BOOK_TITLE}}
Описание: {{BOOK_DESCRIPTION}}

Персонажи:
{{CHARACTERS}}

Предыдущие главы:
{{PREVIOUS_CHAPTERS}}

Тема этой главы: {{CHAPTER_HINT}}`

const defaultChapterHint = "Продолжи историю интересным и захватывающим образом"

// ChapterPromptInput - контекст книги для построения промта очередной главы.
type ChapterPromptInput struct {
	Book           *models.Book
	Characters     []*models.Character
	RecentChapters []*models.Chapter // Ожидается порядок от новых к старым (как отдает ListRecent)
	Hint           string
}

// PromptBuilder собирает системный и пользовательский промты генерации главы
// и ограничивает блок истории по токенам.
type PromptBuilder struct {
	encoder *tiktoken.Tiktoken // nil, если токенизатор недоступен
	logger  *zap.Logger
}

// NewPromptBuilder создает построитель промтов. Токенизатор подбирается по
// имени модели, при неудаче берется cl100k_base; если недоступен и он,
// количество токенов оценивается по длине текста.
func NewPromptBuilder(model string, logger *zap.Logger) *PromptBuilder {
	log := logger.Named("PromptBuilder")

	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		log.Warn("Tokenizer for model not found, falling back to default encoding",
			zap.String("model", model),
			zap.String("fallback", fallbackEncodingName),
			zap.Error(err))
		encoder, err = tiktoken.GetEncoding(fallbackEncodingName)
		if err != nil {
			log.Warn("Fallback tokenizer unavailable, token counts will be estimated", zap.Error(err))
			encoder = nil
		}
	}

	return &PromptBuilder{
		encoder: encoder,
		logger:  log,
	}
}

// CountTokens возвращает количество токенов в тексте. Без токенизатора
// используется грубая оценка ~4 байта на токен.
func (b *PromptBuilder) CountTokens(text string) int {
	if b.encoder == nil {
		return len(text) / 4
	}
	return len(b.encoder.Encode(text, nil, nil))
}

// BuildSystemPrompt возвращает системный промт с инструкцией вставить
// ровно imagesPerChapter меток иллюстраций.
func (b *PromptBuilder) BuildSystemPrompt(imagesPerChapter int) string {
	return strings.ReplaceAll(systemPromptTemplate, "{{IMAGE_COUNT}}", strconv.Itoa(imagesPerChapter))
}

// BuildUserPrompt собирает пользовательский промт из метаданных книги,
// списка персонажей, окна предыдущих глав и подсказки пользователя.
func (b *PromptBuilder) BuildUserPrompt(in ChapterPromptInput) string {
	hint := strings.TrimSpace(in.Hint)
	if hint == "" {
		hint = defaultChapterHint
	}

	replacer := strings.NewReplacer(
		"{{WORD_COUNT}}", strconv.Itoa(in.Book.WordsPerChapter),
		"{{BOOK_TITLE}}", in.Book.Title,
		"{{BOOK_DESCRIPTION}}", in.Book.Description,
		"{{CHARACTERS}}", formatCharacters(in.Characters),
		"{{PREVIOUS_CHAPTERS}}", b.formatHistory(in.RecentChapters),
		"{{CHAPTER_HINT}}", hint,
	)
	prompt := replacer.Replace(userPromptTemplate)

	b.logger.Debug("User prompt built",
		zap.String("book_id", in.Book.ID.String()),
		zap.Int("characters", len(in.Characters)),
		zap.Int("history_chapters", len(in.RecentChapters)),
		zap.Int("prompt_tokens_estimate", b.CountTokens(prompt)))

	return prompt
}

// formatCharacters описывает состав персонажей для промта.
func formatCharacters(characters []*models.Character) string {
	if len(characters) == 0 {
		return "Персонажей пока нет."
	}

	var sb strings.Builder
	for i, character := range characters {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Персонаж: ")
		sb.WriteString(character.Name)
		sb.WriteString("\nОписание: ")
		sb.WriteString(character.Description)
		if character.VisualDescription != "" {
			sb.WriteString("\nВнешность: ")
			sb.WriteString(character.VisualDescription)
		}
	}
	return sb.String()
}

// formatHistory собирает блок предыдущих глав. Главы приходят от новых к
// старым; берем от самой свежей назад, пока укладываемся в бюджет токенов,
// и возвращаем в хронологическом порядке. Содержимое каждой главы усекается.
func (b *PromptBuilder) formatHistory(recent []*models.Chapter) string {
	if len(recent) == 0 {
		return "Это первая глава книги."
	}

	entries := make([]string, 0, len(recent))
	budget := historyTokenBudget
	for _, chapter := range recent {
		title := chapter.Title
		if title == "" {
			title = "Без названия"
		}
		entry := fmt.Sprintf("Глава %d: %s\n%s", chapter.Number, title, truncateRunes(chapter.Content, maxChapterContextRunes))

		cost := b.CountTokens(entry)
		if cost > budget && len(entries) > 0 {
			break
		}
		budget -= cost
		entries = append(entries, entry)
		if budget <= 0 {
			break
		}
	}

	// Разворачиваем в хронологический порядок
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return strings.Join(entries, "\n\n")
}

// truncateRunes усекает строку до max рун, добавляя многоточие.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// ChapterTitle возвращает заголовок главы по ее номеру.
func ChapterTitle(number int) string {
	return fmt.Sprintf("Глава %d", number)
}

// CountWords считает слова в тексте по пробельным разделителям.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
