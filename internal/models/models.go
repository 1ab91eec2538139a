package models

import (
	"time"

	"github.com/google/uuid"
)

// IllustrationStatus определяет возможные статусы задачи иллюстрации.
// Совпадает со значениями колонки status в таблице illustration_jobs.
type IllustrationStatus string

const (
	IllustrationStatusPending    IllustrationStatus = "pending"    // Создана, попыток генерации еще не было
	IllustrationStatusGenerating IllustrationStatus = "generating" // Попытка генерации выполняется
	IllustrationStatusReady      IllustrationStatus = "ready"      // Успех, URL изображения записан
	IllustrationStatusError      IllustrationStatus = "error"      // Все модели исчерпаны либо загрузка не удалась
)

// IsTerminal сообщает, является ли статус конечным (ready/error).
func (s IllustrationStatus) IsTerminal() bool {
	return s == IllustrationStatusReady || s == IllustrationStatusError
}

// IsValidIllustrationStatus проверяет, является ли строка допустимым статусом.
func IsValidIllustrationStatus(s IllustrationStatus) bool {
	switch s {
	case IllustrationStatusPending, IllustrationStatusGenerating, IllustrationStatusReady, IllustrationStatusError:
		return true
	default:
		return false
	}
}

// Book представляет книгу в базе данных.
type Book struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	CoverURL         *string   `json:"cover_url,omitempty" db:"cover_url"` // Указатель, так как может быть NULL; пайплайн пишет только set-if-absent
	WordsPerChapter  int       `json:"words_per_chapter" db:"words_per_chapter"`
	ImagesPerChapter int       `json:"images_per_chapter" db:"images_per_chapter"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Character представляет персонажа книги вместе с его референсным портретом.
// Инвариант: HasReference == true тогда и только тогда, когда ReferenceImage
// и ReferencePrompt оба не NULL (продублирован CHECK-ограничением в БД).
type Character struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	BookID            uuid.UUID  `json:"book_id" db:"book_id"`
	Name              string     `json:"name" db:"name"`
	Description       string     `json:"description" db:"description"`
	VisualDescription string     `json:"visual_description" db:"visual_description"`
	ReferenceImage    []byte     `json:"-" db:"reference_image"`                               // PNG-байты портрета, не отдаем в JSON
	ReferencePrompt   *string    `json:"reference_prompt,omitempty" db:"reference_prompt"`     // Промт, которым портрет был сгенерирован
	ReferenceURL      *string    `json:"reference_url,omitempty" db:"reference_url"`           // Опубликованная копия портрета (может нести cache-busting суффикс)
	HasReference      bool       `json:"has_reference" db:"has_reference"`
	ReferenceCreated  *time.Time `json:"reference_created_at,omitempty" db:"reference_created_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// ReferenceConsistent проверяет инвариант согласованности референса перед записью.
func (c *Character) ReferenceConsistent() bool {
	hasPair := len(c.ReferenceImage) > 0 && c.ReferencePrompt != nil && *c.ReferencePrompt != ""
	return c.HasReference == hasPair
}

// Chapter представляет главу книги. Content хранит нормализованный текст:
// маркеры иллюстраций уже заменены плейсхолдерами [IMG:n]. После вставки
// контент неизменяем; URL иллюстраций подставляются только при чтении.
type Chapter struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	Number    int       `json:"number" db:"number"` // Монотонно растет, уникален внутри книги
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	WordCount int       `json:"word_count" db:"word_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IllustrationJob представляет одну задачу генерации иллюстрации.
// Ровно одна задача существует на каждый маркер, найденный в тексте главы:
// пара (chapter_id, position) уникальна.
type IllustrationJob struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	ChapterID    uuid.UUID          `json:"chapter_id" db:"chapter_id"`
	Position     int                `json:"position" db:"position"`           // 0-based, совпадает с n в [IMG:n]
	TextPosition int                `json:"text_position" db:"text_position"` // Байтовый офсет маркера в исходном тексте
	Prompt       string             `json:"prompt" db:"prompt"`
	Status       IllustrationStatus `json:"status" db:"status"`
	ImageURL     *string            `json:"image_url,omitempty" db:"image_url"`         // Заполняется только в статусе ready
	ErrorDetails *string            `json:"error_details,omitempty" db:"error_details"` // Заполняется только в статусе error
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}

// CharacterReference - разрешенный референс персонажа для передачи в генерацию
// изображений: байты портрета вместе с описанием внешности.
type CharacterReference struct {
	Name        string
	Description string
	ImageBytes  []byte
	MimeType    string
}

// RenderedIllustration описывает состояние одной позиции иллюстрации при
// чтении главы. Для статусов, отличных от ready, URL пуст.
type RenderedIllustration struct {
	Position int                `json:"position"`
	Status   IllustrationStatus `json:"status"`
	ImageURL string             `json:"image_url,omitempty"`
}

// RenderedChapter - глава, подготовленная к показу: плейсхолдеры готовых
// иллюстраций заменены на URL, остальные позиции перечислены отдельно.
type RenderedChapter struct {
	Chapter       Chapter                `json:"chapter"`
	Content       string                 `json:"content"`
	Illustrations []RenderedIllustration `json:"illustrations"`
}

// ChapterSummary - строка списка глав: метаданные без текста плюс
// состояние иллюстраций главы.
type ChapterSummary struct {
	ID            uuid.UUID              `json:"id"`
	Number        int                    `json:"number"`
	Title         string                 `json:"title"`
	WordCount     int                    `json:"word_count"`
	CreatedAt     time.Time              `json:"created_at"`
	Illustrations []RenderedIllustration `json:"illustrations"`
}

// BookOverview - книга вместе со сводкой по всем ее главам.
type BookOverview struct {
	Book     Book             `json:"book"`
	Chapters []ChapterSummary `json:"chapters"`
}
