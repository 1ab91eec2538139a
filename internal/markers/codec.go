// Package markers реализует мини-язык маркеров иллюстраций.
//
// Генератор текста вставляет в главу теги вида [MARKER: описание сцены].
// Codec извлекает их и заменяет на стабильные плейсхолдеры [IMG:n],
// по которым иллюстрации подставляются при рендеринге главы.
package markers

import (
	"fmt"
	"strings"
)

// markerKeyword ключевое слово маркера, сравнивается без учета регистра.
const markerKeyword = "[MARKER:"

// placeholderPrefix префикс плейсхолдера в нормализованном тексте.
const placeholderPrefix = "[IMG:"

// Marker описывает один маркер иллюстрации, найденный в сыром тексте.
type Marker struct {
	Position     int    // Порядковый номер маркера (0-based), совпадает с n в [IMG:n]
	Prompt       string // Описание сцены без окружающих пробелов
	TextPosition int    // Байтовое смещение начала маркера в исходном тексте
}

// Placeholder возвращает плейсхолдер иллюстрации для указанной позиции.
func Placeholder(position int) string {
	return fmt.Sprintf("[IMG:%d]", position)
}

// Parse сканирует сырой текст слева направо за один проход, извлекает маркеры
// и заменяет каждый на плейсхолдер с его порядковым номером.
//
// Содержимое маркера читается до ближайшей закрывающей скобки ']'.
// Незакрытый или искаженный маркер не считается ошибкой и остается
// обычным текстом. Функция чистая: один и тот же вход всегда дает
// один и тот же результат.
func Parse(raw string) (string, []Marker) {
	var sb strings.Builder
	sb.Grow(len(raw))

	found := make([]Marker, 0, 4)

	i := 0
	for i < len(raw) {
		if raw[i] == '[' && hasKeywordPrefix(raw[i:]) {
			rest := raw[i+len(markerKeyword):]
			end := strings.IndexByte(rest, ']')
			if end >= 0 {
				found = append(found, Marker{
					Position:     len(found),
					Prompt:       strings.TrimSpace(rest[:end]),
					TextPosition: i,
				})
				sb.WriteString(Placeholder(len(found) - 1))
				i += len(markerKeyword) + end + 1
				continue
			}
			// Закрывающей скобки нет: маркер не закрыт, пишем текст как есть
		}
		sb.WriteByte(raw[i])
		i++
	}

	return sb.String(), found
}

// hasKeywordPrefix проверяет, начинается ли s с ключевого слова маркера
// без учета регистра. Ключевое слово состоит только из ASCII символов.
func hasKeywordPrefix(s string) bool {
	if len(s) < len(markerKeyword) {
		return false
	}
	return strings.EqualFold(s[:len(markerKeyword)], markerKeyword)
}

// Render подставляет значения из images вместо плейсхолдеров [IMG:n]
// в нормализованном тексте. Плейсхолдеры без значения в карте остаются
// как есть, чтобы читающая сторона видела незавершенные позиции.
func Render(normalized string, images map[int]string) string {
	if len(images) == 0 {
		return normalized
	}

	var sb strings.Builder
	sb.Grow(len(normalized))

	i := 0
	for i < len(normalized) {
		if normalized[i] == '[' {
			if pos, width, ok := parsePlaceholder(normalized[i:]); ok {
				if url, mapped := images[pos]; mapped {
					sb.WriteString(url)
				} else {
					sb.WriteString(normalized[i : i+width])
				}
				i += width
				continue
			}
		}
		sb.WriteByte(normalized[i])
		i++
	}

	return sb.String()
}

// PlaceholderCount возвращает количество корректных плейсхолдеров [IMG:n]
// в нормализованном тексте.
func PlaceholderCount(normalized string) int {
	count := 0
	i := 0
	for i < len(normalized) {
		if normalized[i] == '[' {
			if _, width, ok := parsePlaceholder(normalized[i:]); ok {
				count++
				i += width
				continue
			}
		}
		i++
	}
	return count
}

// parsePlaceholder читает плейсхолдер [IMG:n] с начала строки и возвращает
// позицию и полную ширину плейсхолдера в байтах. Плейсхолдер обязан
// содержать хотя бы одну цифру и закрываться скобкой сразу после цифр.
func parsePlaceholder(s string) (position, width int, ok bool) {
	if !strings.HasPrefix(s, placeholderPrefix) {
		return 0, 0, false
	}

	j := len(placeholderPrefix)
	start := j
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		position = position*10 + int(s[j]-'0')
		j++
	}
	if j == start || j >= len(s) || s[j] != ']' {
		return 0, 0, false
	}

	return position, j + 1, true
}
