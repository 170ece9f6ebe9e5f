package annotate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

// Summary styles. Anything else falls back to the geopolitical default.
const (
	StyleEngaging = "engaging"
	StyleFormal   = "formal"
)

const (
	promptQuoteMinRunes = 30
	promptQuoteCount    = 3
	hashtagContentRunes = 1000
	summaryTemperature  = 0.7
	summaryMaxTokens    = 500
	hashtagsTemperature = 0.5
	hashtagsMaxTokens   = 150
)

// quotesBlock renders up to three quotes longer than 30 characters for
// inclusion in the summary prompt.
func quotesBlock(quotes []string) string {
	var important []string
	for _, q := range quotes {
		if utf8.RuneCountInString(q) > promptQuoteMinRunes {
			important = append(important, q)
		}
		if len(important) == promptQuoteCount {
			break
		}
	}
	if len(important) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nВажные цитаты:\n")
	for i, q := range important {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- \"%s\"", q)
	}
	return b.String()
}

// BuildSummaryPrompt renders the summarization prompt for the given style.
// The template text is part of the caching contract.
func BuildSummaryPrompt(a *domain.Article, style string) string {
	quotes := quotesBlock(a.Quotes)

	switch style {
	case StyleEngaging:
		return fmt.Sprintf(`Ты - редактор финансового новостного канала. Твоя задача - создать лаконичную новостную сводку для Telegram-канала.

ИСХОДНАЯ НОВОСТЬ:
Заголовок: %s
Содержание: %s%s

ТРЕБОВАНИЯ К ФОРМАТУ:
1. Начни с 1-2 эмодзи, затем добавь хештеги по теме (#компания #тема #регион)
2. Основной текст должен быть кратким и информативным (2-4 предложения)
3. Разделяй абзацы пустой строкой для лучшей читабельности
4. Если есть цитаты, выделяй их отдельной строкой, начиная с имени автора и двоеточия
5. Для важных цифр и показателей используй жирный шрифт (например, **+15%%**)

ТРЕБОВАНИЯ К СОДЕРЖАНИЮ:
1. Пиши только самую важную информацию, без лишних деталей
2. Используй деловой, но понятный язык
3. Для финансовых новостей указывай конкретные цифры и проценты
4. Для геополитических новостей указывай основные заявления сторон
5. ВАЖНО: Дональд Трамп сейчас действующий президент США (с 2025 года)
6. Всегда завершай сводку полным предложением

Ответь только текстом сводки в указанном формате.`, a.Title, a.Content, quotes)

	case StyleFormal:
		return fmt.Sprintf(`Создай деловую сводку финансовой новости для Telegram-канала.

ИСХОДНАЯ НОВОСТЬ:
Заголовок: %s
Содержание: %s%s

ТРЕБОВАНИЯ К ФОРМАТУ:
1. Начни с 1-2 эмодзи, связанных с темой (🇷🇺 для России, 🇺🇸 для США, 📊 для рынков)
2. Сразу после эмодзи добавь хештеги (#компания #отчетность #регион)
3. Основной текст должен быть кратким и информативным (2-4 предложения)
4. Разделяй абзацы пустой строкой для лучшей читабельности
5. Для важных цифр используй точные значения (например, $2,1 млрд (+23%% г/г))

ТРЕБОВАНИЯ К СОДЕРЖАНИЮ:
1. Деловой и точный стиль изложения
2. Указывай конкретные цифры, проценты и факты
3. Для финансовых новостей выделяй ключевые показатели
4. Если есть цитаты руководства, выделяй их отдельной строкой
5. ВАЖНО: Дональд Трамп сейчас действующий президент США (с 2025 года)
6. Всегда завершай сводку полным предложением

Только текст сводки в указанном формате:`, a.Title, a.Content, quotes)

	default:
		return fmt.Sprintf(`Создай новостную сводку для Telegram-канала с акцентом на геополитику.

ИСХОДНАЯ НОВОСТЬ:
Заголовок: %s
Содержание: %s%s

ТРЕБОВАНИЯ К ФОРМАТУ:
1. Начни с 1-2 эмодзи, отражающих срочность или важность (⚠️ для важных, 🔥 для срочных, ✴️ для рыночных событий)
2. Добавь хештеги по теме и региону (#геополитика #страна #событие)
3. Основной текст должен быть кратким и информативным
4. Для заявлений официальных лиц используй формат "ИМЯ: цитата"
5. Разделяй разные заявления или факты пустой строкой

ТРЕБОВАНИЯ К СОДЕРЖАНИЮ:
1. Указывай только ключевые факты и заявления
2. Для рыночных событий указывай изменения цен (например, #нефть = +10%%)
3. Для геополитических новостей перечисляй основные заявления сторон
4. Используй короткие предложения и абзацы
5. ВАЖНО: Дональд Трамп сейчас действующий президент США (с 2025 года)
6. Всегда завершай сводку полным предложением

Только текст сводки в указанном формате:`, a.Title, a.Content, quotes)
	}
}

// BuildHashtagPrompt renders the hashtag-line prompt.
func BuildHashtagPrompt(a *domain.Article) string {
	existing := "нет"
	if len(a.Tags) > 0 {
		existing = strings.Join(a.Tags, ", ")
	}
	content := a.Content
	if utf8.RuneCountInString(content) > hashtagContentRunes {
		content = string([]rune(content)[:hashtagContentRunes])
	}

	return fmt.Sprintf(`Создай хештеги с эмодзи для этой новости в формате заголовка.

НОВОСТЬ:
Заголовок: %s
Содержание: %s
Существующие теги: %s

ТРЕБОВАНИЯ:
1. Начни с подходящего эмодзи флага или символа (🇷🇺 для России, 🇺🇸 для США, 💰 для финансов, ⚡ для энергетики и т.д.)
2. Хештеги на русском языке через пробел
3. Только самые релевантные темы (3-4 хештега максимум)
4. Используй популярные финансовые/экономические теги
5. Формат: 🇷🇺#санкции #россия #экономика (одной строкой)

Только строку с эмодзи и хештегами:`, a.Title, content, existing)
}
