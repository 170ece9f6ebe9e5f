package annotate

import (
	"strings"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

// Keyword-driven hashtag generation used when the AI hashtag call fails or
// returns nothing. Order matters: tags are emitted in table order.

var fallbackTags = []struct {
	keyword string
	tag     string
}{
	{"рубль", "#рубль"},
	{"доллар", "#доллар"},
	{"нефть", "#нефть"},
	{"газ", "#газ"},
	{"санкции", "#санкции"},
	{"россия", "#россия"},
	{"экономика", "#экономика"},
	{"банк", "#банки"},
	{"инвестиции", "#инвестиции"},
}

var defaultFallbackTags = []string{"#новости", "#экономика"}

var topicEmojis = []struct {
	emoji    string
	keywords []string
}{
	{"🇷🇺", []string{"россия", "рф", "рубль", "газпром", "роснефть"}},
	{"🇺🇸", []string{"сша", "доллар", "фрс", "америк"}},
	{"🇨🇳", []string{"китай", "юань", "пекин"}},
	{"⚡", []string{"нефть", "газ", "энергетик"}},
	{"🚫", []string{"санкции", "ограничени"}},
}

const defaultTopicEmoji = "💰"

const maxFallbackTags = 4

func topicEmoji(text string) string {
	lower := strings.ToLower(text)
	for _, topic := range topicEmojis {
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				return topic.emoji
			}
		}
	}
	return defaultTopicEmoji
}

// FallbackHashtags builds a deterministic hashtag line from keyword matches
// against the title and content, prefixed with a topic emoji. Custom tags
// from the settings are appended after the generated ones.
func FallbackHashtags(a *domain.Article, customTags string) string {
	text := strings.ToLower(a.Title + " " + a.Content)

	var tags []string
	for _, entry := range fallbackTags {
		if strings.Contains(text, entry.keyword) {
			tags = append(tags, entry.tag)
		}
		if len(tags) == maxFallbackTags {
			break
		}
	}
	if len(tags) == 0 {
		tags = defaultFallbackTags
	}

	line := topicEmoji(text) + " " + strings.Join(tags, " ")
	return appendCustomTags(line, customTags)
}

// ensureLeadingEmoji prepends a topic emoji when the AI-produced hashtag
// line carries none at all.
func ensureLeadingEmoji(line, content string) string {
	if line == "" || containsEmoji(line) {
		return line
	}

	lower := strings.ToLower(content)
	emoji := defaultTopicEmoji
	switch {
	case containsAny(lower, "россия", "рф", "рубль", "газпром"):
		emoji = "🇷🇺"
	case containsAny(lower, "сша", "доллар", "фрс"):
		emoji = "🇺🇸"
	case containsAny(lower, "китай", "юань"):
		emoji = "🇨🇳"
	}
	return emoji + line
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// appendCustomTags appends the operator-configured tags that look like
// hashtags, skipping anything already present in the line.
func appendCustomTags(line, customTags string) string {
	for _, tag := range strings.Fields(customTags) {
		if !strings.HasPrefix(tag, "#") {
			continue
		}
		if strings.Contains(line, tag) {
			continue
		}
		line += " " + tag
	}
	return line
}
