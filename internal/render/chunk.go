package render

// MaxMessageRunes is the chunk size for long responses. Telegram rejects
// messages over 4096 characters, the bot stays under that with a round
// 4000. Counted in runes, not bytes, so Cyrillic text never splits
// mid-character.
const MaxMessageRunes = 4000

// Chunk splits text into consecutive slices of at most MaxMessageRunes
// runes. Concatenating the result reproduces the input exactly. Text at
// or under the limit comes back as a single element.
func Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) <= MaxMessageRunes {
		return []string{text}
	}

	parts := make([]string, 0, (len(runes)+MaxMessageRunes-1)/MaxMessageRunes)
	for i := 0; i < len(runes); i += MaxMessageRunes {
		end := i + MaxMessageRunes
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}
