package render

import (
	"strings"
	"testing"
)

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	text := "короткое сообщение"
	parts := Chunk(text)

	if len(parts) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(parts))
	}
	if parts[0] != text {
		t.Errorf("Chunk altered text: %q", parts[0])
	}
}

func TestChunk_ExactLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("я", MaxMessageRunes)
	parts := Chunk(text)

	if len(parts) != 1 {
		t.Errorf("Text at the limit must stay whole, got %d chunks", len(parts))
	}
}

func TestChunk_SplitsOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// Cyrillic is two bytes per rune, so byte-based slicing would split
	// characters in half
	text := strings.Repeat("ю", MaxMessageRunes+500)
	parts := Chunk(text)

	if len(parts) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(parts))
	}

	if n := len([]rune(parts[0])); n != MaxMessageRunes {
		t.Errorf("First chunk has %d runes, want %d", n, MaxMessageRunes)
	}
	if n := len([]rune(parts[1])); n != 500 {
		t.Errorf("Second chunk has %d runes, want 500", n)
	}

	for i, part := range parts {
		if !strings.HasPrefix(part, "ю") {
			t.Errorf("Chunk %d starts with broken rune: %q", i, part[:4])
		}
	}
}

func TestChunk_ConcatenationReproducesInput(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 900; i++ {
		b.WriteString("🎓 Семестр 1: математика (6 кредитов)\n")
	}
	text := b.String()

	parts := Chunk(text)
	if len(parts) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(parts))
	}

	if strings.Join(parts, "") != text {
		t.Error("Concatenated chunks differ from input")
	}

	for i, part := range parts[:len(parts)-1] {
		if n := len([]rune(part)); n != MaxMessageRunes {
			t.Errorf("Chunk %d has %d runes, want exactly %d", i, n, MaxMessageRunes)
		}
	}
}

func TestChunk_EmptyText(t *testing.T) {
	t.Parallel()

	parts := Chunk("")
	if len(parts) != 1 || parts[0] != "" {
		t.Errorf("Chunk(\"\") = %#v, want one empty chunk", parts)
	}
}
