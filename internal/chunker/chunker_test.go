package chunker

import (
	"strings"
	"testing"
)

func TestChunk_CoversEntireInput(t *testing.T) {
	text := strings.Repeat("abcde", 123) // 615 chars
	chunks, err := Chunk(text, 100, 20)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	// Reconstruct by dropping the overlapped head of every chunk after the first.
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		sb.WriteString(c[20:])
	}
	if sb.String() != text {
		t.Errorf("reconstructed text does not match input")
	}
}

func TestChunk_Sizes(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		size      int
		overlap   int
		wantCount int
		wantLast  int
	}{
		{"exact multiple of step", 400, 100, 20, 5, 80},
		{"shorter than one window", 50, 100, 20, 1, 50},
		{"exactly one window", 100, 100, 20, 1, 100},
		{"one over a window", 101, 100, 20, 2, 21},
		{"no overlap", 250, 100, 0, 3, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Chunk(strings.Repeat("x", tt.length), tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("Chunk: %v", err)
			}
			if len(chunks) != tt.wantCount {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantCount)
			}
			for i, c := range chunks[:len(chunks)-1] {
				if len(c) != tt.size {
					t.Errorf("chunk %d has length %d, want %d", i, len(c), tt.size)
				}
			}
			if got := len(chunks[len(chunks)-1]); got != tt.wantLast {
				t.Errorf("last chunk has length %d, want %d", got, tt.wantLast)
			}
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	chunks, err := Chunk("", 100, 20)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for empty input, want 0", len(chunks))
	}
}

func TestChunk_InvalidArguments(t *testing.T) {
	if _, err := Chunk("text", 0, 0); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := Chunk("text", 100, 100); err == nil {
		t.Error("expected error for overlap == chunk size")
	}
	if _, err := Chunk("text", 100, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
}

func TestChunk_MultiByteBoundaries(t *testing.T) {
	text := strings.Repeat("秘密保持契約", 50) // 300 runes, 900 bytes
	chunks, err := Chunk(text, 100, 25)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	for i, c := range chunks {
		if !strings.HasPrefix(c, "秘") && !strings.HasPrefix(c, "密") &&
			!strings.HasPrefix(c, "保") && !strings.HasPrefix(c, "持") &&
			!strings.HasPrefix(c, "契") && !strings.HasPrefix(c, "約") {
			t.Errorf("chunk %d starts mid-rune: %q", i, c[:3])
		}
		if got := len([]rune(c)); got > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, got)
		}
	}
}
