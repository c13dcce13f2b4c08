package splitter

import (
	"errors"
	"strings"
	"testing"
)

// reassemble drops each chunk's leading overlap and concatenates the rest.
func reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		runes := []rune(c)
		if i > 0 {
			if len(runes) <= overlap {
				continue
			}
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

// TestSplit_Reconstruction verifies that segmentation loses no text for a
// range of texts and window parameters.
func TestSplit_Reconstruction(t *testing.T) {
	texts := []string{
		"Bonds pay periodic coupon interest and return principal at maturity.",
		strings.Repeat("abcdefghij", 137),
		"short",
		"ünïcödé – text with multi-byte runes € 你好世界",
	}
	params := []struct{ maxSize, overlap int }{
		{20, 5},
		{20, 0},
		{100, 30},
		{7, 6},
	}

	for _, text := range texts {
		for _, p := range params {
			chunks, err := Split(text, p.maxSize, p.overlap)
			if err != nil {
				t.Fatalf("Split(%d, %d) failed: %v", p.maxSize, p.overlap, err)
			}

			var raw []string
			for i, c := range chunks {
				if c.Ord != i {
					t.Errorf("chunk %d has Ord %d", i, c.Ord)
				}
				if n := len([]rune(c.Text)); n > p.maxSize {
					t.Errorf("chunk %d has %d runes, max is %d", i, n, p.maxSize)
				}
				raw = append(raw, c.Text)
			}

			if got := reassemble(raw, p.overlap); got != text {
				t.Errorf("Split(%d, %d) does not reconstruct input:\ngot  %q\nwant %q",
					p.maxSize, p.overlap, got, text)
			}
		}
	}
}

// TestSplit_BondScenario pins down chunk counts for the canonical example.
func TestSplit_BondScenario(t *testing.T) {
	text := "Bonds pay periodic coupon interest and return principal at maturity."

	chunks, err := Split(text, 20, 5)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// 68 runes, step 15: chunks start at 0, 15, 30, 45, 60.
	if len(chunks) != 5 {
		t.Fatalf("Expected 5 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "Bonds pay periodic c" {
		t.Errorf("First chunk: got %q", chunks[0].Text)
	}
	if !strings.HasSuffix(chunks[len(chunks)-1].Text, "maturity.") {
		t.Errorf("Last chunk should end the sentence, got %q", chunks[len(chunks)-1].Text)
	}

	// Consecutive chunks share exactly the overlap region.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		tail := string(prev[len(prev)-5:])
		head := string(cur[:5])
		if tail != head {
			t.Errorf("chunks %d/%d overlap mismatch: %q vs %q", i-1, i, tail, head)
		}
	}
}

// TestSplit_Deterministic verifies identical output across invocations.
func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox. ", 50)

	a, err := Split(text, 64, 16)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	b, err := Split(text, 64, 16)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

// TestSplit_InvalidParams verifies configuration errors are rejected up front.
func TestSplit_InvalidParams(t *testing.T) {
	cases := []struct {
		name     string
		maxSize  int
		overlap  int
	}{
		{"overlap equals max", 10, 10},
		{"overlap exceeds max", 10, 15},
		{"negative overlap", 10, -1},
		{"zero max", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split("some text", tc.maxSize, tc.overlap)
			if !errors.Is(err, ErrBadChunkParams) {
				t.Errorf("expected ErrBadChunkParams, got %v", err)
			}
		})
	}
}

// TestSplit_EmptyText verifies empty input yields no chunks and no error.
func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", 20, 5)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}
