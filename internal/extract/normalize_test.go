package extract

import (
	"strings"
	"testing"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	n := NewNormalizer(nil)

	doc := n.Normalize("  Germany \t delivered\n\n 18   tanks.  ")
	if doc.Text != "Germany delivered 18 tanks." {
		t.Errorf("Unexpected text: %q", doc.Text)
	}
	if doc.Lower != strings.ToLower(doc.Text) {
		t.Error("Lower buffer does not mirror Text")
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewNormalizer(nil)

	doc := n.Normalize("")
	if !doc.Empty() {
		t.Error("Expected empty buffer for empty input")
	}
}

func TestNormalize_UndecodableInput(t *testing.T) {
	n := NewNormalizer(nil)

	// Mostly invalid bytes must yield an empty buffer, not garbage
	doc := n.Normalize(strings.Repeat("\xff\xfe", 100))
	if !doc.Empty() {
		t.Errorf("Expected empty buffer for undecodable input, got %q", doc.Text)
	}

	// A few stray bytes in otherwise valid text are tolerated
	doc = n.Normalize("delivered \xff tanks")
	if doc.Empty() {
		t.Error("Expected salvageable text to survive")
	}
	if !strings.Contains(doc.Text, "delivered") {
		t.Errorf("Expected original words to survive, got %q", doc.Text)
	}
}

func TestNormalize_LowerKeepsByteOffsets(t *testing.T) {
	n := NewNormalizer(nil)

	// U+212A and U+1E9E shrink under a plain ToLower; the aligned fold
	// keeps them as-is so spans work in both buffers
	doc := n.Normalize("Readings near 300K on Straẞe 9. Leopard 2 tanks arrived.")
	if len(doc.Lower) != len(doc.Text) {
		t.Fatalf("Lower is %d bytes, Text is %d", len(doc.Lower), len(doc.Text))
	}
	if !strings.Contains(doc.Lower, "leopard 2 tanks") {
		t.Errorf("Plain letters not lowered: %q", doc.Lower)
	}
	idx := strings.Index(doc.Lower, "arrived")
	if idx < 0 || doc.Text[idx:idx+len("arrived")] != "arrived" {
		t.Errorf("Lower offset does not line up with Text: %q", doc.Text)
	}
}

func TestNormalize_SentenceSpans(t *testing.T) {
	n := NewNormalizer(nil)

	doc := n.Normalize("First sentence. Second one! And a third?")
	if len(doc.Sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(doc.Sentences), doc.Sentences)
	}

	prev := 0
	for i, s := range doc.Sentences {
		if s.Start < prev {
			t.Errorf("Sentence %d not monotonic: %v", i, doc.Sentences)
		}
		if s.End <= s.Start || s.End > len(doc.Text) {
			t.Errorf("Sentence %d has bad bounds: %v", i, s)
		}
		prev = s.End
	}

	first := doc.Text[doc.Sentences[0].Start:doc.Sentences[0].End]
	if first != "First sentence." {
		t.Errorf("Unexpected first sentence: %q", first)
	}
}
