package textnorm

import "testing"

func TestFold_Confusables(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cyrillic scam", "ѕсаm", "scam"},
		{"cyrillic lowercase", "сарыx", "capыx"},
		{"cyrillic uppercase", "СРАМ", "cpam"},
		{"greek lowercase", "κρυρτο", "kpypto"},
		{"greek uppercase", "ΒΕΤ", "bet"},
		{"armenian", "ոօ", "no"},
		{"dotless i", "ı", "i"},
		{"dotted capital i", "İ", "i"},
		{"latin untouched", "hello world", "hello world"},
		{"digits untouched", "1234", "1234"},
		{"mixed", "frее сrypto", "free crypto"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fold(tt.input)
			if got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFold_UnmappedBlockRunesPassThrough(t *testing.T) {
	// ж (U+0436) is Cyrillic but has no Latin lookalike mapping.
	if got := Fold("ж"); got != "ж" {
		t.Errorf("Fold(%q) = %q, want unchanged", "ж", got)
	}
	// CJK is outside every foldable block.
	if got := Fold("日本語"); got != "日本語" {
		t.Errorf("Fold(%q) = %q, want unchanged", "日本語", got)
	}
}
