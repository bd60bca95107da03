package util

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "security", 10, "security"},
		{"exact length unchanged", "risk", 4, "risk"},
		{"long string truncated", "maintainability", 10, "maintai..."},
		{"tiny budget is all ellipsis", "security", 3, "..."},
		{"zero budget is all ellipsis", "security", 0, "..."},
		{"empty string unchanged", "", 10, ""},
		{"korean counted by rune", "보안 점수가 낮습니다", 6, "보안 ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSIPreservesStyling(t *testing.T) {
	styled := "\x1b[31mfeasibility looks shaky\x1b[0m"

	if got := TruncateANSI(styled, 80); got != styled {
		t.Errorf("TruncateANSI() = %q, want input unchanged when it fits", got)
	}
	if got := TruncateANSI("plain text that is clearly too long", 10); got != "plain t..." {
		t.Errorf("TruncateANSI() = %q, want %q", got, "plain t...")
	}
	if got := TruncateANSI(styled, 3); got != "..." {
		t.Errorf("TruncateANSI() = %q, want %q", got, "...")
	}
}

func TestSnippet(t *testing.T) {
	in := "security: weak\n\n  performance:\tfine\n"
	want := "security: weak performance: fine"
	if got := Snippet(in, 80); got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}
	if got := Snippet(in, 15); got != "security: we..." {
		t.Errorf("Snippet() = %q, want %q", got, "security: we...")
	}
}
