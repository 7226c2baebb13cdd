package domain

import "testing"

func TestPaletteHasSixteenColors(t *testing.T) {
	if len(Palette) != 16 {
		t.Fatalf("palette size = %d, want 16", len(Palette))
	}
	seen := map[string]bool{}
	for _, c := range Palette {
		if !ValidColor(c.Hex, true) {
			t.Fatalf("palette color %q rejected by its own validator", c.Hex)
		}
		if seen[c.Hex] {
			t.Fatalf("duplicate palette color %q", c.Hex)
		}
		seen[c.Hex] = true
	}
}

func TestValidColor_Strict(t *testing.T) {
	cases := []struct {
		color string
		want  bool
	}{
		{"#E50000", true},
		{"#e50000", true}, // case-insensitive palette match
		{"#0000EA", true},
		{"#123456", false}, // well-formed but not in the palette
		{"#FFFFF", false},
		{"FFFFFF", false},
		{"#GGGGGG", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidColor(c.color, true); got != c.want {
			t.Fatalf("ValidColor(%q, strict) = %v, want %v", c.color, got, c.want)
		}
	}
}

func TestValidColor_Lax(t *testing.T) {
	cases := []struct {
		color string
		want  bool
	}{
		{"#123456", true},
		{"#abcdef", true},
		{"#ABCDEF", true},
		{"#12345", false},
		{"#1234567", false},
		{"#12345G", false},
		{"123456", false},
	}
	for _, c := range cases {
		if got := ValidColor(c.color, false); got != c.want {
			t.Fatalf("ValidColor(%q, lax) = %v, want %v", c.color, got, c.want)
		}
	}
}
