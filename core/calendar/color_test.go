package calendar

import "testing"

func Test_Color(t *testing.T) {
	if Color(0) != Color(PaletteSize) {
		t.Error("colors must cycle with the palette size")
	}
	if Color(3) != Color(3) {
		t.Error("color must be stable for the same event id")
	}
	if Color(1) == Color(2) {
		t.Error("adjacent ids should differ")
	}
	// ids are positive in practice, but never panic on odd input
	if Color(-1) == "" {
		t.Error("negative id produced no color")
	}
	seen := make(map[string]bool)
	for id := 0; id < PaletteSize; id++ {
		seen[Color(id)] = true
	}
	if len(seen) != PaletteSize {
		t.Errorf("palette has %d distinct colors; want %d", len(seen), PaletteSize)
	}
}
