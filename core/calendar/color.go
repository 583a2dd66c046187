package calendar

// PaletteSize is the number of distinct bar colors.
const PaletteSize = 8

// palette is the fixed bar color cycle. Order matters: an event's color is
// picked by ID so it stays stable across renders.
var palette = [PaletteSize]string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#22c55e", // green
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#06b6d4", // cyan
	"#ec4899", // pink
	"#84cc16", // lime
}

// Color returns the palette entry for an event ID, stable across renders.
func Color(eventID int) string {
	idx := eventID % PaletteSize
	if idx < 0 {
		idx += PaletteSize
	}
	return palette[idx]
}
