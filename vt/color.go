package vt

// ColorKind tags the Color variant.
type ColorKind uint8

const (
	ColorUnknown ColorKind = iota
	ColorNamed
	ColorRGB
)

// NamedColor is one of the fixed palette slots.
type NamedColor uint8

const (
	Foreground NamedColor = iota
	Background
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite

	// NumNamedColors is the number of palette slots.
	NumNamedColors = int(BrightWhite) + 1
)

// Color is a cell color as the engine records it: a palette slot, an
// explicit RGB triple, or a value the engine could not classify.
type Color struct {
	Kind    ColorKind
	Name    NamedColor
	R, G, B uint8
}

func Named(n NamedColor) Color { return Color{Kind: ColorNamed, Name: n} }

func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

var (
	DefaultFG = Named(Foreground)
	DefaultBG = Named(Background)
)

// indexedColor maps an xterm 256-color index. 0-15 are palette slots, 16-231
// the 6x6x6 cube and 232-255 the gray ramp.
func indexedColor(n int) Color {
	switch {
	case n < 0 || n > 255:
		return Color{Kind: ColorUnknown}
	case n < 8:
		return Named(Black + NamedColor(n))
	case n < 16:
		return Named(BrightBlack + NamedColor(n-8))
	case n < 232:
		n -= 16
		levels := [6]uint8{0, 95, 135, 175, 215, 255}
		return RGB(levels[n/36], levels[(n/6)%6], levels[n%6])
	default:
		v := uint8(8 + (n-232)*10)
		return RGB(v, v, v)
	}
}

// Flags are the visual attributes of a cell.
type Flags uint16

const (
	FlagBold Flags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagInverse
	FlagHidden
	FlagStrike
	FlagWide       // first half of a double-width rune
	FlagWideSpacer // placeholder occupying the second column of a wide rune
)

func (f Flags) Has(mask Flags) bool { return f&mask != 0 }

// Style is the pen used for newly written cells.
type Style struct {
	FG    Color
	BG    Color
	Flags Flags
}

var DefaultStyle = Style{FG: DefaultFG, BG: DefaultBG}

type Cell struct {
	Ch    rune
	Style Style
}

var blankCell = Cell{Ch: ' ', Style: DefaultStyle}
