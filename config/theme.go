package config

// ColorScheme is an 18-slot terminal palette. Colors are "#rrggbb" strings so
// the settings file and the built-in themes share one format.
type ColorScheme struct {
	Name          string
	Foreground    string
	Background    string
	Black         string
	Red           string
	Green         string
	Yellow        string
	Blue          string
	Magenta       string
	Cyan          string
	White         string
	BrightBlack   string
	BrightRed     string
	BrightGreen   string
	BrightYellow  string
	BrightBlue    string
	BrightMagenta string
	BrightCyan    string
	BrightWhite   string
}

var Themes = map[string]*ColorScheme{
	"gruvbox": {
		Name:          "Gruvbox",
		Foreground:    "#ebdab1",
		Background:    "#282727",
		Black:         "#282727",
		Red:           "#cb231d",
		Green:         "#98961a",
		Yellow:        "#d69821",
		Blue:          "#458487",
		Magenta:       "#b06185",
		Cyan:          "#689c69",
		White:         "#a89883",
		BrightBlack:   "#928273",
		BrightRed:     "#fa4834",
		BrightGreen:   "#b8ba26",
		BrightYellow:  "#f9bc2f",
		BrightBlue:    "#83a497",
		BrightMagenta: "#d2859a",
		BrightCyan:    "#8ebf7b",
		BrightWhite:   "#ebdab1",
	},
	"dracula": {
		Name:          "Dracula",
		Foreground:    "#f8f8f2",
		Background:    "#282a36",
		Black:         "#21222c",
		Red:           "#ff5555",
		Green:         "#50fa7b",
		Yellow:        "#f1fa8c",
		Blue:          "#bd93f9",
		Magenta:       "#ff79c6",
		Cyan:          "#8be9fd",
		White:         "#f8f8f2",
		BrightBlack:   "#6272a4",
		BrightRed:     "#ff6e6e",
		BrightGreen:   "#69ff94",
		BrightYellow:  "#ffffa5",
		BrightBlue:    "#d6acff",
		BrightMagenta: "#ff92df",
		BrightCyan:    "#a4ffff",
		BrightWhite:   "#ffffff",
	},
	"nord": {
		Name:          "Nord",
		Foreground:    "#d8dee9",
		Background:    "#2e3440",
		Black:         "#3b4252",
		Red:           "#bf616a",
		Green:         "#a3be8c",
		Yellow:        "#ebcb8b",
		Blue:          "#81a1c1",
		Magenta:       "#b48ead",
		Cyan:          "#88c0d0",
		White:         "#e5e9f0",
		BrightBlack:   "#4c566a",
		BrightRed:     "#bf616a",
		BrightGreen:   "#a3be8c",
		BrightYellow:  "#ebcb8b",
		BrightBlue:    "#81a1c1",
		BrightMagenta: "#b48ead",
		BrightCyan:    "#8fbcbb",
		BrightWhite:   "#eceff4",
	},
	"solarized-dark": {
		Name:          "Solarized Dark",
		Foreground:    "#839496",
		Background:    "#002b36",
		Black:         "#073642",
		Red:           "#dc322f",
		Green:         "#859900",
		Yellow:        "#b58900",
		Blue:          "#268bd2",
		Magenta:       "#d33682",
		Cyan:          "#2aa198",
		White:         "#eee8d5",
		BrightBlack:   "#002b36",
		BrightRed:     "#cb4b16",
		BrightGreen:   "#586e75",
		BrightYellow:  "#657b83",
		BrightBlue:    "#839496",
		BrightMagenta: "#6c71c4",
		BrightCyan:    "#93a1a1",
		BrightWhite:   "#fdf6e3",
	},
}

// Slots returns the palette in engine slot order: foreground, background,
// then the eight standard and eight bright colors.
func (cs *ColorScheme) Slots() [18]string {
	return [18]string{
		cs.Foreground, cs.Background,
		cs.Black, cs.Red, cs.Green, cs.Yellow, cs.Blue, cs.Magenta, cs.Cyan, cs.White,
		cs.BrightBlack, cs.BrightRed, cs.BrightGreen, cs.BrightYellow,
		cs.BrightBlue, cs.BrightMagenta, cs.BrightCyan, cs.BrightWhite,
	}
}
