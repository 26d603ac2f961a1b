package render

type KeyKind int

const (
	KeyOther KeyKind = iota
	KeyChar
	KeyEnter
)

// Key is a key press as the host delivers it: a character, Enter, or
// anything else.
type Key struct {
	Kind KeyKind
	Rune rune
}

func Char(r rune) Key { return Key{Kind: KeyChar, Rune: r} }

func Enter() Key { return Key{Kind: KeyEnter} }

func Other() Key { return Key{Kind: KeyOther} }

// InputWriter is the write side of a session.
type InputWriter interface {
	WriteInput(r rune) error
}

// Route forwards k to w. Characters are written as-is and Enter as a
// newline; other keys are dropped. Write errors are returned.
func Route(w InputWriter, k Key) error {
	switch k.Kind {
	case KeyChar:
		return w.WriteInput(k.Rune)
	case KeyEnter:
		return w.WriteInput('\n')
	}
	return nil
}
