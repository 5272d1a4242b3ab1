package reconcile

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the reconciliation policy of a tagged element.
type Kind int

const (
	// KindPlaceholder elements are only shown or hidden.
	KindPlaceholder Kind = iota
	// KindFrame covers iframes, which are replaced and neutralized through src.
	KindFrame
	// KindExecutable covers scripts and links, which are replaced and
	// neutralized through type.
	KindExecutable
	// KindInPlace covers every other element, which is mutated in place.
	KindInPlace
)

func (k Kind) String() string {
	switch k {
	case KindPlaceholder:
		return "placeholder"
	case KindFrame:
		return "frame"
	case KindExecutable:
		return "executable"
	default:
		return "in_place"
	}
}

// Classify returns the kind of a tagged element.
func Classify(n *html.Node) Kind {
	if t, _ := attr(n, "data-type"); t == "placeholder" {
		return KindPlaceholder
	}
	switch n.DataAtom {
	case atom.Iframe:
		return KindFrame
	case atom.Script, atom.Link:
		return KindExecutable
	default:
		return KindInPlace
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
