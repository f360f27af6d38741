package css

import "strings"

// Value is a parsed property value.
type Value struct {
	Raw     string    // original text, whitespace normalized
	Keyword string    // lower cased identifier, hash or function text
	Number  float64   // numeric value when Numeric is set
	Numeric bool      // value is a plain number (font-weight: 700)
	Args    []float64 // arguments of color functions
	Func    string    // lower cased function name: rgb, rgba
}

// Selector is a simple element or class selector. Compound and contextual
// selectors are not supported.
type Selector struct {
	Raw     string
	Element string
	Class   string
}

// Name returns element or class name whichever is set.
func (s Selector) Name() string {
	if s.Element != "" {
		return strings.ToLower(s.Element)
	}
	return strings.ToLower(s.Class)
}

// Rule is a selector with declarations in source order.
type Rule struct {
	Selector   Selector
	Properties map[string]Value
	Order      []string
}

// Stylesheet is a parsed stylesheet.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string
}
