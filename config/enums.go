package config

//go:generate go tool go-enum --marshal --names

// Requested output type.
// ENUM(ansi, html)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtAnsi:
		return ".txt"
	case OutputFmtHtml:
		return ".html"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// What happens to text which does not fit.
// ENUM(clip, ellipsis)
type Overflow int
