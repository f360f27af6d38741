package css

import (
	"bytes"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			// media queries, font faces and the like are meaningless here
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))
			p.skipBlock(parser)

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))

		case css.BeginRulesetGrammar:
			selectors := p.parseSelectors(data, parser.Values())
			props, order := p.parseDeclarations(parser)
			for _, raw := range selectors {
				sel, ok := p.parseSelector(raw, sheet)
				if !ok {
					continue
				}
				sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Properties: props, Order: order})
			}
		}
	}
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

func (p *Parser) parseSelector(raw string, sheet *Stylesheet) (Selector, bool) {
	sel := Selector{Raw: raw}
	if strings.ContainsAny(raw, " \t\n+~>[:*#") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+raw)
		p.log.Debug("Skipping selector", zap.String("selector", raw))
		return sel, false
	}
	if element, class, found := strings.Cut(raw, "."); found {
		if element != "" {
			sheet.Warnings = append(sheet.Warnings, "unsupported compound selector: "+raw)
			return sel, false
		}
		sel.Class = class
	} else {
		sel.Element = raw
	}
	return sel, true
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
// Later declarations of the same property win.
func (p *Parser) parseDeclarations(parser *css.Parser) (map[string]Value, []string) {
	props := make(map[string]Value)
	var order []string
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props, order
		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			if _, seen := props[name]; !seen {
				order = append(order, name)
			}
			props[name] = parseValue(values)
		}
	}
}

// skipBlock skips tokens until the matching end of a block.
func (p *Parser) skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseValue converts CSS tokens to a Value.
func parseValue(tokens []css.Token) Value {
	for len(tokens) > 0 && tokens[0].TokenType == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return Value{}
	}

	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(parts, ""))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "!important"))
	val := Value{Raw: raw, Keyword: strings.ToLower(raw)}

	first := tokens[0]
	switch first.TokenType {
	case css.NumberToken:
		if n, err := strconv.ParseFloat(string(first.Data), 64); err == nil && len(parts) == 1 {
			val.Number, val.Numeric = n, true
		}
	case css.StringToken:
		val.Keyword = unquote(raw)
	case css.FunctionToken:
		val.Func = strings.ToLower(strings.TrimSuffix(string(first.Data), "("))
		for _, t := range tokens[1:] {
			switch t.TokenType {
			case css.NumberToken:
				n, _ := strconv.ParseFloat(string(t.Data), 64)
				val.Args = append(val.Args, n)
			case css.PercentageToken:
				n, _ := strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
				val.Args = append(val.Args, n/100)
			}
		}
	}
	return val
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
