// Package treesitter colours SQL for the prompt line using the tree-sitter
// SQL grammar.
package treesitter

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/sql"

	"github.com/kobzarvs/qsql/internal/config"
	"github.com/kobzarvs/qsql/internal/logger"
	"github.com/kobzarvs/qsql/internal/terminal"
)

// HighlightSpan covers source bytes [Start, End).
type HighlightSpan struct {
	Start int
	End   int
	Kind  string
}

// Engine parses one line at a time. The parser is not safe for concurrent
// use, so calls are serialized.
type Engine struct {
	mu     sync.Mutex
	parser *sitter.Parser
	colors map[string]tcell.Color
}

func New(theme config.Theme) *Engine {
	p := sitter.NewParser()
	p.SetLanguage(sql.GetLanguage())
	return &Engine{
		parser: p,
		colors: themeColors(theme),
	}
}

func themeColors(theme config.Theme) map[string]tcell.Color {
	colors := map[string]tcell.Color{
		"keyword":     ParseColor(theme.SyntaxKeyword, tcell.ColorDefault),
		"string":      ParseColor(theme.SyntaxString, tcell.ColorDefault),
		"comment":     ParseColor(theme.SyntaxComment, tcell.ColorDefault),
		"type":        ParseColor(theme.SyntaxType, tcell.ColorDefault),
		"function":    ParseColor(theme.SyntaxFunction, tcell.ColorDefault),
		"number":      ParseColor(theme.SyntaxNumber, tcell.ColorDefault),
		"constant":    ParseColor(theme.SyntaxConstant, tcell.ColorDefault),
		"operator":    ParseColor(theme.SyntaxOperator, tcell.ColorDefault),
		"punctuation": ParseColor(theme.SyntaxPunctuation, tcell.ColorDefault),
		"field":       ParseColor(theme.SyntaxField, tcell.ColorDefault),
		"variable":    ParseColor(theme.SyntaxVariable, tcell.ColorDefault),
	}
	return colors
}

// Highlights returns non-overlapping spans ordered by Start.
func (e *Engine) Highlights(line string) []HighlightSpan {
	source := []byte(line)
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, source)
	e.mu.Unlock()
	if err != nil || tree == nil {
		if err != nil {
			logger.Debug("sql parse failed", "err", err)
		}
		return nil
	}
	var out []HighlightSpan
	collectSpans(tree.RootNode(), source, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func collectSpans(n *sitter.Node, source []byte, out *[]HighlightSpan) {
	if n == nil {
		return
	}
	if kind := classify(n, source); kind != "" {
		*out = append(*out, HighlightSpan{Start: int(n.StartByte()), End: int(n.EndByte()), Kind: kind})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectSpans(n.Child(i), source, out)
	}
}

// classify names a node that should be coloured as a whole. Nodes that
// return "" are descended into.
func classify(n *sitter.Node, source []byte) string {
	typ := n.Type()
	switch {
	case strings.HasPrefix(typ, "keyword_"):
		return "keyword"
	case typ == "comment" || typ == "marginalia":
		return "comment"
	case typ == "literal":
		text := n.Content(source)
		switch {
		case text == "":
			return ""
		case text[0] == '\'' || text[0] == '"' || text[0] == '$':
			return "string"
		case text[0] >= '0' && text[0] <= '9' || text[0] == '-' || text[0] == '.':
			return "number"
		}
		return "constant"
	case typ == "parameter":
		return "variable"
	}
	if n.ChildCount() > 0 {
		return ""
	}
	if !n.IsNamed() {
		switch typ {
		case "(", ")", ",", ";", ".", "[", "]":
			return "punctuation"
		}
		if strings.IndexFunc(typ, isOperatorRune) >= 0 {
			return "operator"
		}
		return ""
	}
	if typ == "identifier" {
		if p := n.Parent(); p != nil {
			switch p.Type() {
			case "invocation", "function_call":
				return "function"
			case "field":
				return "field"
			case "object_reference":
				return "type"
			}
		}
		return "variable"
	}
	return ""
}

func isOperatorRune(r rune) bool {
	return strings.ContainsRune("=<>!+-*/%|&~^:", r)
}

// Colorize wraps every highlighted span in a 24-bit foreground escape. The
// escapes take no columns, so the visible text is unchanged.
func (e *Engine) Colorize(line string) string {
	spans := e.Highlights(line)
	if len(spans) == 0 {
		return line
	}
	var b strings.Builder
	pos := 0
	for _, span := range spans {
		if span.Start < pos || span.End > len(line) || span.Start >= span.End {
			continue
		}
		c, ok := e.colors[span.Kind]
		if !ok || c == tcell.ColorDefault {
			continue
		}
		b.WriteString(line[pos:span.Start])
		b.WriteString(SGR(c))
		b.WriteString(line[span.Start:span.End])
		b.WriteString(terminal.ResetStyle)
		pos = span.End
	}
	b.WriteString(line[pos:])
	return b.String()
}
