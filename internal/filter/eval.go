package filter

import (
	"fmt"
	"strings"

	"github.com/akave-ai/logviewer/internal/model"
)

// Predicate reports whether a log message satisfies a filter.
type Predicate func(*model.LogMessage) bool

// Compile turns an expression into a predicate. A blank expression matches
// everything. An expression that does not parse is treated as a plain
// substring search over the rendered message.
func Compile(expr string) Predicate {
	node, err := Parse(expr)
	if err != nil {
		needle := strings.ToLower(strings.TrimSpace(expr))
		return func(m *model.LogMessage) bool {
			return strings.Contains(strings.ToLower(m.RenderedMessage), needle)
		}
	}
	return func(m *model.LogMessage) bool {
		return Match(node, m)
	}
}

// Match evaluates node against m. A nil node matches.
func Match(node Node, m *model.LogMessage) bool {
	switch n := node.(type) {
	case nil:
		return true
	case And:
		return Match(n.Left, m) && Match(n.Right, m)
	case Or:
		return Match(n.Left, m) || Match(n.Right, m)
	case Not:
		return !Match(n.Expr, m)
	case Term:
		return matchTerm(n, m)
	default:
		return false
	}
}

func matchTerm(t Term, m *model.LogMessage) bool {
	if t.Key == "" {
		return matchFullText(t.Value, m)
	}

	// Levels compare as severities so aliases such as "info" and "3" work.
	if isLevelKey(t.Key) && t.Op != OpContains {
		if want, err := model.ParseLogLevel(t.Value); err == nil {
			return (m.Level == want) == (t.Op == OpEq)
		}
	}

	value := fieldValue(t.Key, m)
	switch t.Op {
	case OpNeq:
		return !strings.EqualFold(value, t.Value)
	case OpContains:
		return containsFold(value, t.Value)
	default:
		return strings.EqualFold(value, t.Value)
	}
}

func isLevelKey(key string) bool {
	k := strings.ToLower(key)
	return k == "level" || k == "lvl" || k == "@l"
}

func fieldValue(key string, m *model.LogMessage) string {
	switch strings.ToLower(key) {
	case "level", "lvl", "@l":
		return m.Level.String()
	case "message", "msg", "@m":
		return m.RenderedMessage
	case "template", "mt", "@mt":
		return m.MessageTemplateText
	case "exception", "ex", "error", "@x":
		return m.Exception
	}
	if v, ok := m.Properties[key]; ok {
		return stringify(v)
	}
	for k, v := range m.Properties {
		if strings.EqualFold(k, key) {
			return stringify(v)
		}
	}
	return ""
}

func matchFullText(query string, m *model.LogMessage) bool {
	if containsFold(m.RenderedMessage, query) ||
		containsFold(m.MessageTemplateText, query) ||
		containsFold(m.Exception, query) {
		return true
	}
	for _, v := range m.Properties {
		if containsFold(stringify(v), query) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
