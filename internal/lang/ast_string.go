package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// --- String() methods for human-readable rendering of AST nodes, used by
// internal/report and diagnostics. ---

func (q *AccessQuery) String() string {
	parts := make([]string, len(q.Parts))
	for i, p := range q.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, ".")
}

func (p *QueryPart) String() string {
	switch {
	case p.Bracket != nil:
		return p.Bracket.String()
	case p.This:
		return "this"
	case p.Star:
		return "*"
	case p.VarKey != nil:
		return "%" + *p.VarKey
	case p.Key != nil:
		return quoteKeyIfNeeded(*p.Key)
	case p.QuotedKey != nil:
		return quoteKeyIfNeeded(*p.QuotedKey)
	case p.IndexLit != nil:
		return strconv.FormatInt(*p.IndexLit, 10)
	default:
		return "<empty>"
	}
}

func (b *BracketPart) String() string {
	switch {
	case b.AllIndices:
		return "[*]"
	case b.Index != nil:
		return "[" + strconv.FormatInt(*b.Index, 10) + "]"
	case b.KeyFilter != nil:
		return "[" + b.KeyFilter.String() + "]"
	case b.Filter != nil:
		return "[" + b.Filter.String() + "]"
	default:
		return "[]"
	}
}

func (m *MapKeyFilter) String() string {
	return "keys " + m.Comparator + " " + m.CompareWith.String()
}

func (d *Disjunction) String() string {
	parts := make([]string, len(d.Clauses))
	for i, c := range d.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " or ")
}

func (g *GuardClause) String() string {
	var b strings.Builder
	if g.Not {
		b.WriteString("not ")
	}
	if g.Some {
		b.WriteString("some ")
	}
	switch {
	case g.When != nil:
		b.WriteString(g.When.String())
	case g.Block != nil:
		b.WriteString(g.Block.String())
	case g.Compare != nil:
		b.WriteString(g.Compare.String())
	case g.Named != nil:
		b.WriteString(*g.Named)
	default:
		b.WriteString("<empty>")
	}
	if g.Message != nil {
		b.WriteString(" <<" + *g.Message + ">>")
	}
	return b.String()
}

func (w *WhenGuard) String() string {
	return "when " + w.Cond.String() + " { ... }"
}

func (bc *BlockClause) String() string {
	return bc.Query.String() + " { ... }"
}

func (c *ComparisonClause) String() string {
	if c.Rhs == nil {
		return c.Query.String() + " " + c.Op
	}
	return c.Query.String() + " " + c.Op + " " + c.Rhs.String()
}

func (r *Rhs) String() string {
	switch {
	case r.List != nil:
		return r.List.String()
	case r.Query != nil:
		return r.Query.String()
	case r.Literal != nil:
		return r.Literal.String()
	default:
		return "<empty>"
	}
}

func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *Literal) String() string {
	switch {
	case l.Range != nil:
		return l.Range.String()
	case l.Str != nil:
		return `"` + *l.Str + `"`
	case l.Regex != nil:
		return "/" + *l.Regex + "/"
	case l.Bool != nil:
		return *l.Bool
	case l.Number != nil:
		v := *l.Number
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return "<empty>"
	}
}

// BoolValue returns the literal's boolean value. Only meaningful when
// l.Bool != nil.
func (l *Literal) BoolValue() bool { return l.Bool != nil && *l.Bool == "true" }

func (r *RangeLiteral) String() string {
	return "r" + r.Open + formatNum(r.Lower) + "," + formatNum(r.Upper) + r.Close
}

func formatNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString("rule ")
	b.WriteString(r.Name)
	if r.When != nil {
		b.WriteString(" when ")
		b.WriteString(r.When.String())
	}
	b.WriteString(" { ... }")
	return b.String()
}
