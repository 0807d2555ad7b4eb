// Package lang implements the rule DSL front end (spec §4.1): a
// location-tracking lexer, a typed AST, and a participle-based parser.
//
// Grammar (design-level, mirrors spec.md §4.1's outline):
//
//	file        := (let | rule | typeblock)*
//	rule        := "rule" ident ("when" disjunction)? "{" block "}"
//	typeblock   := "type" ident "{" block "}"      // sugar, see TypeBlock
//	block       := (let | guardline)*
//	guardline   := guard ("or" guard)*              // one Conjunct entry;
//	                                                 // consecutive guardlines AND together
//	guard       := ("not"|"!")? "some"? guardbody message?
//	guardbody   := "when" disjunction "{" block "}"  # WhenBlock
//	             | query "{" block "}"               # BlockClause
//	             | query cmp rhs?                    # Comparison
//	             | ident                              # NamedRule
//	query       := part ("." part | "[" bracket "]")*
//	part        := "this" | "_" | "*" | number | "%" ident | ident | string
//	bracket     := "*" | number | "keys" cmp rhs | disjunction
//	rhs         := "[" literal ("," literal)* "]" | literal | query
package lang

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// FileLocation is a (filename, line, column) triple attached to every AST
// node that can produce a diagnostic (spec §3.3).
type FileLocation = lexer.Position

// reservedWords must not appear as bare identifiers naming rules or keys
// without quoting (spec §6.1).
var reservedWords = map[string]bool{
	"rule": true, "let": true, "when": true, "type": true,
	"or": true, "and": true, "not": true, "this": true,
	"exists": true, "empty": true, "in": true, "some": true, "keys": true,
	"is_string": true, "is_int": true, "is_list": true, "is_map": true,
	"is_bool": true, "is_float": true,
	"is_int_range": true, "is_float_range": true, "is_char_range": true,
	"true": true, "false": true,
}

// IsReservedWord reports whether word is a DSL keyword that must be quoted
// to be used as an attribute/rule name.
func IsReservedWord(word string) bool { return reservedWords[word] }

// --- Top level ---

// RulesFile is the top-level parse result: file-level lets, rules, and
// type-block shorthands (spec §3.3 RulesFile).
type RulesFile struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Entries    []*FileEntry   `parser:"@@*" json:"entries"`
}

// FileEntry is exactly one of a Let, a Rule, or a TypeBlock.
type FileEntry struct {
	Pos       lexer.Position `parser:"" json:"-"`
	Let       *Let           `parser:"(  @@"`
	Rule      *Rule          `parser:" | @@"`
	TypeBlock *TypeBlock     `parser:" | @@ )" json:"-"`
}

// Let is a file- or block-level assignment: "let" name ("=" | ":=") expr.
type Let struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"'let' @Ident" json:"name"`
	Assign string         `parser:"Assign" json:"-"`
	Value  *LetExpr       `parser:"@@" json:"value"`
	Semi   bool           `parser:"';'?" json:"-"`
}

// LetExpr is the right-hand side of a let binding: a literal, a (minimal)
// function call, or a query, tried in that order so that a string, number,
// regex, bool or range literal is never read as a query. Some marks that the binding accepts partial
// resolution (spec §8 scenario 6: "the some accepts partial resolution") —
// a query that resolves for only some of its inputs still contributes
// whatever it resolved, rather than the whole binding failing.
type LetExpr struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Some    bool           `parser:"@'some'?"`
	Literal *Literal       `parser:"(  @@" json:"-"`
	Call    *FunctionCall  `parser:" | @@"`
	Query   *AccessQuery   `parser:" | @@ )"`
}

// FunctionCall is a minimal extension point: name(args...). No built-in
// functions are required by spec.md; this exists so a let binding can
// reference one without widening the grammar later.
type FunctionCall struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident '('" json:"name"`
	Args []*LetExpr     `parser:"(@@ (',' @@)*)? ')'" json:"args,omitempty"`
}

// Rule is a named, optionally-guarded block (spec §3.3 Rule).
type Rule struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'rule' @Ident" json:"name"`
	When  *Disjunction   `parser:"('when' @@)?" json:"when,omitempty"`
	Body  *Block         `parser:"'{' @@ '}'" json:"body"`
}

// TypeBlock is shorthand for `Resources.*[ Type == "T" ]` plus a block
// (spec §3.3 TypeBlock).
type TypeBlock struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Type string         `parser:"'type' @Ident" json:"type"`
	Body *Block         `parser:"'{' @@ '}'" json:"body"`
}

// Block is a sequence of local lets followed by conjunctions of
// disjunctions of guard clauses (spec §3.3 Block).
type Block struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Entries []*BlockEntry  `parser:"@@*" json:"entries"`
}

// BlockEntry is exactly one of a Let or a Disjunction (one "guardline").
// Consecutive Disjunction entries within a Block are ANDed together.
type BlockEntry struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Let        *Let           `parser:"(  @@"`
	Disjunction *Disjunction  `parser:" | @@ )" json:"-"`
}

// Disjunction is a chain of GuardClauses joined by "or" (spec §3.3:
// "conjunctions of disjunctions of guard clauses" — one Disjunction is one
// conjunct).
type Disjunction struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Clauses []*GuardClause `parser:"@@ ('or' @@)*" json:"clauses"`
}

// --- Guard clauses ---

// GuardClause is one evaluable unit within a Disjunction: a comparison, a
// named-rule reference, a block scoped to a query, or a nested "when"
// guard. Negation and the "some" (at-least-one) qualifier apply uniformly
// to whichever variant matched (spec §3.3 GuardClause).
type GuardClause struct {
	Pos     lexer.Position  `parser:"" json:"-"`
	Not     bool            `parser:"@('not' | Bang)?" json:"not,omitempty"`
	Some    bool            `parser:"@'some'?" json:"some,omitempty"`
	When    *WhenGuard      `parser:"(  @@"`
	Block   *BlockClause    `parser:" | @@"`
	Compare *ComparisonClause `parser:" | @@"`
	Named   *string         `parser:" | @Ident )" json:"named_rule,omitempty"`
	Message *string         `parser:"@Message?" json:"message,omitempty"`
}

// MatchAll reports whether this clause requires every resolved LHS value to
// satisfy the comparison (true) or at least one (the "some" qualifier,
// false) — spec §3.3: "independent... optional some (at-least-one)
// qualifier (match_all = false)".
func (g *GuardClause) MatchAll() bool { return !g.Some }

// WhenGuard is a nested conditional sub-block: "when" <disjunction> "{"
// <block> "}". A FAIL of Cond converts the whole WhenGuard to SKIP (spec
// §4.3).
type WhenGuard struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Cond *Disjunction   `parser:"'when' @@" json:"cond"`
	Body *Block         `parser:"'{' @@ '}'" json:"body"`
}

// BlockClause scopes Body to each value Query yields (spec §3.3
// GuardClause::BlockClause).
type BlockClause struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Query *AccessQuery   `parser:"@@ '{'" json:"query"`
	Body  *Block         `parser:"@@ '}'" json:"body"`
}

// ComparisonClause is the leaf comparison: query op rhs? (spec §3.3
// GuardAccessClause). Rhs is nil for the unary operators (exists, empty,
// is_*).
type ComparisonClause struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Query *AccessQuery   `parser:"@@" json:"query"`
	Op    string         `parser:"@( OpEq | OpNe | OpLe | OpLt | OpGe | OpGt | 'in' | 'exists' | 'empty' | 'is_string' | 'is_int' | 'is_list' | 'is_map' | 'is_bool' | 'is_float' | 'is_int_range' | 'is_float_range' | 'is_char_range' )" json:"op"`
	Rhs   *Rhs           `parser:"@@?" json:"rhs,omitempty"`
}

// IsUnary reports whether Op takes no right-hand side.
func (c *ComparisonClause) IsUnary() bool {
	switch c.Op {
	case "exists", "empty",
		"is_string", "is_int", "is_list", "is_map", "is_bool", "is_float",
		"is_int_range", "is_float_range", "is_char_range":
		return true
	default:
		return false
	}
}

// Rhs is the right-hand side of a comparison: a bracketed literal list
// (used with "in"), a bare literal, or a query (including a %variable
// reference), tried in that order so that a quoted string, number, regex,
// bool or range is a literal rather than a query.
type Rhs struct {
	Pos  lexer.Position `parser:"" json:"-"`
	List *ListLiteral   `parser:"(  @@"`
	Literal *Literal    `parser:" | @@" json:"-"`
	Query *AccessQuery  `parser:" | @@ )"`
}

// ListLiteral is a bracketed list of literals: "[" literal ("," literal)* "]".
type ListLiteral struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Values []*Literal     `parser:"'[' @@ (',' @@)* ']'" json:"values"`
}

// --- Queries ---

// AccessQuery is an ordered sequence of QueryPart (spec §3.3 AccessQuery).
// MatchAll lives on the owning GuardClause (the "some" qualifier), not
// here, since a bare query has no intrinsic match mode outside a
// comparison.
type AccessQuery struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Parts []*QueryPart   `parser:"@@ (Dot @@ | @@)*" json:"parts"`
}

// QueryPart is one step of a query path. Exactly one field is set.
type QueryPart struct {
	Pos         lexer.Position `parser:"" json:"-"`
	Bracket     *BracketPart   `parser:"(  @@"`
	This        bool           `parser:" | @('this' | '_')"`
	Star        bool           `parser:" | @'*'"`
	VarKey      *string        `parser:" | (Percent @Ident)"`
	Key         *string        `parser:" | @Ident"`
	QuotedKey   *string        `parser:" | @String"`
	IndexLit    *int64         `parser:" | @Number )" json:"-"`
}

// BracketPart is a "[" ... "]" suffix on a query: an index, a wildcard, a
// key filter, or a guard-clause filter.
type BracketPart struct {
	Pos        lexer.Position `parser:"'[' " json:"-"`
	AllIndices bool           `parser:"(  @'*'"`
	Index      *int64         `parser:" | @Number"`
	KeyFilter  *MapKeyFilter  `parser:" | @@"`
	Filter     *Disjunction   `parser:" | @@ ) ']'" json:"-"`
}

// MapKeyFilter selects map entries whose keys satisfy the comparison
// (spec §3.3 QueryPart::MapKeyFilter): "keys" cmp rhs.
type MapKeyFilter struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Comparator string         `parser:"'keys' @( OpEq | OpNe )" json:"comparator"`
	CompareWith *Rhs          `parser:"@@" json:"compare_with"`
}

// --- Literals ---

// Literal is a scalar value in the DSL: string, number, bool, regex, or
// range (spec §3.1/§3.3).
type Literal struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Range    *RangeLiteral  `parser:"(  @@"`
	Str      *string        `parser:" | @String"`
	Regex    *string        `parser:" | @Regex"`
	Bool     *string        `parser:" | @('true' | 'false')"`
	Number   *float64       `parser:" | @Number )" json:"-"`
}

// RangeLiteral is a range bound expression: r(a,b) / r[a,b) / r(a,b] / r[a,b]
// (spec §4.1 Ranges). Parentheses denote exclusive bounds, brackets
// inclusive.
type RangeLiteral struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Open  string         `parser:"'r' @('[' | '(')" json:"open"`
	Lower float64        `parser:"@Number ','" json:"lower"`
	Upper float64        `parser:"@Number" json:"upper"`
	Close string         `parser:"@(']' | ')')" json:"close"`
}

func (r *RangeLiteral) LowerInclusive() bool { return r.Open == "[" }
func (r *RangeLiteral) UpperInclusive() bool { return r.Close == "]" }

func quotedKeyNeedsQuoting(key string) bool {
	if key == "" {
		return true
	}
	if IsReservedWord(key) {
		return true
	}
	for i, r := range key {
		if i == 0 && (r >= '0' && r <= '9') {
			return true
		}
		if r == ':' || r == '-' || r == '.' {
			return true
		}
	}
	return false
}

func quoteKeyIfNeeded(key string) string {
	if quotedKeyNeedsQuoting(key) {
		return "'" + strings.ReplaceAll(key, "'", "\\'") + "'"
	}
	return key
}
