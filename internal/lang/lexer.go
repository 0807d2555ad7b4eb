package lang

import "github.com/alecthomas/participle/v2/lexer"

// ruleLexer defines the token types for the rule DSL. Order matters: longer
// patterns must come before shorter ones that share a prefix (">=" before
// ">", "==" before "="), the same ordering discipline the teacher's ABAC
// lexer documents.
var ruleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},
	{Name: "Regex", Pattern: `/(?:\\.|[^/\\\n])*/`},
	{Name: "Number", Pattern: `-?[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?`},
	{Name: "Message", Pattern: `<<[^>]*>>`},
	{Name: "OpGe", Pattern: `>=`},
	{Name: "OpLe", Pattern: `<=`},
	{Name: "OpEq", Pattern: `==`},
	{Name: "OpNe", Pattern: `!=`},
	{Name: "Assign", Pattern: `:=|=`},
	{Name: "OpGt", Pattern: `>`},
	{Name: "OpLt", Pattern: `<`},
	{Name: "Bang", Pattern: `!`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Percent", Pattern: `%`},
	// Keyword must precede Ident: it claims the DSL's reserved words (spec
	// §4.1 "Keywords (case-insensitive where noted)", §6.1 reservedWords)
	// before the generic identifier rule would otherwise swallow them, and
	// participle.CaseInsensitive("Keyword") (see NewParser) lets rule text
	// spell them in any case, matching the mixed-case EXISTS/exists,
	// EMPTY/empty, IN/in, KEYS/keys usage in the original rule corpus.
	// "type" is the one reserved word left out: it lexes as an Ident so a
	// document key such as Type stays a plain key, and TypeBlock's 'type'
	// literal still matches that Ident token.
	{Name: "Keyword", Pattern: `(?i)\b(?:is_int_range|is_float_range|is_char_range|is_string|is_list|is_map|is_bool|is_float|is_int|rule|when|exists|empty|some|keys|this|true|false|and|not|in|or|let)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(){}\[\],;*]`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})
