package lang

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// MaxNestingDepth bounds recursive descent through nested "when"/block
// guard nesting while validating a parsed file (mirrors the teacher's
// post-parse depth guard; the grammar itself has no recursion limit).
const MaxNestingDepth = 64

var ruleParser *participle.Parser[RulesFile]

func init() {
	var err error
	ruleParser, err = NewParser()
	if err != nil {
		panic("lang: failed to build DSL parser: " + err.Error())
	}
}

// unquote strips the DSL's string-literal quoting, supporting both "..."
// and '...' forms (spec §4.1: "String literals accept both \"…\" and
// '…'."), unlike participle.Unquote which only understands Go/double-quote
// escaping.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	quote := s[0]
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			next := body[i+1]
			if next == quote || next == '\\' {
				b.WriteByte(next)
				i++
				continue
			}
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// unquoteRegex strips the "/…/" delimiters from a regex literal, unescaping
// "\/" to a literal slash (spec §4.1).
func unquoteRegex(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	return strings.ReplaceAll(body, `\/`, "/")
}

// unquoteMessage strips the "<<…>>" delimiters from a custom clause message.
func unquoteMessage(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "<<"), ">>")
}

// NewParser constructs a participle parser for the rule DSL. MaxLookahead
// enables full backtracking, needed because Block/Comparison guard-clause
// alternatives share a common Query prefix (the same reason the teacher's
// ABAC parser enables it for its Condition alternatives).
func NewParser() (*participle.Parser[RulesFile], error) {
	return participle.Build[RulesFile](
		participle.Lexer(ruleLexer),
		participle.Elide("Comment", "Newline", "Whitespace"),
		participle.Map(func(t lexer.Token) (lexer.Token, error) {
			t.Value = unquote(t.Value)
			return t, nil
		}, "String"),
		participle.Map(func(t lexer.Token) (lexer.Token, error) {
			t.Value = unquoteRegex(t.Value)
			return t, nil
		}, "Regex"),
		participle.Map(func(t lexer.Token) (lexer.Token, error) {
			t.Value = unquoteMessage(t.Value)
			return t, nil
		}, "Message"),
		participle.Map(func(t lexer.Token) (lexer.Token, error) {
			t.Value = strings.ToLower(t.Value)
			return t, nil
		}, "Keyword"),
		participle.UseLookahead(participle.MaxLookahead),
		participle.CaseInsensitive("Keyword"),
	)
}

// ParseError describes a parse failure by file/line/column and message
// (spec §6.2). Parse itself does not return ParseError values: it returns
// oops errors with code PARSE_ERROR carrying the same filename/line/column
// context.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return e.Filename + ":" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column) + ": " + e.Message
}

// Parse parses DSL rule text into a RulesFile AST. filename is attached to
// every node's position for diagnostics.
func Parse(filename, text string) (*RulesFile, error) {
	file, err := ruleParser.ParseString(filename, text)
	if err != nil {
		if uerr, ok := err.(participle.UnexpectedTokenError); ok {
			return nil, oops.
				Code("PARSE_ERROR").
				With("filename", filename).
				With("line", uerr.Tok.Pos.Line).
				With("column", uerr.Tok.Pos.Column).
				Wrapf(err, "parsing rule file %s", filename)
		}
		return nil, oops.Code("PARSE_ERROR").With("filename", filename).Wrapf(err, "parsing rule file %s", filename)
	}

	if err := validateFile(file, filename); err != nil {
		return nil, err
	}

	return file, nil
}

// validateFile performs post-parse checks: reserved-word names and
// nesting-depth limits, mirroring the teacher's validatePolicy pass.
func validateFile(f *RulesFile, filename string) error {
	for _, entry := range f.Entries {
		switch {
		case entry.Rule != nil:
			if IsReservedWord(entry.Rule.Name) {
				return oops.Code("PARSE_ERROR").
					With("filename", filename).
					Errorf("rule name %q is a reserved word", entry.Rule.Name)
			}
			if entry.Rule.When != nil {
				if err := validateDisjunction(entry.Rule.When, 0, filename); err != nil {
					return err
				}
			}
			if err := validateBlock(entry.Rule.Body, 0, filename); err != nil {
				return err
			}
		case entry.TypeBlock != nil:
			if err := validateBlock(entry.TypeBlock.Body, 0, filename); err != nil {
				return err
			}
		case entry.Let != nil:
			if IsReservedWord(entry.Let.Name) {
				return oops.Code("PARSE_ERROR").
					With("filename", filename).
					Errorf("let name %q is a reserved word", entry.Let.Name)
			}
		}
	}
	return nil
}

func validateBlock(b *Block, depth int, filename string) error {
	if depth > MaxNestingDepth {
		return oops.Code("PARSE_ERROR").With("filename", filename).Errorf("nesting depth exceeds maximum of %d", MaxNestingDepth)
	}
	for _, e := range b.Entries {
		if e.Let != nil && IsReservedWord(e.Let.Name) {
			return oops.Code("PARSE_ERROR").With("filename", filename).Errorf("let name %q is a reserved word", e.Let.Name)
		}
		if e.Disjunction != nil {
			if err := validateDisjunction(e.Disjunction, depth+1, filename); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateDisjunction(d *Disjunction, depth int, filename string) error {
	if depth > MaxNestingDepth {
		return oops.Code("PARSE_ERROR").With("filename", filename).Errorf("nesting depth exceeds maximum of %d", MaxNestingDepth)
	}
	for _, c := range d.Clauses {
		if c.When != nil {
			if err := validateDisjunction(c.When.Cond, depth+1, filename); err != nil {
				return err
			}
			if err := validateBlock(c.When.Body, depth+1, filename); err != nil {
				return err
			}
		}
		if c.Block != nil {
			if err := validateBlock(c.Block.Body, depth+1, filename); err != nil {
				return err
			}
		}
	}
	return nil
}
