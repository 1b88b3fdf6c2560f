package executil

import (
	"strconv"
	"strings"

	"github.com/purc-lang/purc/errkind"
)

// Parser is a one-shot recursive-descent parser over one mini-grammar
// string, mirroring the teacher parser package's "New then Parse once"
// shape at a much smaller scale.
type Parser struct {
	lex *lexer
	tok Token
}

func newParser(input string) *Parser {
	p := &Parser{lex: newLexer(input)}
	p.advance()
	return p
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

func (p *Parser) expectKeyword(word string) *errkind.Error {
	if p.tok.Kind != KEYWORD || p.tok.Text != word {
		return errkind.New(errkind.InvalidValue, "expected %q, got %q", word, p.tok.Text)
	}
	p.advance()
	return nil
}

func (p *Parser) isKeyword(word string) bool {
	return p.tok.Kind == KEYWORD && p.tok.Text == word
}

// ParseFilter parses a "FILTER: ..." expression per spec.md §6's grammar,
// e.g. `FILTER: LIKE '/^foo/i' MAX 16, FOR KV`.
func ParseFilter(input string) (*FilterAST, *errkind.Error) {
	p := newParser(input)
	if err := p.expectKeyword("FILTER"); err != nil {
		return nil, err
	}
	if p.tok.Kind != COLON {
		return nil, errkind.New(errkind.InvalidValue, "expected ':' after FILTER")
	}
	p.advance()

	ast := &FilterAST{}
	switch {
	case p.isKeyword("ALL"):
		p.advance()
		ast.All = true
	case p.isKeyword("LIKE") || p.isKeyword("AS"):
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		ast.Match = pat
	default:
		rules, err := p.parseNumberRules()
		if err != nil {
			return nil, err
		}
		ast.Numbers = rules
	}

	if p.tok.Kind == COMMA {
		p.advance()
	}
	if p.isKeyword("FOR") {
		p.advance()
		fc, err := p.parseForClause()
		if err != nil {
			return nil, err
		}
		ast.For = fc
	}
	return ast, nil
}

// ParseKey parses a "KEY: ..." expression per spec.md §6: "(ALL | LIKE
// pattern | AS literal) for-clause?".
func ParseKey(input string) (*KeyAST, *errkind.Error) {
	p := newParser(input)
	if err := p.expectKeyword("KEY"); err != nil {
		return nil, err
	}
	if p.tok.Kind != COLON {
		return nil, errkind.New(errkind.InvalidValue, "expected ':' after KEY")
	}
	p.advance()

	ast := &KeyAST{}
	switch {
	case p.isKeyword("ALL"):
		p.advance()
		ast.All = true
	case p.isKeyword("LIKE") || p.isKeyword("AS"):
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		ast.Match = pat
	default:
		return nil, errkind.New(errkind.InvalidValue, "KEY expects ALL, LIKE, or AS, got %q", p.tok.Text)
	}

	if p.tok.Kind == COMMA {
		p.advance()
	}
	if p.isKeyword("FOR") {
		p.advance()
		fc, err := p.parseForClause()
		if err != nil {
			return nil, err
		}
		ast.For = fc
	}
	return ast, nil
}

// ParseFormula parses a "FORMULA: cond (AND|OR cond)* BY expr" string.
func ParseFormula(input string) (*FormulaAST, *errkind.Error) {
	p := newParser(input)
	if err := p.expectKeyword("FORMULA"); err != nil {
		return nil, err
	}
	if p.tok.Kind != COLON {
		return nil, errkind.New(errkind.InvalidValue, "expected ':' after FORMULA")
	}
	p.advance()

	ast := &FormulaAST{}
	cmp, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	ast.Conditions = append(ast.Conditions, cmp)
	for p.isKeyword("AND") || p.isKeyword("OR") {
		join := p.tok.Text
		p.advance()
		cmp, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		ast.Joins = append(ast.Joins, join)
		ast.Conditions = append(ast.Conditions, cmp)
	}
	if err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	ast.Formula = expr
	return ast, nil
}

// ParseMatch parses a "MATCH: value-comparison for-clause?" string.
func ParseMatch(input string) (*MatchAST, *errkind.Error) {
	p := newParser(input)
	if err := p.expectKeyword("MATCH"); err != nil {
		return nil, err
	}
	if p.tok.Kind != COLON {
		return nil, errkind.New(errkind.InvalidValue, "expected ':' after MATCH")
	}
	p.advance()

	cmp, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	ast := &MatchAST{Cmp: cmp}
	if p.tok.Kind == COMMA {
		p.advance()
	}
	if p.isKeyword("FOR") {
		p.advance()
		fc, err := p.parseForClause()
		if err != nil {
			return nil, err
		}
		ast.For = fc
	}
	return ast, nil
}

func (p *Parser) parseForClause() (ForClause, *errkind.Error) {
	switch p.tok.Text {
	case "KV":
		p.advance()
		return ForKV, nil
	case "KEY":
		p.advance()
		return ForKey, nil
	case "VALUE":
		p.advance()
		return ForValue, nil
	default:
		return ForNone, errkind.New(errkind.InvalidValue, "expected KV, KEY, or VALUE after FOR, got %q", p.tok.Text)
	}
}

func (p *Parser) parseNumberRules() ([]NumberRule, *errkind.Error) {
	var rules []NumberRule
	for {
		rule, err := p.parseNumberRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
		if p.tok.Kind != COMMA {
			break
		}
		// lookahead: a trailing ", FOR ..." belongs to the caller, not
		// another number rule. Restore both the token and the lexer's
		// byte position (the Parser struct only mirrors the lexer's
		// current token, not its internal cursor).
		savedPos, savedTok := p.lex.pos, p.tok
		p.advance()
		if p.isKeyword("FOR") {
			p.lex.pos, p.tok = savedPos, savedTok
			break
		}
	}
	return rules, nil
}

var comparatorKeywords = map[string]Comparator{
	"LT": CmpLT, "GT": CmpGT, "LE": CmpLE, "GE": CmpGE, "NE": CmpNE, "EQ": CmpEQ,
}

func (p *Parser) parseNumberRule() (NumberRule, *errkind.Error) {
	cmp, ok := comparatorKeywords[p.tok.Text]
	if p.tok.Kind != KEYWORD || !ok {
		return NumberRule{}, errkind.New(errkind.InvalidValue, "expected comparator, got %q", p.tok.Text)
	}
	p.advance()
	if p.tok.Kind != NUMBER {
		return NumberRule{}, errkind.New(errkind.InvalidValue, "expected number after comparator, got %q", p.tok.Text)
	}
	val, _ := strconv.ParseFloat(p.tok.Text, 64)
	p.advance()
	return NumberRule{Cmp: cmp, Value: val}, nil
}

// parsePattern parses "LIKE pattern" or "AS literal", with LIKE patterns
// additionally accepting a "/regex/flags" form and an optional "MAX n"
// max-length suffix (spec.md §6: "Patterns are literal strings optionally
// wrapped /regex/flags ... and a max-length suffix").
func (p *Parser) parsePattern() (*Pattern, *errkind.Error) {
	asForm := p.isKeyword("AS")
	p.advance() // consume LIKE or AS
	if p.tok.Kind != STRING {
		return nil, errkind.New(errkind.InvalidValue, "expected string literal, got %q", p.tok.Text)
	}
	raw := p.tok.Text
	p.advance()

	pat := &Pattern{IsAsForm: asForm}
	if !asForm && len(raw) >= 2 && raw[0] == '/' {
		if last := strings.LastIndexByte(raw, '/'); last > 0 {
			pat.IsRegex = true
			pat.Literal = raw[1:last]
			pat.Flags = raw[last+1:]
		} else {
			pat.Literal = raw
		}
	} else {
		pat.Literal = raw
	}

	if p.isKeyword("MAX") {
		p.advance()
		if p.tok.Kind != NUMBER {
			return nil, errkind.New(errkind.InvalidValue, "expected number after MAX, got %q", p.tok.Text)
		}
		n, _ := strconv.Atoi(p.tok.Text)
		pat.MaxLen = n
		pat.HasMax = true
		p.advance()
	}
	return pat, nil
}

func (p *Parser) parseComparison() (Comparison, *errkind.Error) {
	left, err := p.parseExpr()
	if err != nil {
		return Comparison{}, err
	}
	cmp, ok := comparatorKeywords[p.tok.Text]
	var symCmp Comparator
	switch p.tok.Kind {
	case KEYWORD:
		if !ok {
			return Comparison{}, errkind.New(errkind.InvalidValue, "expected comparator, got %q", p.tok.Text)
		}
		symCmp = cmp
		p.advance()
	case LT_OP:
		symCmp = CmpLT
		p.advance()
	case GT_OP:
		symCmp = CmpGT
		p.advance()
	case LE_OP:
		symCmp = CmpLE
		p.advance()
	case GE_OP:
		symCmp = CmpGE
		p.advance()
	case NE_OP:
		symCmp = CmpNE
		p.advance()
	case EQ_OP:
		symCmp = CmpEQ
		p.advance()
	default:
		return Comparison{}, errkind.New(errkind.InvalidValue, "expected comparator, got %q", p.tok.Text)
	}
	right, err := p.parseExpr()
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Left: left, Cmp: symCmp, Right: right}, nil
}

// parseExpr implements the standard term/factor precedence climb for
// "+ - * /" with unary minus and parentheses (spec.md §6's formula
// expression grammar), mirroring the teacher parser's Pratt-style
// left-to-right binary op folding at a much smaller scale.
func (p *Parser) parseExpr() (Expr, *errkind.Error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == PLUS || p.tok.Kind == MINUS {
		op := p.tok.Text
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Expr, *errkind.Error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == STAR || p.tok.Kind == SLASH {
		op := p.tok.Text
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (Expr, *errkind.Error) {
	switch p.tok.Kind {
	case MINUS:
		p.advance()
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "-", X: x}, nil
	case LPAREN:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != RPAREN {
			return nil, errkind.New(errkind.InvalidValue, "expected ')', got %q", p.tok.Text)
		}
		p.advance()
		return x, nil
	case NUMBER:
		val, _ := strconv.ParseFloat(p.tok.Text, 64)
		p.advance()
		return NumberLit{Value: val}, nil
	case IDENT:
		name := p.tok.Text
		p.advance()
		return IdentExpr{Name: name}, nil
	default:
		return nil, errkind.New(errkind.InvalidValue, "unexpected token %q in expression", p.tok.Text)
	}
}
