package executil

import (
	"fmt"
	"strconv"
	"strings"
)

// PrintFilter re-prints a FilterAST into the canonical token stream
// ParseFilter accepts, satisfying spec.md §8's "Parse(print(ast)) == ast"
// round-trip law (exercised directly by scenario E5).
func PrintFilter(ast *FilterAST) string {
	var b strings.Builder
	b.WriteString("FILTER: ")
	switch {
	case ast.All:
		b.WriteString("ALL")
	case ast.Match != nil:
		b.WriteString(printPattern(ast.Match))
	default:
		parts := make([]string, len(ast.Numbers))
		for i, r := range ast.Numbers {
			parts[i] = fmt.Sprintf("%s %s", r.Cmp, formatNumber(r.Value))
		}
		b.WriteString(strings.Join(parts, ", "))
	}
	if ast.For != ForNone {
		b.WriteString(", FOR ")
		b.WriteString(string(ast.For))
	}
	return b.String()
}

// PrintKey re-prints a KeyAST into its canonical token stream.
func PrintKey(ast *KeyAST) string {
	var b strings.Builder
	b.WriteString("KEY: ")
	switch {
	case ast.All:
		b.WriteString("ALL")
	case ast.Match != nil:
		b.WriteString(printPattern(ast.Match))
	}
	if ast.For != ForNone {
		b.WriteString(", FOR ")
		b.WriteString(string(ast.For))
	}
	return b.String()
}

// PrintFormula re-prints a FormulaAST into its canonical token stream.
func PrintFormula(ast *FormulaAST) string {
	var b strings.Builder
	b.WriteString("FORMULA: ")
	for i, cond := range ast.Conditions {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(ast.Joins[i-1])
			b.WriteString(" ")
		}
		b.WriteString(printComparison(cond))
	}
	b.WriteString(" BY ")
	b.WriteString(printExpr(ast.Formula))
	return b.String()
}

// PrintMatch re-prints a MatchAST into its canonical token stream.
func PrintMatch(ast *MatchAST) string {
	var b strings.Builder
	b.WriteString("MATCH: ")
	b.WriteString(printComparison(ast.Cmp))
	if ast.For != ForNone {
		b.WriteString(", FOR ")
		b.WriteString(string(ast.For))
	}
	return b.String()
}

func printPattern(p *Pattern) string {
	keyword := "LIKE"
	if p.IsAsForm {
		keyword = "AS"
	}
	literal := p.Literal
	if p.IsRegex {
		literal = "/" + literal + "/" + p.Flags
	}
	out := fmt.Sprintf("%s '%s'", keyword, literal)
	if p.HasMax {
		out += fmt.Sprintf(" MAX %d", p.MaxLen)
	}
	return out
}

func printComparison(c Comparison) string {
	return fmt.Sprintf("%s %s %s", printExpr(c.Left), c.Cmp, printExpr(c.Right))
}

func printExpr(e Expr) string {
	switch n := e.(type) {
	case NumberLit:
		return formatNumber(n.Value)
	case IdentExpr:
		return n.Name
	case *UnaryExpr:
		return "-" + printExpr(n.X)
	case *BinaryExpr:
		return fmt.Sprintf("%s %s %s", printExpr(n.X), n.Op, printExpr(n.Y))
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
