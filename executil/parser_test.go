package executil

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestParseFilterLikeRegexMaxFor(t *testing.T) {
	ast, err := ParseFilter(`FILTER: LIKE '/^foo/i' MAX 16, FOR KV`)
	assert.Nil(t, err)
	assert.True(t, ast.Match != nil)
	assert.True(t, ast.Match.IsRegex)
	assert.Equal(t, ast.Match.Literal, "^foo")
	assert.Equal(t, ast.Match.Flags, "i")
	assert.Equal(t, ast.Match.MaxLen, 16)
	assert.Equal(t, ast.For, ForKV)
}

func TestFilterRoundTrip(t *testing.T) {
	input := `FILTER: LIKE '/^foo/i' MAX 16, FOR KV`
	ast, err := ParseFilter(input)
	assert.Nil(t, err)
	printed := PrintFilter(ast)
	ast2, err := ParseFilter(printed)
	assert.Nil(t, err)
	assert.Equal(t, PrintFilter(ast2), printed)
}

func TestParseFilterNumberRules(t *testing.T) {
	ast, err := ParseFilter(`FILTER: GT 0, LT 100`)
	assert.Nil(t, err)
	assert.Equal(t, len(ast.Numbers), 2)
	assert.Equal(t, ast.Numbers[0].Cmp, CmpGT)
	assert.Equal(t, ast.Numbers[1].Cmp, CmpLT)
}

func TestParseFilterAll(t *testing.T) {
	ast, err := ParseFilter(`FILTER: ALL`)
	assert.Nil(t, err)
	assert.True(t, ast.All)
}

func TestParseKeyLike(t *testing.T) {
	ast, err := ParseKey(`KEY: LIKE 'name', FOR VALUE`)
	assert.Nil(t, err)
	assert.Equal(t, ast.Match.Literal, "name")
	assert.Equal(t, ast.For, ForValue)
}

func TestParseFormula(t *testing.T) {
	ast, err := ParseFormula(`FORMULA: it GT 0 BY it * 2 + 1`)
	assert.Nil(t, err)
	assert.Equal(t, len(ast.Conditions), 1)
	assert.Equal(t, ast.Conditions[0].Cmp, CmpGT)
	printed := PrintFormula(ast)
	assert.Equal(t, printed, "FORMULA: it GT 0 BY it * 2 + 1")
}

func TestParseMatch(t *testing.T) {
	ast, err := ParseMatch(`MATCH: it EQ 3, FOR KEY`)
	assert.Nil(t, err)
	assert.Equal(t, ast.Cmp.Cmp, CmpEQ)
	assert.Equal(t, ast.For, ForKey)
}
