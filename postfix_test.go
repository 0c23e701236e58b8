package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(t *testing.T, s string) ExprToken {
	t.Helper()
	tok, ok := numberToken(s)
	require.True(t, ok, "not a number: %s", s)
	return tok
}

func op(s SymbolType) ExprToken {
	return ExprToken{symbol: s}
}

func symbols(postfix []*ExprToken) []string {
	out := make([]string, len(postfix))
	for i, p := range postfix {
		out[i] = p.String()
	}
	return out
}

func TestToPostfix(t *testing.T) {
	tests := []struct {
		name  string
		infix func(t *testing.T) []ExprToken
		want  []string
	}{
		{
			"precedence",
			func(t *testing.T) []ExprToken {
				return []ExprToken{num(t, "1"), op(SYM_ADD), num(t, "2"), op(SYM_MULTIPLY), num(t, "3")}
			},
			[]string{"1", "2", "3", "*", "+"},
		},
		{
			"left associative",
			func(t *testing.T) []ExprToken {
				return []ExprToken{num(t, "2"), op(SYM_POWER), num(t, "3"), op(SYM_POWER), num(t, "2")}
			},
			[]string{"2", "3", "**", "2", "**"},
		},
		{
			"parentheses",
			func(t *testing.T) []ExprToken {
				return []ExprToken{op(SYM_OPAREN), num(t, "1"), op(SYM_ADD), num(t, "2"), op(SYM_CPAREN), op(SYM_MULTIPLY), num(t, "3")}
			},
			[]string{"1", "2", "+", "3", "*"},
		},
		{
			"prefix binds to power",
			func(t *testing.T) []ExprToken {
				return []ExprToken{op(SYM_NEGATIVE), num(t, "2"), op(SYM_POWER), num(t, "2")}
			},
			[]string{"2", "2", "**", "neg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postfix, err := toPostfix(tt.infix(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, symbols(postfix))
		})
	}
}

func TestToPostfixCircuit(t *testing.T) {
	infix := []ExprToken{num(t, "1"), op(SYM_AND), num(t, "0"), op(SYM_OR), num(t, "1")}
	postfix, err := toPostfix(infix)
	require.NoError(t, err)
	require.Len(t, postfix, 5)

	// 1 0 and 1 or
	assert.Same(t, &infix[1], postfix[0].circuit, "left branch of AND")
	assert.Same(t, &infix[3], postfix[2].circuit, "the AND completes the left branch of OR")
	assert.Nil(t, postfix[1].circuit)
}

func TestToPostfixErrors(t *testing.T) {
	tests := []struct {
		name  string
		infix []ExprToken
		want  error
	}{
		{"missing close paren", []ExprToken{op(SYM_OPAREN), op(SYM_INTEGER)}, errMissingCloseParen},
		{"missing open paren", []ExprToken{op(SYM_INTEGER), op(SYM_CPAREN)}, errMissingOpenParen},
		{"comma outside call", []ExprToken{op(SYM_INTEGER), op(SYM_COMMA), op(SYM_INTEGER)}, errMisplacedComma},
		{"and without left side", []ExprToken{op(SYM_AND), op(SYM_INTEGER)}, errExprSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toPostfix(tt.infix)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, errExprSyntax)
		})
	}
}
