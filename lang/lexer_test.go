package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLex_AllTokenKinds(t *testing.T) {
	tokens, err := Lex(`( ) [ ] { } , :: .. for name "text" 42`)
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{
		TokenLeftParen, TokenRightParen,
		TokenLeftBracket, TokenRightBracket,
		TokenLeftCurly, TokenRightCurly,
		TokenComma, TokenColonColon, TokenDotDot,
		TokenKeyword, TokenIdentifier, TokenStringLiteral, TokenNumber,
	}, kinds(tokens))
}

func TestLex_WhitespaceInsensitive(t *testing.T) {
	compact, err := Lex(`for 0..3{spawn_random_process()}`)
	require.NoError(t, err)
	spaced, err := Lex("for  0 .. 3 {\n\tspawn_random_process ( )\n}\n")
	require.NoError(t, err)

	assert.Equal(t, kinds(compact), kinds(spaced))
}

func TestLex_SpansAreByteRanges(t *testing.T) {
	source := `max_processes :: 50`
	tokens, err := Lex(source)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, Span{Start: 0, End: 13}, tokens[0].Span)
	assert.Equal(t, "max_processes", tokens[0].Lexeme)
	assert.Equal(t, Span{Start: 14, End: 16}, tokens[1].Span)
	assert.Equal(t, Span{Start: 17, End: 19}, tokens[2].Span)
	assert.Equal(t, "50", source[tokens[2].Span.Start:tokens[2].Span.End])
}

func TestLex_StringLiteral_NoEscapes(t *testing.T) {
	tokens, err := Lex(`"hello world"`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	// The lexeme excludes the quotes; the span covers the contents.
	assert.Equal(t, "hello world", tokens[0].Lexeme)
	assert.Equal(t, TokenStringLiteral, tokens[0].Kind)
	assert.Equal(t, Span{Start: 1, End: 12}, tokens[0].Span)
}

func TestLex_KeywordOnlyFor(t *testing.T) {
	tokens, err := Lex(`for forty fortress`)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, TokenKeyword, tokens[0].Kind)
	assert.Equal(t, TokenIdentifier, tokens[1].Kind)
	assert.Equal(t, TokenIdentifier, tokens[2].Kind)
}

func TestLex_DigitInitialRunsAreNumbers(t *testing.T) {
	tokens, err := Lex(`123 0 007`)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	for _, tok := range tokens {
		assert.Equal(t, TokenNumber, tok.Kind)
	}
	assert.Equal(t, "007", tokens[2].Lexeme)
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		msg    string
	}{
		{"solitary colon", `max :: 5 :`, "expected `::`"},
		{"solitary dot", `0 . 3`, "expected `..`"},
		{"unterminated string", `spawn_process("oops`, "unterminated string literal"},
		{"unexpected character", `spawn_process(%)`, "unexpected character"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Lex(tc.source)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.msg)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.GreaterOrEqual(t, syntaxErr.Span.End, syntaxErr.Span.Start)
		})
	}
}

func TestLex_EmptySource(t *testing.T) {
	tokens, err := Lex("")
	require.NoError(t, err)
	assert.Empty(t, tokens)

	tokens, err = Lex("   \n\t  ")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
