package lexer

import (
	"testing"

	"github.com/levforge/deslev/pkg/compiler/token"
)

func TestNextToken(t *testing.T) {
	input := `
# wizard's tower
MAZE: "tower1", random
FLAGS: noteleport, hardfloor
GEOMETRY: center, center
MAP
--- ---
|.| |.|
--- ---
ENDMAP
$monsters = { 'L', 'N' }
MONSTER: 'L', (1,1)
IF [50%] {
  OBJECT: '"', "amulet of life saving", (2,1)
}
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.MAZE, "MAZE"},
		{token.COLON, ":"},
		{token.STRING, "tower1"},
		{token.COMMA, ","},
		{token.RANDOM, "random"},

		{token.FLAGS, "FLAGS"},
		{token.COLON, ":"},
		{token.FLAGTYPE, "noteleport"},
		{token.COMMA, ","},
		{token.FLAGTYPE, "hardfloor"},

		{token.GEOMETRY, "GEOMETRY"},
		{token.COLON, ":"},
		{token.JUSTIFICATION, "center"},
		{token.COMMA, ","},
		{token.JUSTIFICATION, "center"},

		{token.MAP, "MAP"},
		{token.MAPDATA, "--- ---\n|.| |.|\n--- ---"},

		{token.VARIABLE, "monsters"},
		{token.ASSIGN, "="},
		{token.LBRACE, "{"},
		{token.CHAR, "L"},
		{token.COMMA, ","},
		{token.CHAR, "N"},
		{token.RBRACE, "}"},

		{token.MONSTER, "MONSTER"},
		{token.COLON, ":"},
		{token.CHAR, "L"},
		{token.COMMA, ","},
		{token.LPAREN, "("},
		{token.INTEGER, "1"},
		{token.COMMA, ","},
		{token.INTEGER, "1"},
		{token.RPAREN, ")"},

		{token.IF, "IF"},
		{token.PERCENT, "50"},
		{token.LBRACE, "{"},

		{token.OBJECT, "OBJECT"},
		{token.COLON, ":"},
		{token.CHAR, `"`},
		{token.COMMA, ","},
		{token.STRING, "amulet of life saving"},
		{token.COMMA, ","},
		{token.LPAREN, "("},
		{token.INTEGER, "2"},
		{token.COMMA, ","},
		{token.INTEGER, "1"},
		{token.RPAREN, ")"},

		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumbersAndOperators(t *testing.T) {
	input := `$gold = 2d6 * 10 + -3
IF [$gold > 20] { }
IF [$gold <> 0] { }
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.VARIABLE, "gold"},
		{token.ASSIGN, "="},
		{token.DICE, "2d6"},
		{token.ASTERISK, "*"},
		{token.INTEGER, "10"},
		{token.PLUS, "+"},
		{token.INTEGER, "-3"},

		{token.IF, "IF"},
		{token.LBRACKET, "["},
		{token.VARIABLE, "gold"},
		{token.GT, ">"},
		{token.INTEGER, "20"},
		{token.RBRACKET, "]"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},

		{token.IF, "IF"},
		{token.LBRACKET, "["},
		{token.VARIABLE, "gold"},
		{token.NEQ, "<>"},
		{token.INTEGER, "0"},
		{token.RBRACKET, "]"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},

		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestCharLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`'L'`, "L"},
		{`'.'`, "."},
		{`'\''`, `\`},
		{`'\{'`, "{"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.CHAR {
			t.Errorf("input %q: expected CHAR, got %q", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestCommentsSkipped(t *testing.T) {
	input := `# leading comment
MESSAGE: "hello" # trailing comment
`
	l := New(input)

	tok := l.NextToken()
	if tok.Type != token.MESSAGE {
		t.Fatalf("expected MESSAGE, got %q", tok.Type)
	}
	if tok.Line != 2 {
		t.Errorf("expected line 2, got %d", tok.Line)
	}
	l.NextToken() // colon
	tok = l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "hello" {
		t.Fatalf("expected STRING \"hello\", got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.EOF {
		t.Fatalf("expected EOF after trailing comment, got %q", tok.Type)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`MESSAGE: "no closing quote`)

	l.NextToken() // MESSAGE
	l.NextToken() // colon
	tok := l.NextToken()

	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
	if l.Err() == nil {
		t.Fatal("expected lexer error, got nil")
	}
	if l.Err().Line != 1 {
		t.Errorf("expected error on line 1, got %d", l.Err().Line)
	}
}

func TestUnterminatedMapBlock(t *testing.T) {
	l := New("MAP\n...\n...")

	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
	if l.Err() == nil {
		t.Fatal("expected lexer error, got nil")
	}
}
