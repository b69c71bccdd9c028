package lexer

import "testing"

func collectTypes(input string) []TokenType {
	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			return types
		}
	}
}

func TestBasicTokens(t *testing.T) {
	input := `a: 1 + 2.5; b: 'hi' <> "there"`
	types := collectTypes(input)
	want := []TokenType{
		IDENT, COLON, NUMBER, PLUS, NUMBER, SEMI,
		IDENT, COLON, STRING, NOT_EQ, STRING, EOF,
	}
	if len(types) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(types), types, len(want), want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d: got %v want %v", i, types[i], want[i])
		}
	}
}

func TestRangeAndFilterOperators(t *testing.T) {
	types := collectTypes("1..5 nums[...>6]")
	want := []TokenType{NUMBER, DOTDOT, NUMBER, IDENT, LBRACK, ELLIPSIS, GREATER, NUMBER, RBRACK, EOF}
	for i, wt := range want {
		if i >= len(types) || types[i] != wt {
			t.Fatalf("at %d: got %v want %v (full: %v)", i, types[i], wt, types)
		}
	}
}

func TestKeywords(t *testing.T) {
	types := collectTypes("if true then 1 else 0")
	want := []TokenType{IF, TRUE, THEN, NUMBER, ELSE, NUMBER, EOF}
	for i, wt := range want {
		if types[i] != wt {
			t.Fatalf("at %d: got %v want %v", i, types[i], wt)
		}
	}
}

func TestNewlineTerminatesField(t *testing.T) {
	types := collectTypes("a: 1\nb: 2")
	want := []TokenType{IDENT, COLON, NUMBER, NEWLINE, IDENT, COLON, NUMBER, EOF}
	for i, wt := range want {
		if types[i] != wt {
			t.Fatalf("at %d: got %v want %v", i, types[i], wt)
		}
	}
}

func TestCommentSkipped(t *testing.T) {
	types := collectTypes("a: 1 // comment\nb: 2")
	want := []TokenType{IDENT, COLON, NUMBER, NEWLINE, IDENT, COLON, NUMBER, EOF}
	for i, wt := range want {
		if types[i] != wt {
			t.Fatalf("at %d: got %v want %v", i, types[i], wt)
		}
	}
}

func TestIllegalCharacterReportsOffset(t *testing.T) {
	l := New("a: 1 $ 2")
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
	}
	errs := l.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(errs))
	}
	if errs[0].Pos.Column != 6 {
		t.Errorf("expected column 6, got %d", errs[0].Pos.Column)
	}
	if errs[0].Pos.Offset != 5 {
		t.Errorf("expected offset 5, got %d", errs[0].Pos.Offset)
	}
}
