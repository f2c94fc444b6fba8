package token

import "testing"

func TestStreamEndsWithSingleEOF(t *testing.T) {
	s := NewStream([]Token{
		New(IDENTIFIER, "x", Location{}),
		New(EOF, "", Location{Line: 0, Column: 1}),
	})

	for s.HasNext() {
		s.Advance()
	}

	if s.Current().Kind != EOF {
		t.Fatalf("expected cursor to rest on EOF, got %v", s.Current().Kind)
	}
	if s.HasNext() {
		t.Fatalf("HasNext must be false once the cursor reaches EOF")
	}
}

func TestIsAssignOp(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{ASSIGN, true},
		{PLUS_ASSIGN, true},
		{SHR_ASSIGN, true},
		{PLUS, false},
		{EQ_EQ, false},
	}
	for _, c := range cases {
		tok := Token{Kind: c.kind}
		if got := tok.IsAssignOp(); got != c.want {
			t.Errorf("IsAssignOp(%s) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestAssignOpsImpliedOperator(t *testing.T) {
	if AssignOps[PLUS_ASSIGN] != PLUS {
		t.Fatalf("PLUS_ASSIGN must imply PLUS")
	}
}

func TestLocationHumanIsOneBased(t *testing.T) {
	loc := Location{Line: 0, Column: 0}
	line, col := loc.Human()
	if line != 1 || col != 1 {
		t.Fatalf("Human() = (%d,%d), want (1,1)", line, col)
	}
}

func TestInRangeDistinguishesOutOfBoundsFromEOF(t *testing.T) {
	s := NewStream([]Token{
		New(IDENTIFIER, "x", Location{}),
		New(EOF, "", Location{}),
	})
	if !s.InRange(1) {
		t.Fatalf("offset 1 should be in range (the EOF token)")
	}
	if s.InRange(5) {
		t.Fatalf("offset 5 should be out of range")
	}
}
