package builtins

import (
	"testing"

	"woc/internal/types"
)

func TestLoadParsesAllFourBuiltins(t *testing.T) {
	in := types.NewInterner()
	sigs, err := Load(in)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := []string{"putchar", "putnum", "quit", "assert"}
	if len(sigs) != len(want) {
		t.Fatalf("got %d signatures, want %d", len(sigs), len(want))
	}
	for i, name := range want {
		if sigs[i].Name != name {
			t.Errorf("signature %d: got %q, want %q", i, sigs[i].Name, name)
		}
		if len(sigs[i].Params) != 1 {
			t.Errorf("%s: expected exactly 1 parameter, got %d", name, len(sigs[i].Params))
		}
	}
}

func TestPutcharTakesChar(t *testing.T) {
	in := types.NewInterner()
	sigs, _ := Load(in)
	if !sigs[0].Params[0].Typ.Equal(in.CharT()) {
		t.Fatalf("putchar's parameter must be char, got %s", sigs[0].Params[0].Typ)
	}
	if !sigs[0].ReturnType.Equal(in.FreeT()) {
		t.Fatalf("putchar must return free, got %s", sigs[0].ReturnType)
	}
}

func TestAssertTakesBool(t *testing.T) {
	in := types.NewInterner()
	sigs, _ := Load(in)
	if !sigs[3].Params[0].Typ.Equal(in.BoolT()) {
		t.Fatalf("assert's parameter must be bool, got %s", sigs[3].Params[0].Typ)
	}
}
