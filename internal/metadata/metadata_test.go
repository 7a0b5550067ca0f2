package metadata

import "testing"

func TestHasEntryPoint(t *testing.T) {
	m := AssemblyMetadata{EntryPointSymbols: []string{"A.Mod"}}
	if !m.HasEntryPoint("A.Mod") {
		t.Error("expected HasEntryPoint to find A.Mod")
	}
	if m.HasEntryPoint("B.Mod") {
		t.Error("expected HasEntryPoint to reject unknown symbol")
	}
}

func TestNewReaderReturnsPlatformReader(t *testing.T) {
	r := NewReader()
	if r == nil {
		t.Fatal("expected a non-nil reader")
	}
}
