package textnorm

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Travia Gestión S.L.", "TRAVIA GESTION S.L."},
		{"Fase: Contabilizar factura", "FASE: CONTABILIZAR FACTURA"},
		{"Ñandú", "NANDU"},
		{"crème brûlée", "CREME BRULEE"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldPreservesRuneCount(t *testing.T) {
	in := "Facturación_Ñu_García"
	if len([]rune(Fold(in))) != len([]rune(in)) {
		t.Errorf("rune count changed: %q -> %q", in, Fold(in))
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Travia Gestión S.L.", "TRAVIA") {
		t.Error("expected TRAVIA to be found")
	}
	if ContainsFold("Meca Holdings", "TRAVIA") {
		t.Error("did not expect TRAVIA in Meca Holdings")
	}
}

func TestFoldTrimAndBreaks(t *testing.T) {
	if got := FoldTrim("  visado pm \t"); got != "VISADO PM" {
		t.Errorf("FoldTrim = %q", got)
	}
	if got := ReplaceBreaks("A\u00a0B\r\nC"); got != "A B  C" {
		t.Errorf("ReplaceBreaks = %q", got)
	}
}
