package catalog

import "testing"

func TestGet(t *testing.T) {
	p, ok := Get("ecpf-a1")
	if !ok {
		t.Fatal("ecpf-a1 missing from catalog")
	}
	if p.UnitPrice != 5.00 {
		t.Errorf("ecpf-a1 price = %.2f, want 5.00", p.UnitPrice)
	}
	if p.Code != "001" {
		t.Errorf("ecpf-a1 code = %q, want 001", p.Code)
	}

	if _, ok := Get("ecpf-a9"); ok {
		t.Error("unknown product id resolved")
	}
}

func TestPriceMatches(t *testing.T) {
	p, _ := Get("ecpf-a1")

	tests := []struct {
		declared float64
		want     bool
	}{
		{5.00, true},
		{5.01, true},  // within one cent
		{4.99, true},  // within one cent
		{4.98, false}, // tampered
		{0.01, false},
		{500.00, false},
	}

	for _, tt := range tests {
		if got := p.PriceMatches(tt.declared); got != tt.want {
			t.Errorf("PriceMatches(%.2f) = %v, want %v", tt.declared, got, tt.want)
		}
	}
}
