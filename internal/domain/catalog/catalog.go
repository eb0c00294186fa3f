// Package catalog is the server-side source of truth for product prices.
// A client-declared amount is only informational; the catalog price is the
// one sent to the payment provider.
package catalog

import "math"

// priceTolerance is the maximum accepted difference between a declared
// amount and the catalog unit price (one cent).
const priceTolerance = 0.01

// DefaultProductID is assumed when a checkout payload omits the product.
const DefaultProductID = "ecpf-a1"

// Product is an immutable catalog entry, loaded at process start.
type Product struct {
	Code          string
	Description   string
	UnitPrice     float64
	Type          string
	ValidityYears int
}

var products = map[string]Product{
	"ecpf-a1": {
		Code:          "001",
		Description:   "Certificado Digital e-CPF A1 (1 ano)",
		UnitPrice:     5.00,
		Type:          "e-CPF",
		ValidityYears: 1,
	},
	"ecpf-a3": {
		Code:          "002",
		Description:   "Certificado Digital e-CPF A3 (3 anos)",
		UnitPrice:     150.00,
		Type:          "e-CPF",
		ValidityYears: 3,
	},
	"ecnpj-a1": {
		Code:          "003",
		Description:   "Certificado Digital e-CNPJ A1 (1 ano)",
		UnitPrice:     200.00,
		Type:          "e-CNPJ",
		ValidityYears: 1,
	},
}

// Get returns the product for the given id.
func Get(id string) (Product, bool) {
	p, ok := products[id]
	return p, ok
}

// PriceMatches reports whether a client-declared amount agrees with the
// catalog unit price within the one-cent tolerance.
func (p Product) PriceMatches(declared float64) bool {
	return math.Abs(declared-p.UnitPrice) <= priceTolerance
}
