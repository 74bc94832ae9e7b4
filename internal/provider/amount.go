package provider

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies are quoted in whole units by minor-unit APIs and must
// not be divided by 100.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// IsZeroDecimalCurrency reports whether the currency has no minor unit.
func IsZeroDecimalCurrency(currency string) bool {
	_, ok := zeroDecimalCurrencies[strings.ToUpper(currency)]
	return ok
}

// AmountFromMinorUnits converts a minor-unit ("cents") amount into decimal
// units, honouring the zero-decimal currency exception list.
func AmountFromMinorUnits(minor int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(minor)
	if IsZeroDecimalCurrency(currency) {
		return d
	}

	return d.Shift(-2)
}
