package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountFromMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		minor    int64
		currency string
		want     string
	}{
		{"usd cents", 1999, "usd", "19.99"},
		{"eur cents", -550, "eur", "-5.5"},
		{"single cent", 1, "USD", "0.01"},
		{"zero", 0, "USD", "0"},
		{"jpy whole units", 5000, "jpy", "5000"},
		{"krw whole units", -1200, "KRW", "-1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountFromMinorUnits(tt.minor, tt.currency).String())
		})
	}
}

func TestIsZeroDecimalCurrency(t *testing.T) {
	assert.True(t, IsZeroDecimalCurrency("JPY"))
	assert.True(t, IsZeroDecimalCurrency("jpy"))
	assert.False(t, IsZeroDecimalCurrency("USD"))
	assert.False(t, IsZeroDecimalCurrency(""))
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Adapter(Stripe)
	assert.Error(t, err)

	registry.Register(Stripe, nil)

	_, err = registry.Adapter(Stripe)
	assert.NoError(t, err)
}
