// Package currencypkg provides common currency related functionality for apps.
package currencypkg

// Constants for all supported currencies.
const (
	USD = "USD"
	EUR = "EUR"
	RMB = "RMB"
)

// SupportedCurrencies holds all the supported currencies.
var SupportedCurrencies = []string{
	USD,
	EUR,
	RMB,
}

// scales holds the number of decimal places each currency is settled in.
var scales = map[string]int32{
	USD: 2,
	EUR: 2,
	RMB: 2,
}

// IsSupportedCurrency returns true if the currncy is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}

	return false
}

// Scale returns the decimal scale the given currency is settled in.
func Scale(currency string) int32 {
	s, ok := scales[currency]
	if !ok {
		return 2
	}

	return s
}
