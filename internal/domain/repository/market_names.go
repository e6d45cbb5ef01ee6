package repository

// Market names accepted across the API and storage layers.
const (
	MarketPS   = "ps"
	MarketXbox = "xbox"
	MarketPC   = "pc"
)

// IsValidMarket returns true if m is a supported market name.
func IsValidMarket(m string) bool {
	switch m {
	case MarketPS, MarketXbox, MarketPC:
		return true
	default:
		return false
	}
}

// DefaultMarket returns the default market.
func DefaultMarket() string { return MarketPS }

// NormalizeMarket converts a raw string to a valid market (or default).
func NormalizeMarket(s string) string {
	if s == "" {
		return DefaultMarket()
	}
	if IsValidMarket(s) {
		return s
	}
	return DefaultMarket()
}
