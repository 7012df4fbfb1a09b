// Package symbols decides which provider family a symbol belongs to.
// Classification is a pure function of the symbol string and a static
// identity table; it has no side effects and no failure modes.
package symbols

import "strings"

// Class is the provider family a symbol resolves to.
type Class int

const (
	// Unsupported means the system has no price source for the symbol.
	Unsupported Class = iota
	// Crypto symbols are priced through the batch crypto provider.
	Crypto
	// Equity symbols (stocks, ETFs) are priced one call per symbol.
	Equity
)

func (c Class) String() string {
	switch c {
	case Crypto:
		return "crypto"
	case Equity:
		return "equity"
	default:
		return "unsupported"
	}
}

// cryptoIDs maps native tickers to CoinGecko asset ids. A symbol is crypto
// if and only if it appears here; the id is what goes on the wire.
var cryptoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"MATIC": "matic-network",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
}

// Normalize upper-cases and trims a raw symbol. All lookups and cache keys
// operate on the normalized form.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CryptoID returns the upstream asset id for a crypto ticker.
func CryptoID(symbol string) (string, bool) {
	id, ok := cryptoIDs[Normalize(symbol)]
	return id, ok
}

// Classify maps a symbol to its provider family. Ambiguity is resolved in
// favor of Equity: a short alphabetic token that is not a known crypto
// ticker is assumed to be an equity symbol.
func Classify(symbol string) Class {
	sym := Normalize(symbol)
	if _, ok := cryptoIDs[sym]; ok {
		return Crypto
	}
	if isEquityShape(sym) {
		return Equity
	}
	return Unsupported
}

// isEquityShape is a conservative shape test: 1-5 ASCII letters.
func isEquityShape(sym string) bool {
	if len(sym) == 0 || len(sym) > 5 {
		return false
	}
	for _, r := range sym {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
