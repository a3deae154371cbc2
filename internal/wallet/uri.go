package wallet

import "math/big"

// URIScheme is the payment URI scheme prefix.
const URIScheme = "ethereum"

// PaymentURI returns a minimal payment URI for an address:
// "ethereum:<addr>". The address string is used verbatim.
func PaymentURI(addr string) string {
	return URIScheme + ":" + addr
}

// PaymentURIWithValue returns a payment URI carrying a wei amount as a
// decimal value query parameter: "ethereum:<addr>?value=<wei>".
//
// This is a single-field URI, not a full EIP-681 implementation.
func PaymentURIWithValue(addr string, wei *big.Int) string {
	return URIScheme + ":" + addr + "?value=" + wei.String()
}
