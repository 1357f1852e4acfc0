// Package address finds Solana-style token contract addresses in free text.
package address

import "regexp"

// pattern matches base58 tokens of 32 to 44 characters. The base58 alphabet
// excludes 0, O, I and l.
var pattern = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)

// Detect returns the leftmost address-looking substring of text. It performs
// no checksum or on-chain validation, so any 32-44 character base58 word
// matches.
func Detect(text string) (string, bool) {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}
