package utils

import (
	"regexp"
	"strings"
)

var (
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)
	stopwords    = map[string]struct{}{
		"a": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "best": {},
		"but": {}, "by": {}, "can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "give": {},
		"good": {}, "have": {}, "how": {}, "i": {}, "im": {}, "in": {}, "is": {}, "it": {},
		"like": {}, "looking": {}, "me": {}, "my": {}, "need": {}, "of": {}, "on": {}, "or": {},
		"please": {}, "product": {}, "products": {}, "recommend": {}, "recommendation": {},
		"recommendations": {}, "searching": {}, "seeking": {}, "show": {}, "similar": {},
		"some": {}, "something": {}, "that": {}, "the": {}, "this": {}, "to": {}, "want": {},
		"what": {}, "which": {}, "with": {}, "would": {}, "you": {}, "your": {},
	}
)

// ExtractMeaningfulTokens tokenizes text, removes stopwords, and deduplicates tokens while preserving order.
func ExtractMeaningfulTokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	rawTokens := tokenize(text)
	filtered := filterTokens(rawTokens)
	return dedupeTokens(filtered)
}

// BuildTokenSet builds a unique token set from the provided values.
func BuildTokenSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, value := range values {
		for _, token := range ExtractMeaningfulTokens(value) {
			set[token] = struct{}{}
		}
	}
	return set
}

// ContainsAllTokens returns true when the token set contains every required token.
// The missing slice lists any tokens that were not found.
func ContainsAllTokens(tokenSet map[string]struct{}, required []string) (bool, []string) {
	if len(required) == 0 {
		return true, nil
	}

	var missing []string
	for _, token := range required {
		if _, ok := tokenSet[token]; !ok {
			missing = append(missing, token)
		}
	}

	return len(missing) == 0, missing
}

// TokenHasDigit reports whether the token contains at least one numeric digit.
func TokenHasDigit(token string) bool {
	for _, r := range token {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// ShadeTokens returns the query tokens that carry a digit, such as shade
// numbers ("210", "22n"). Those must appear verbatim in a matching product.
func ShadeTokens(query string) []string {
	var required []string
	for _, token := range ExtractMeaningfulTokens(query) {
		if TokenHasDigit(token) {
			required = append(required, token)
		}
	}
	return required
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func filterTokens(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		// Single letters carry no meaning, single digits can be shade numbers
		if len([]rune(token)) == 1 && !TokenHasDigit(token) {
			continue
		}
		if _, isStopword := stopwords[token]; isStopword {
			continue
		}
		result = append(result, token)
	}
	return result
}

func dedupeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}
