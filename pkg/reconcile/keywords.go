package reconcile

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCardPrefixes are the card-network markers that lead card statement
// descriptions, e.g. "VISA海外利用 GITHUB, INC.".
var DefaultCardPrefixes = []string{"VISA", "MASTERCARD", "MASTER", "JCB", "AMEX", "DINERS"}

var punctuationReplacer = strings.NewReplacer(
	",", " ",
	".", " ",
	"*", " ",
	"(", " ",
	")", " ",
	"（", " ",
	"）", " ",
)

// Keywords extracts upper-cased matching keywords from a ledger description.
// A leading card-network token and an optional "VS" token after it are
// removed, punctuation becomes whitespace, and tokens shorter than two
// characters are dropped.
func Keywords(description string, cardPrefixes []string) []string {
	text := strings.TrimSpace(description)
	text = stripCardPrefix(text, cardPrefixes)

	var keywords []string
	for _, token := range strings.Fields(punctuationReplacer.Replace(text)) {
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		keywords = append(keywords, strings.ToUpper(token))
	}
	return keywords
}

func stripCardPrefix(text string, cardPrefixes []string) string {
	first, rest := cutToken(text)
	if !isCardToken(first, cardPrefixes) {
		return text
	}

	if token, after := cutToken(rest); strings.EqualFold(token, "VS") {
		rest = after
	}
	return rest
}

// cutToken splits text at its first run of whitespace, including U+3000
// and tabs. Leading whitespace is skipped.
func cutToken(text string) (token, rest string) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		return text, ""
	}
	return text[:end], strings.TrimLeftFunc(text[end:], unicode.IsSpace)
}

// isCardToken reports whether token is a card-network marker, alone or
// followed by a non-Latin suffix such as "VISA海外利用". "MASTERY" is not.
func isCardToken(token string, cardPrefixes []string) bool {
	upper := strings.ToUpper(token)
	for _, prefix := range cardPrefixes {
		p := strings.ToUpper(prefix)
		if p == "" || !strings.HasPrefix(upper, p) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(upper[len(p):])
		if next == utf8.RuneError || !unicode.Is(unicode.Latin, next) {
			return true
		}
	}
	return false
}

// CounterpartyMatches reports whether a stored counterparty name and the
// description keywords abbreviate one another. An empty counterparty never
// matches.
func CounterpartyMatches(counterparty string, keywords []string) bool {
	name := strings.ToUpper(strings.TrimSpace(counterparty))
	if name == "" {
		return false
	}
	for _, keyword := range keywords {
		if strings.Contains(name, keyword) || strings.Contains(keyword, name) {
			return true
		}
	}
	return false
}
