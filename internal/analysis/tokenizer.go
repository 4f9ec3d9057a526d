package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenizeFunc splits text into tokens with increment 1 and byte offsets.
type TokenizeFunc func(text string) []Token

// tokenRegex matches alphanumeric sequences (including underscores for initial split).
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// TokenizeCode splits text with code-aware rules.
// It handles camelCase, PascalCase, snake_case, and drops tokens shorter than
// two bytes. All terms are lowercased; offsets point into the original text.
func TokenizeCode(text string) []Token {
	var tokens []Token

	for _, loc := range tokenRegex.FindAllStringIndex(text, -1) {
		partStart := loc[0]
		for _, part := range strings.Split(text[loc[0]:loc[1]], "_") {
			start := partStart
			for _, piece := range SplitCamelCase(part) {
				end := start + len(piece)
				if len(piece) >= 2 {
					tokens = append(tokens, Token{
						Term:              strings.ToLower(piece),
						Start:             start,
						End:               end,
						Type:              codeTokenType(piece),
						PositionIncrement: 1,
					})
				}
				start = end
			}
			partStart += len(part) + 1
		}
	}

	return tokens
}

func codeTokenType(term string) string {
	for _, r := range term {
		if !unicode.IsDigit(r) {
			return TypeAlphaNum
		}
	}
	return TypeNum
}

// TokenizeWhitespace splits text on Unicode whitespace, keeping case and
// punctuation.
func TokenizeWhitespace(text string) []Token {
	var tokens []Token
	i := 0

	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}

		tokens = append(tokens, Token{
			Term:              text[start:i],
			Start:             start,
			End:               i,
			Type:              TypeWord,
			PositionIncrement: 1,
		})
	}

	return tokens
}

// SplitCamelCase splits camelCase and PascalCase identifiers.
// Examples:
//   - "getUserById" -> ["get", "User", "By", "Id"]
//   - "HTTPHandler" -> ["HTTP", "Handler"]
//   - "parseHTTPRequest" -> ["parse", "HTTP", "Request"]
func SplitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Split if previous is lowercase OR next is lowercase (handles acronyms)
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}
