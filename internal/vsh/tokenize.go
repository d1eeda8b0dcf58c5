package vsh

import "strings"

// Tokenize splits a command line on spaces. A double-quoted run is kept in
// one token together with its quotes, so `echo "a  b"` yields two tokens.
// An unterminated quote extends to the end of the line.
func Tokenize(line string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inToken bool
		quoted  bool
	)
	for _, r := range line {
		if r == ' ' && !quoted {
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
			continue
		}
		inToken = true
		if r == '"' {
			quoted = !quoted
		}
		cur.WriteRune(r)
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// unquote returns the text between a token's surrounding double quotes. The
// token must start and end with a quote and contain no other quote.
func unquote(tok string) (string, bool) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", false
	}
	inner := tok[1 : len(tok)-1]
	if strings.Contains(inner, `"`) {
		return "", false
	}
	return inner, true
}
