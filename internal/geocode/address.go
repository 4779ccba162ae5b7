package geocode

import (
	"strings"
	"unicode/utf8"
)

// Registry incident locations are sighting descriptions, not addresses
// ("서울 종로구 세종대로 인근 노상"). The Kakao address search matches almost
// nothing with the qualifiers attached, so they are stripped before lookup.
//
// Infix qualifiers are removed wherever they occur, longest token first so
// that " 앞길" never leaves a dangling "길" behind.
var infixQualifiers = []string{
	" 사거리", " 앞길", " 뒷길", " 내부",
	" 인근", " 부근", " 근처", " 주변", " 일대", " 근방",
	" 노상", " 길가", " 입구", " 방면",
	" 앞", " 뒤", " 옆",
}

// Suffix qualifiers are only stripped off the end of the string; stacked
// suffixes come off one at a time until none remains.
var suffixQualifiers = []string{
	"사거리", "남단", "북단",
	"인근", "부근", "근처", "주변", "일대",
	"노상", "길가", "입구", "방면",
	"앞", "뒤", "옆",
}

// minCommaIndex is the lowest rune position at which a comma is treated as
// "main address, detail" rather than part of the address itself.
const minCommaIndex = 5

// ReduceAddress reduces a raw incident-location string to a query the Kakao
// address search has a chance of matching. Empty input yields empty output.
func ReduceAddress(raw string) string {
	s := collapseSpaces(stripParens(raw))
	s = strings.TrimSpace(truncateAtComma(s))
	s = strings.TrimSpace(stripInfixes(s))
	s = strings.TrimSpace(stripSuffixes(s))
	return s
}

// stripParens removes parenthesized substrings left to right. Parentheses are
// treated as non-nested: each '(' pairs with the first ')' after it. An
// unclosed '(' drops everything through the end of the string.
func stripParens(s string) string {
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			return s
		}
		rel := strings.Index(s[open+1:], ")")
		if rel < 0 {
			return s[:open]
		}
		s = s[:open] + s[open+1+rel+1:]
	}
}

// collapseSpaces trims the string and squeezes the double spaces a removed
// parenthetical leaves behind.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateAtComma drops everything from the first comma onward, but only when
// the comma sits at rune index minCommaIndex or later. An early comma is part
// of the address ("대전,서구" style) and is left alone.
func truncateAtComma(s string) string {
	i := strings.Index(s, ",")
	if i < 0 {
		return s
	}
	if utf8.RuneCountInString(s[:i]) < minCommaIndex {
		return s
	}
	return s[:i]
}

func stripInfixes(s string) string {
	for {
		changed := false
		for _, tok := range infixQualifiers {
			if strings.Contains(s, tok) {
				s = strings.ReplaceAll(s, tok, "")
				changed = true
			}
		}
		if !changed {
			return s
		}
	}
}

func stripSuffixes(s string) string {
	for {
		changed := false
		for _, tok := range suffixQualifiers {
			if strings.HasSuffix(s, tok) {
				s = strings.TrimSpace(strings.TrimSuffix(s, tok))
				changed = true
			}
		}
		if !changed {
			return s
		}
	}
}
