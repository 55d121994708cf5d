package ai

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	trailingQty = regexp.MustCompile(`\(\d+\)$`)
	leadingNum  = regexp.MustCompile(`^(\d+)\s+(.+)$`)
)

// maxCount bounds what a leading number may mean as a count; "2024 taxes"
// is a year, not 2024 taxes.
const maxCount = 99

// durationWords after a number make it part of the item, as in
// "5 minute call with Bob".
var durationWords = map[string]bool{
	"second": true, "seconds": true, "minute": true, "minutes": true,
	"hour": true, "hours": true, "day": true, "days": true,
	"week": true, "weeks": true, "month": true, "months": true,
	"year": true, "years": true, "am": true, "pm": true, "a.m.": true, "p.m.": true,
	"o'clock": true, "percent": true, "%": true,
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// NormalizeItems normalizes each item and drops the ones left empty.
// Order is kept and nothing is deduplicated.
func NormalizeItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if n := NormalizeItem(it); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// NormalizeItem rewrites a leading quantity as a trailing "(N)" and
// capitalizes the item: "a dozen eggs" becomes "Eggs (12)" and "6 eggs"
// becomes "Eggs (6)". Items already in that form are only trimmed.
func NormalizeItem(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ".,;")
	if s == "" {
		return ""
	}
	if trailingQty.MatchString(s) {
		return capitalize(s)
	}
	qty, rest, ok := splitQuantity(s)
	if !ok {
		return capitalize(stripArticle(s))
	}
	return capitalize(rest) + " (" + strconv.Itoa(qty) + ")"
}

func splitQuantity(s string) (int, string, bool) {
	if m := leadingNum.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n > maxCount || startsWithDuration(m[2]) {
			return 0, "", false
		}
		n, rest := applyDozen(n, m[2])
		return n, trimOf(rest), rest != ""
	}

	words := strings.Fields(s)
	lower := strings.ToLower(words[0])
	switch {
	case len(words) >= 4 && lower == "half" && isArticle(words[1]) && strings.EqualFold(words[2], "dozen"):
		return 6, trimOf(strings.Join(words[3:], " ")), true
	case len(words) >= 4 && isArticle(lower) && strings.EqualFold(words[1], "couple") && strings.EqualFold(words[2], "of"):
		return 2, strings.Join(words[3:], " "), true
	case len(words) >= 3 && isArticle(lower) && strings.EqualFold(words[1], "dozen"):
		return 12, trimOf(strings.Join(words[2:], " ")), true
	}
	if n, ok := numberWords[lower]; ok && len(words) >= 2 && !durationWords[strings.ToLower(words[1])] {
		n, rest := applyDozen(n, strings.Join(words[1:], " "))
		return n, trimOf(rest), rest != ""
	}
	return 0, "", false
}

func startsWithDuration(s string) bool {
	first, _, _ := strings.Cut(s, " ")
	return durationWords[strings.ToLower(first)]
}

// applyDozen handles "<n> dozen <item>".
func applyDozen(n int, rest string) (int, string) {
	first, tail, ok := strings.Cut(rest, " ")
	if ok && strings.EqualFold(first, "dozen") {
		return n * 12, tail
	}
	return n, rest
}

func trimOf(s string) string {
	if rest, ok := strings.CutPrefix(s, "of "); ok {
		return rest
	}
	return s
}

func isArticle(w string) bool {
	w = strings.ToLower(w)
	return w == "a" || w == "an"
}

func stripArticle(s string) string {
	first, rest, ok := strings.Cut(s, " ")
	if ok && isArticle(first) && rest != "" {
		return rest
	}
	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
