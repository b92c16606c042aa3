package extract

import (
	"sort"
	"strconv"
	"strings"
)

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// numberWordPattern is a regexp alternation of the number words, longest
// first.
func numberWordPattern() string {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return strings.Join(words, "|")
}

// parseQuantity reads a digit string, a number word, or two number words
// whose values are summed ("twenty two", "twenty-two").
func parseQuantity(tok string) (float64, bool) {
	t := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tok)), "-", " ")
	if t == "" {
		return 0, false
	}
	if isDecimal(t) {
		v, err := strconv.ParseFloat(t, 64)
		return v, err == nil
	}
	parts := strings.Fields(t)
	switch len(parts) {
	case 1:
		if n, ok := numberWords[parts[0]]; ok {
			return float64(n), true
		}
	case 2:
		a, okA := numberWords[parts[0]]
		b, okB := numberWords[parts[1]]
		if okA && okB {
			return float64(a + b), true
		}
	}
	return 0, false
}

func isDecimal(s string) bool {
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot && i > 0 && i < len(s)-1:
			dot = true
		default:
			return false
		}
	}
	return true
}
