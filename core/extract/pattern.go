package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/kilianp07/wheelsched/core/command"
)

const (
	orderToken = `(?:order\s+)?(o\d{3})`
	unitToken  = `(days|day|d|hours|hour|h)\b`
)

// quantityToken only admits digits or number words so that filler such as
// "for" or "the next" is never taken for part of the quantity.
var quantityToken = `\b(\d+(?:\.\d+)?|(?:` + numberWordPattern() + `)(?:[\s-]+(?:` + numberWordPattern() + `))?)`

var (
	swapRe       = regexp.MustCompile(`(?:^|\b)(swap|switch)\s+` + orderToken + `\s*(?:with|and|&)?\s*` + orderToken + `\b`)
	delayByRe    = regexp.MustCompile(`(delay|push|postpone)\s+` + orderToken + `.*?\bby\b\s+` + quantityToken + `\s*` + unitToken)
	delayLooseRe = regexp.MustCompile(`(delay|push|postpone)\s+` + orderToken + `.*?\b` + quantityToken + `\s*` + unitToken)
	moveRe       = regexp.MustCompile(`(move|set|schedule)\s+` + orderToken + `\s+(to|on)\s+(.+)`)
	oneDayRe     = regexp.MustCompile(`(delay|push|postpone)\s+` + orderToken + `.*\b(one)\s+day\b`)
)

// PatternExtractor recognises swap, delay and move phrasings. It is
// deterministic apart from the reference clock used for relative dates.
type PatternExtractor struct {
	dates *DateParser
}

// NewPatternExtractor returns a pattern strategy resolving dates with dates.
func NewPatternExtractor(dates *DateParser) *PatternExtractor {
	return &PatternExtractor{dates: dates}
}

// Extract implements Strategy. It never returns an error.
func (p *PatternExtractor) Extract(_ context.Context, text string) (command.Payload, error) {
	return p.Parse(text), nil
}

// Parse maps text to a payload, or to an unknown payload carrying text.
func (p *PatternExtractor) Parse(text string) command.Payload {
	low := strings.ToLower(strings.TrimSpace(text))

	if m := swapRe.FindStringSubmatch(low); m != nil {
		return command.Payload{
			Intent:   command.IntentSwap,
			OrderID:  strings.ToUpper(m[2]),
			OrderID2: strings.ToUpper(m[3]),
		}
	}
	for _, re := range []*regexp.Regexp{delayByRe, delayLooseRe} {
		m := re.FindStringSubmatch(low)
		if m == nil {
			continue
		}
		n, ok := parseQuantity(m[3])
		if !ok {
			continue
		}
		out := command.Payload{Intent: command.IntentDelay, OrderID: strings.ToUpper(m[2])}
		if strings.HasPrefix(m[4], "d") {
			out.Days = command.Num(n)
		} else {
			out.Hours = command.Num(n)
		}
		return out
	}
	if m := moveRe.FindStringSubmatch(low); m != nil && p.dates != nil {
		if date, clock, ok := p.dates.Parse(m[4]); ok {
			return command.Payload{
				Intent:  command.IntentMove,
				OrderID: strings.ToUpper(m[2]),
				Date:    date,
				Time:    clock,
			}
		}
	}
	if m := oneDayRe.FindStringSubmatch(low); m != nil {
		return command.Payload{Intent: command.IntentDelay, OrderID: strings.ToUpper(m[2]), Days: command.Num(1)}
	}
	return command.UnknownPayload(text)
}
