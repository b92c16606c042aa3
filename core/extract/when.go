package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
	clockRe   = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\s*(?:a\.?m\.?|p\.?m\.?)|\b\d{1,2}:\d{2}\b|\b(?:noon|midnight|morning|afternoon|evening|tonight)\b`)
)

// DateParser resolves free-form date phrases ("Aug 30 9am", "monday",
// "2025-08-30 14:00") relative to a reference clock in a fixed location.
type DateParser struct {
	loc   *time.Location
	clock func() time.Time
	w     *when.Parser
}

// NewDateParser builds a parser for loc. A nil clock uses time.Now.
func NewDateParser(loc *time.Location, clock func() time.Time) *DateParser {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &DateParser{loc: loc, clock: clock, w: w}
}

func (d *DateParser) now() time.Time { return d.clock().In(d.loc) }

// Parse returns the date as YYYY-MM-DD and, when the phrase names a time of
// day, the time as HH:MM. ok is false when no date can be found.
func (d *DateParser) Parse(phrase string) (date, clock string, ok bool) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return "", "", false
	}
	t, found := d.resolve(phrase)
	if !found {
		return "", "", false
	}
	t = t.In(d.loc)
	date = t.Format("2006-01-02")
	if clockRe.MatchString(strings.ToLower(phrase)) {
		clock = t.Format("15:04")
	}
	return date, clock, true
}

func (d *DateParser) resolve(phrase string) (time.Time, bool) {
	if isoDateRe.MatchString(phrase) {
		if t, err := dateparse.ParseIn(phrase, d.loc); err == nil {
			return t, true
		}
	}
	if r, err := d.w.Parse(phrase, d.now()); err == nil && r != nil {
		return r.Time, true
	}
	t, err := dateparse.ParseIn(phrase, d.loc)
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}
