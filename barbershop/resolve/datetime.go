// Package resolve turns free-form user input into concrete domain values:
// natural-language date/time text into instants, and barber references into
// barber records.
package resolve

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
	casualParser = newCasualParser()

	bareClockRe = regexp.MustCompile(`\b(\d{1,2})(am|pm)\b`)
	spacesRe    = regexp.MustCompile(`\s+`)

	monthCase = strings.NewReplacer(
		"january", "January", "february", "February", "march", "March",
		"april", "April", "may", "May", "june", "June", "july", "July",
		"august", "August", "september", "September", "october", "October",
		"november", "November", "december", "December",
		"jan ", "Jan ", "feb ", "Feb ", "mar ", "Mar ", "apr ", "Apr ",
		"jun ", "Jun ", "jul ", "Jul ", "aug ", "Aug ", "sep ", "Sep ",
		"oct ", "Oct ", "nov ", "Nov ", "dec ", "Dec ",
	)

	// Explicit layouts tried after normalization. Month names are
	// title-cased and bare "6pm" has been rewritten to "6:00pm" by then.
	explicitLayouts = []string{
		"2 Jan 2006 3:04pm",
		"2 Jan 2006 15:04",
		"2 Jan 2006",
		"Jan 2 2006 3:04pm",
		"Jan 2 2006 15:04",
		"Jan 2 2006",
		"2 January 2006 3:04pm",
		"2 January 2006 15:04",
		"2 January 2006",
		"January 2 2006 3:04pm",
		"January 2 2006 15:04",
		"January 2 2006",
		"2006-01-02 3:04pm",
		"2006-01-02 15:04",
		"2006-01-02",
		"3:04pm",
		"15:04",
	}
)

func newCasualParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseNatural fuzzy-parses date/time text ("3 dec 2025 6pm", "tomorrow at
// 3pm", "2025-12-05") into an absolute instant anchored to now's location.
//
// When the result lands on today's date but is already in the past, it is
// rolled forward exactly one day: bare "3pm" after 3 o'clock means tomorrow.
// Past instants on other dates are returned unchanged; the availability
// layer owns rejecting them. The second return value is false when the text
// is unparseable.
func ParseNatural(text string, now time.Time) (time.Time, bool) {
	cleaned := normalizeDateText(text)
	if cleaned == "" {
		return time.Time{}, false
	}
	loc := now.Location()

	for _, layout := range explicitLayouts {
		t, err := time.ParseInLocation(layout, cleaned, loc)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			// Time-only layout: anchor to today's date.
			t = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		}
		return rollForward(t, now), true
	}

	if t, err := dateparse.ParseIn(cleaned, loc); err == nil {
		return rollForward(t, now), true
	}

	if r, err := casualParser.Parse(text, now); err == nil && r != nil {
		return rollForward(r.Time, now), true
	}

	return time.Time{}, false
}

func normalizeDateText(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, " at ", " ")
	s = bareClockRe.ReplaceAllString(s, "$1:00$2")
	s = spacesRe.ReplaceAllString(s, " ")
	// Trailing space lets the abbreviated-month replacements match at the
	// end of the string.
	s = monthCase.Replace(strings.TrimSpace(s) + " ")
	return strings.TrimSpace(s)
}

func rollForward(t, now time.Time) time.Time {
	if t.Before(now) && sameDate(t, now) {
		return t.AddDate(0, 0, 1)
	}
	return t
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatFriendly renders an instant the way the assistant speaks about it.
func FormatFriendly(t time.Time) string {
	return t.Format("January 02, 2006 at 03:04 PM")
}
