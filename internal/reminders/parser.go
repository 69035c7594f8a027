package reminders

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoTimeExpression means the phrase carried no recognizable time.
var ErrNoTimeExpression = errors.New("no time expression found")

// Parsed is the outcome of reading a time expression out of a phrase.
type Parsed struct {
	// Text is the phrase with the time expression and the command marker
	// removed. Never empty: if stripping removes everything, the original
	// phrase is kept as is.
	Text  string
	DueAt time.Time
}

var (
	commandMarker = regexp.MustCompile(`(?i)^напомни(?:ть)?(?:\s+мне)?\s*`)

	// \w is ASCII-only in RE2, so declension endings need an explicit
	// Cyrillic class or they stay behind in the reminder text.
	relMinutes = regexp.MustCompile(`через\s+(\d+)\s+минут[а-яё]*`)
	relHours   = regexp.MustCompile(`через\s+(\d+)\s+час[а-яё]*`)
	atClock    = regexp.MustCompile(`в\s+(\d{1,2}):(\d{2})`)
	tomorrowAt = regexp.MustCompile(`завтра\s+в\s+(\d{1,2}):(\d{2})`)

	spaces = regexp.MustCompile(`\s+`)
)

// ParseTime reads a Russian time expression out of raw. Rules are tried in a
// fixed order and the first match wins:
//
//  1. "через N минут"  -> now + N minutes
//  2. "через N часов"  -> now + N hours
//  3. "в HH:MM"        -> today at HH:MM, rolled to tomorrow if already past
//  4. "завтра в HH:MM" -> tomorrow at HH:MM
//
// Rule 3 skips a clock time directly preceded by "завтра" so rule 4 can
// claim the full span; otherwise "завтра" would leak into the stored text.
func ParseTime(raw string, now time.Time) (Parsed, error) {
	lowered := strings.ToLower(raw)

	if loc := relMinutes.FindStringSubmatchIndex(lowered); loc != nil {
		n, _ := strconv.Atoi(lowered[loc[2]:loc[3]])
		return finish(raw, loc[0], loc[1], now.Add(time.Duration(n)*time.Minute)), nil
	}
	if loc := relHours.FindStringSubmatchIndex(lowered); loc != nil {
		n, _ := strconv.Atoi(lowered[loc[2]:loc[3]])
		return finish(raw, loc[0], loc[1], now.Add(time.Duration(n)*time.Hour)), nil
	}
	if loc := atClock.FindStringSubmatchIndex(lowered); loc != nil && !precededByTomorrow(lowered, loc[0]) {
		hour, _ := strconv.Atoi(lowered[loc[2]:loc[3]])
		minute, _ := strconv.Atoi(lowered[loc[4]:loc[5]])
		if validClock(hour, minute) {
			due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if !due.After(now) {
				due = due.AddDate(0, 0, 1)
			}
			return finish(raw, loc[0], loc[1], due), nil
		}
	}
	if loc := tomorrowAt.FindStringSubmatchIndex(lowered); loc != nil {
		hour, _ := strconv.Atoi(lowered[loc[2]:loc[3]])
		minute, _ := strconv.Atoi(lowered[loc[4]:loc[5]])
		if validClock(hour, minute) {
			due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()).AddDate(0, 0, 1)
			return finish(raw, loc[0], loc[1], due), nil
		}
	}

	return Parsed{}, ErrNoTimeExpression
}

func validClock(hour, minute int) bool {
	return hour < 24 && minute < 60
}

// precededByTomorrow reports whether the text right before offset ends with
// the word "завтра".
func precededByTomorrow(lowered string, offset int) bool {
	return strings.HasSuffix(strings.TrimRight(lowered[:offset], " \t"), "завтра")
}

// finish strips the matched span and the leading command marker, producing
// the stored reminder text. raw and its lowered form index identically
// because lowering Cyrillic and ASCII never changes byte length here; the
// span offsets come from the lowered string but are applied to raw.
func finish(raw string, start, end int, due time.Time) Parsed {
	text := raw[:start] + " " + raw[end:]
	text = commandMarker.ReplaceAllString(strings.TrimSpace(text), "")
	text = strings.TrimSpace(spaces.ReplaceAllString(text, " "))
	if text == "" {
		text = strings.TrimSpace(raw)
	}
	return Parsed{Text: text, DueAt: due}
}
