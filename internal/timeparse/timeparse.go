package timeparse

import (
	"regexp"
	"strings"
	"time"
)

// Fixed hours for time-of-day suffixes
const (
	hourMorning   = 9
	hourAfternoon = 15
	hourEvening   = 19
	hourNight     = 21
	hourUnset     = -1 // midnight of the target day
)

// phrases is the exact-phrase table for common relative terms, matched
// case-insensitively after trimming and checked before any other pattern.
var phrases = []struct {
	text string
	days int
	hour int
}{
	{"today", 0, hourUnset},
	{"yesterday", -1, hourUnset},
	{"tomorrow", 1, hourUnset},
	{"day before yesterday", -2, hourUnset},
	{"day after tomorrow", 2, hourUnset},
	{"last night", -1, hourNight},
	{"tonight", 0, hourNight},
	{"this morning", 0, hourMorning},
	{"this afternoon", 0, hourAfternoon},
	{"this evening", 0, hourEvening},
	{"last week", -7, hourUnset},
	{"next week", 7, hourUnset},
	{"last month", -30, hourUnset},
	{"next month", 30, hourUnset},
}

var weekdayPattern = regexp.MustCompile(
	`^(last )?(sunday|monday|tuesday|wednesday|thursday|friday|saturday)( (morning|afternoon|evening|night))?$`)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var suffixHours = map[string]int{
	"morning":   hourMorning,
	"afternoon": hourAfternoon,
	"evening":   hourEvening,
	"night":     hourNight,
}

// absoluteLayouts are tried in order as the last-resort direct parse
var absoluteLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Resolve converts a natural-language relative expression plus an anchor
// date into an absolute timestamp in the anchor's location. Resolution
// tries the exact-phrase table, then the weekday pattern, then a direct
// parse of the expression as an absolute date; nil means the expression
// could not be interpreted and the original text should be kept for
// display. Without a time-of-day suffix the result lands on midnight of the
// target day (a documented, consistent choice).
func Resolve(expression string, anchor time.Time) *time.Time {
	expr := strings.ToLower(strings.TrimSpace(expression))
	if expr == "" {
		return nil
	}

	for _, p := range phrases {
		if expr == p.text {
			return ref(dayWithHour(anchor, p.days, p.hour))
		}
	}

	if m := weekdayPattern.FindStringSubmatch(expr); m != nil {
		return ref(resolveWeekday(anchor, m[1] != "", weekdays[m[2]], m[4]))
	}

	for _, layout := range absoluteLayouts {
		if ts, err := time.ParseInLocation(layout, strings.TrimSpace(expression), anchor.Location()); err == nil {
			return &ts
		}
	}
	return nil
}

// resolveWeekday applies the day-of-week offset policy. A bare weekday
// resolves to the next occurrence including the anchor day itself. With a
// leading "last" the naive same-week offset always moves back a full week,
// so "last Tuesday" on a Wednesday means eight days prior, not the
// immediately preceding day.
func resolveWeekday(anchor time.Time, last bool, target time.Weekday, suffix string) time.Time {
	offset := int(target) - int(anchor.Weekday())
	if last {
		offset -= 7
	} else if offset < 0 {
		offset += 7
	}

	hour := hourUnset
	if h, ok := suffixHours[suffix]; ok {
		hour = h
	}
	return dayWithHour(anchor, offset, hour)
}

// dayWithHour lands on the anchor day plus an offset, at the given hour
func dayWithHour(anchor time.Time, days, hour int) time.Time {
	if hour == hourUnset {
		hour = 0
	}
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day()+days, hour, 0, 0, 0, anchor.Location())
}

func ref(t time.Time) *time.Time {
	return &t
}
