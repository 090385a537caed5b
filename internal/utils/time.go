package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// ParseTime parses a natural language date/time. Times without an explicit
// zone are read in loc, and relative phrases are anchored at now.
func ParseTime(dateString string, loc *time.Location, now time.Time) (time.Time, error) {
	dateString = strings.TrimSpace(dateString)
	if dateString == "" {
		return time.Time{}, fmt.Errorf("empty date/time")
	}
	if loc == nil {
		loc = time.UTC
	}

	dt, err := dateparser.Parse(&dateparser.Configuration{
		DefaultTimezone: loc,
		CurrentTime:     now.In(loc),
	}, dateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date/time format: %w", err)
	}

	return dt.Time, nil
}

var unixTimestampPattern = regexp.MustCompile(`^(?:<t:(-?\d+)(?::[tTdDfFR])?>|(-?\d{9,12}))$`)

// ParseUnixTimestamp reads a bare unix timestamp in seconds or Discord
// timestamp markup such as <t:1700000000:R>. ok is false for anything else.
func ParseUnixTimestamp(s string) (t time.Time, ok bool) {
	m := unixTimestampPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	secs, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// HumanFriendlyTimestamp renders t like "Monday, 4 March 2024 at 09:30"
func HumanFriendlyTimestamp(t time.Time) string {
	return t.Format("Monday, 2 January 2006 at 15:04")
}

// UTCOffset renders the zone offset of t as "UTC+05:30"
func UTCOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, offset%3600/60)
}

// DiscordTimestamp renders t in one of Discord's <t:...> styles
func DiscordTimestamp(t time.Time, style string) string {
	if style == "" {
		return fmt.Sprintf("<t:%d>", t.Unix())
	}
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
