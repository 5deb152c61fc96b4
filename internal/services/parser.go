package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Days between the spreadsheet date epoch (1899-12-30) and the Unix epoch.
// A numeric cell holding a date serial converts through this offset.
const serialEpochOffsetDays = 25569

const secondsPerDay = 86400

// koreanDatePattern matches "YYYY년 M월 D일" with optional spacing.
var koreanDatePattern = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)

// dateLayouts covers the string date shapes seen across bank, card and POS
// exports, including the formats excelize renders styled date cells into.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"2006. 1. 2.",
	"2006. 1. 2",
	"20060102",
	"01-02-06",
	"1-2-06",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"02-Jan-2006",
}

// salesAmountJunk strips everything that is not part of a signed number:
// currency symbols, thousands separators, unit suffixes, stray whitespace.
var salesAmountJunk = regexp.MustCompile(`[^0-9.\-]`)

// ParseDate parses one spreadsheet cell into a calendar day. It accepts a
// numeric date serial, "YYYY년 M월 D일", and the usual string layouts. On
// success the time component is pinned to noon UTC so a later timezone
// conversion cannot move the value across a day boundary. Rows whose date
// cell fails to parse are skipped by the caller, not treated as fatal.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	if m := koreanDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
		if t.Year() == year && int(t.Month()) == month && t.Day() == day {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("invalid korean date: %s", s)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pinNoon(t), nil
		}
	}

	// Anything purely numeric that survived the layout pass is a serial.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64((serial - serialEpochOffsetDays) * secondsPerDay)
		return pinNoon(time.Unix(sec, 0).UTC()), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

// pinNoon keeps the calendar day of t and fixes the clock at 12:00 UTC.
func pinNoon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

// ParseSalesAmount parses a sales amount cell, tolerating currency symbols,
// separators and full-width noise. Unparseable input yields 0, which makes
// the row fall out downstream under the amount-is-zero rule.
func ParseSalesAmount(raw string) int64 {
	cleaned := salesAmountJunk.ReplaceAllString(ToHalfWidth(raw), "")
	return parseAmount(cleaned)
}

// ParsePurchaseAmount parses a purchase amount cell. Purchase exports carry
// plain numbers, so only thousands separators are stripped.
func ParsePurchaseAmount(raw string) int64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	return parseAmount(cleaned)
}

func parseAmount(cleaned string) int64 {
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
