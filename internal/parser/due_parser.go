package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseDueDate parses due date inputs.
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2026")
// - today, tomorrow
// - X days, X weeks (e.g., "3 days", "2 weeks", also "3days")
func ParseDueDate(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}

	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "today":
		d := endOfDay(time.Now())
		return &d, nil
	case "tomorrow":
		d := endOfDay(time.Now().AddDate(0, 0, 1))
		return &d, nil
	}

	if dueDate, err := parseDateFormat(input); err == nil {
		return dueDate, nil
	}
	if dueDate, err := parseRelative(input); err == nil {
		return dueDate, nil
	}

	return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, today, tomorrow, X days, or X weeks")
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

var dateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// parseDateFormat parses dd/mm/yyyy
func parseDateFormat(input string) (*time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	dueDate := time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local)

	// Reject normalized dates like 31/02 (handles leap years too)
	if dueDate.Day() != day || dueDate.Month() != time.Month(month) || dueDate.Year() != year {
		return nil, fmt.Errorf("invalid date")
	}

	return &dueDate, nil
}

var relativeRegex = regexp.MustCompile(`^(\d+)\s*(day|days|week|weeks)$`)

// parseRelative parses "3 days", "2 weeks" and the compact "3days"
func parseRelative(input string) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative date")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil || amount < 1 {
		return nil, fmt.Errorf("invalid number")
	}

	days := amount
	if strings.HasPrefix(matches[2], "week") {
		days = amount * 7
	}
	if days > 366 {
		return nil, fmt.Errorf("due date must be within a year")
	}

	d := endOfDay(time.Now().AddDate(0, 0, days))
	return &d, nil
}

// FormatDueDate formats a due date for display relative to today.
func FormatDueDate(dueDate *time.Time) string {
	if dueDate == nil {
		return ""
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, dueDate.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	dateStr := dueDate.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("due %s", dateStr)
	}
}
