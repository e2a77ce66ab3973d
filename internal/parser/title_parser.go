package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Title           string
	Tags            []string
	Priority        string
	DurationMinutes *int
	DueDate         *time.Time
	Errors          []string
}

var (
	tagRegex      = regexp.MustCompile(`#([a-zA-Z0-9_,-]+)`)
	priorityRegex = regexp.MustCompile(`\+([a-zA-Z0-9]+)`)
	durationRegex = regexp.MustCompile(`dur:(\d+)(m|h)?`)
	dueRegex      = regexp.MustCompile(`due:([^\s]+)`)
)

// ParseTitle extracts metadata from a task title using natural syntax.
// Syntax: "Task title #tag1,tag2 +priority dur:45 due:3days"
func ParseTitle(input string) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Tags:   []string{},
		Errors: []string{},
	}

	// Tags (#tag1,tag2 or #tag1 #tag2)
	for _, match := range tagRegex.FindAllStringSubmatch(input, -1) {
		for _, tag := range strings.Split(match[1], ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				result.Tags = append(result.Tags, tag)
			}
		}
	}
	input = tagRegex.ReplaceAllString(input, "")

	// Priority (+high, +2, +urgent, ...)
	if matches := priorityRegex.FindStringSubmatch(input); len(matches) > 1 {
		priority, ok := NormalizePriority(matches[1])
		if ok {
			result.Priority = priority
		} else {
			result.Errors = append(result.Errors,
				"invalid priority '"+matches[1]+"'. Use: low, medium, high, urgent, or 1-4")
		}
		input = priorityRegex.ReplaceAllString(input, "")
	}

	// Allotted duration (dur:45, dur:90m, dur:2h)
	if matches := durationRegex.FindStringSubmatch(input); len(matches) > 1 {
		amount, err := strconv.Atoi(matches[1])
		if err != nil || amount < 0 {
			result.Errors = append(result.Errors, "invalid duration '"+matches[0]+"'")
		} else {
			if matches[2] == "h" {
				amount *= 60
			}
			result.DurationMinutes = &amount
		}
		input = durationRegex.ReplaceAllString(input, "")
	}

	// Due date (due:3days, due:15/12/2026, due:tomorrow, ...)
	if matches := dueRegex.FindStringSubmatch(input); len(matches) > 1 {
		dueDate, err := ParseDueDate(matches[1])
		if err != nil {
			result.Errors = append(result.Errors, "invalid due date '"+matches[1]+"': "+err.Error())
		} else {
			result.DueDate = dueDate
		}
		input = dueRegex.ReplaceAllString(input, "")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}

// NormalizePriority converts priority aliases to their standard form.
func NormalizePriority(priority string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "1", "low":
		return "low", true
	case "2", "medium", "med":
		return "medium", true
	case "3", "high":
		return "high", true
	case "4", "urgent":
		return "urgent", true
	default:
		return "", false
	}
}
