package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle(t *testing.T) {
	parsed := ParseTitle("Write report #work,deep +high dur:90m due:tomorrow")

	assert.Equal(t, "Write report", parsed.Title)
	assert.Equal(t, []string{"work", "deep"}, parsed.Tags)
	assert.Equal(t, "high", parsed.Priority)
	require.NotNil(t, parsed.DurationMinutes)
	assert.Equal(t, 90, *parsed.DurationMinutes)
	require.NotNil(t, parsed.DueDate)
	assert.Empty(t, parsed.Errors)
}

func TestParseTitleHourDuration(t *testing.T) {
	parsed := ParseTitle("Deep work dur:2h")
	require.NotNil(t, parsed.DurationMinutes)
	assert.Equal(t, 120, *parsed.DurationMinutes)
}

func TestParseTitlePlain(t *testing.T) {
	parsed := ParseTitle("Just a title")
	assert.Equal(t, "Just a title", parsed.Title)
	assert.Empty(t, parsed.Tags)
	assert.Nil(t, parsed.DurationMinutes)
	assert.Nil(t, parsed.DueDate)
}

func TestParseTitleInvalidPriority(t *testing.T) {
	parsed := ParseTitle("Oops +critical")
	assert.Empty(t, parsed.Priority)
	require.Len(t, parsed.Errors, 1)
	assert.Contains(t, parsed.Errors[0], "invalid priority")
}

func TestNormalizePriority(t *testing.T) {
	for input, want := range map[string]string{
		"1": "low", "low": "low",
		"2": "medium", "MED": "medium",
		"3": "high", "High": "high",
		"4": "urgent", "urgent": "urgent",
	} {
		got, ok := NormalizePriority(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
	_, ok := NormalizePriority("critical")
	assert.False(t, ok)
}

func TestParseDueDateAbsolute(t *testing.T) {
	due, err := ParseDueDate("15/12/2026")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 15, 23, 59, 59, 0, time.Local), *due)

	_, err = ParseDueDate("31/02/2026")
	assert.Error(t, err, "normalized dates are rejected")
}

func TestParseDueDateRelative(t *testing.T) {
	due, err := ParseDueDate("3 days")
	require.NoError(t, err)
	wantDay := time.Now().AddDate(0, 0, 3)
	assert.Equal(t, wantDay.Day(), due.Day())

	compact, err := ParseDueDate("3days")
	require.NoError(t, err)
	assert.Equal(t, due.Day(), compact.Day())

	weeks, err := ParseDueDate("2 weeks")
	require.NoError(t, err)
	assert.Equal(t, time.Now().AddDate(0, 0, 14).Day(), weeks.Day())
}

func TestParseDueDateKeywords(t *testing.T) {
	today, err := ParseDueDate("today")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Day(), today.Day())

	empty, err := ParseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseDueDate("whenever")
	assert.Error(t, err)
}
