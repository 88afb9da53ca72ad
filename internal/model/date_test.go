package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		hasError bool
	}{
		{"", "", false},
		{"2026-08-27", "2026-08-27", false},
		{"now", "now", false},
		{"Soon", "soon", false},
		{"SOMEDAY", "someday", false},
		{"  2026-01-02  ", "2026-01-02", false},
		{"tomorrow", "", true},
		{"2026-13-01", "", true},
	}

	for _, tt := range tests {
		d, err := ParseDate(tt.input)
		if tt.hasError {
			assert.Error(t, err, "input: %q", tt.input)
			continue
		}
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, d.String(), "input: %q", tt.input)
	}
}

func TestDate_Ordering(t *testing.T) {
	concrete, err := ParseDate("2026-08-27")
	require.NoError(t, err)
	later, err := ParseDate("2030-01-01")
	require.NoError(t, err)
	someday, err := ParseDate("someday")
	require.NoError(t, err)
	now, err := ParseDate("now")
	require.NoError(t, err)
	unset := Date{}

	assert.True(t, concrete.Before(later))
	assert.True(t, later.Before(someday), "someday sorts after any concrete date")
	assert.True(t, concrete.Before(unset), "set dates sort before unset")
	assert.False(t, unset.Before(concrete))
	assert.True(t, now.Before(someday))
}

func TestDate_Overdue(t *testing.T) {
	past := NewDate(time.Now().AddDate(0, 0, -2))
	future := NewDate(time.Now().AddDate(0, 0, 2))
	someday, err := ParseDate("someday")
	require.NoError(t, err)

	assert.True(t, past.Overdue())
	assert.False(t, future.Overdue())
	assert.False(t, Today().Overdue(), "today is not overdue")
	assert.False(t, someday.Overdue())
	assert.False(t, (Date{}).Overdue())
}

func TestDate_TextRoundTrip(t *testing.T) {
	for _, s := range []string{"", "2026-08-27", "now", "soon", "someday"} {
		d, err := ParseDate(s)
		require.NoError(t, err)

		text, err := d.MarshalText()
		require.NoError(t, err)

		var back Date
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, d.String(), back.String(), "round trip of %q", s)
	}
}

func TestDate_Humanize(t *testing.T) {
	someday, err := ParseDate("someday")
	require.NoError(t, err)

	assert.Equal(t, "someday", someday.Humanize())
	assert.Equal(t, "", (Date{}).Humanize())
	assert.NotEmpty(t, Today().Humanize())
}
