package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unix(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func TestParseDOB(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{name: "zero padded", input: "05/03/1990", expected: unix(1990, time.March, 5)},
		{name: "unpadded", input: "5/3/1990", expected: unix(1990, time.March, 5)},
		{name: "surrounding spaces", input: " 31/12/1999 ", expected: unix(1999, time.December, 31)},
		{name: "leap day", input: "29/02/2000", expected: unix(2000, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDOB(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDOBRejectsOtherFormats(t *testing.T) {
	for _, input := range []string{"", "1990-03-05", "03/05/90", "32/01/1990", "12/13/1990", "abc"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDOB(input)
			assert.Error(t, err)
		})
	}
}

func TestAgeBounds(t *testing.T) {
	now := time.Date(2024, time.January, 1, 15, 30, 0, 0, time.UTC)

	minDoB, maxDoB := AgeBounds(now, 24)
	assert.Equal(t, unix(1999, time.January, 1), minDoB)
	assert.Equal(t, unix(2000, time.January, 1), maxDoB)
}

func TestTodayIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, time.June, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), Today(now))
}

func TestYearsAgoLeapDay(t *testing.T) {
	now := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, unix(2023, time.February, 28), YearsAgo(now, 1), "clamped, never rolled into March")
	assert.Equal(t, unix(2020, time.February, 29), YearsAgo(now, 4))
}

func TestAgeBoundsOnLeapDay(t *testing.T) {
	now := time.Date(2024, time.February, 29, 9, 30, 0, 0, time.UTC)
	contains := func(minDoB, maxDoB, birth int64) bool { return birth > minDoB && birth <= maxDoB }

	min24, max24 := AgeBounds(now, 24)
	assert.Equal(t, unix(1999, time.February, 28), min24)
	assert.Equal(t, unix(2000, time.February, 29), max24)

	min25, max25 := AgeBounds(now, 25)

	// Born 1999-03-01: turns 25 tomorrow.
	assert.True(t, contains(min24, max24, unix(1999, time.March, 1)))
	assert.False(t, contains(min25, max25, unix(1999, time.March, 1)))

	// Born 1999-02-28: turned 25 yesterday.
	assert.False(t, contains(min24, max24, unix(1999, time.February, 28)))
	assert.True(t, contains(min25, max25, unix(1999, time.February, 28)))

	// Born 2000-02-29: turns 24 today.
	assert.True(t, contains(min24, max24, unix(2000, time.February, 29)))
}
