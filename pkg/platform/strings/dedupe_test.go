package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		fold     bool
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims and drops blanks", input: []string{"  log ", "", "  ", "redis"}, expected: []string{"log", "redis"}},
		{name: "first occurrence wins", input: []string{"b", "a", "b", "c", "a"}, expected: []string{"b", "a", "c"}},
		{name: "case preserved without fold", input: []string{"Kafka", "kafka"}, expected: []string{"Kafka", "kafka"}},
		{name: "fold collapses case", input: []string{"Kafka", " kafka", "LOG"}, fold: true, expected: []string{"kafka", "log"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanList(tt.input, tt.fold))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("  ", false))
	assert.Equal(t, []string{"localhost:9092", "broker:9092"}, SplitList("localhost:9092, broker:9092,localhost:9092", false))
	assert.Equal(t, []string{"log", "redis"}, SplitList("LOG,redis,", true))
}
