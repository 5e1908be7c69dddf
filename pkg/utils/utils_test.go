package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -2.5, Round2(-2.5))
}

func TestTrailingDates(t *testing.T) {
	end := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, TrailingDates(end, 4))
	assert.Nil(t, TrailingDates(end, 0))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitCSV(" a, b,,c ,"))
	assert.Empty(t, SplitCSV(""))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", "b", "a"}))
}
