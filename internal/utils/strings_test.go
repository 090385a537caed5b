package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummariseList(t *testing.T) {
	itoa := func(n int) string { return strconv.Itoa(n) }

	assert.Equal(t, "None", SummariseList([]int{}, itoa, 3, false))
	assert.Equal(t, "None", SummariseList([]int{1}, itoa, 3, true))
	assert.Equal(t, "1, 2", SummariseList([]int{1, 2}, itoa, 3, false))
	assert.Equal(t, "2, 3, 4 and 2 more...", SummariseList([]int{1, 2, 3, 4, 5, 6}, itoa, 3, true))
}

func TestAsColumns(t *testing.T) {
	got := AsColumns([]string{"Animated Icon", "Banner", "Community", "News", "Vanity Url"}, 2)
	want := "Animated Icon Banner\n" +
		"Community     News\n" +
		"Vanity Url\n"
	assert.Equal(t, want, got)
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "Yes", YesNo(true))
	assert.Equal(t, "No", YesNo(false))
}
