package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ZWSP is a zero width space, for embed fields that must not be empty
const ZWSP = "\u200b"

// Codeblock wraps text in a fenced code block
func Codeblock(text, language string) string {
	return "```" + language + "\n" + text + "\n```"
}

// YesNo renders a bool for embeds
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// SummariseList renders up to maxItems of items with format and notes how
// many were left out. skipFirst drops the first item, e.g. @everyone.
func SummariseList[T any](items []T, format func(T) string, maxItems int, skipFirst bool) string {
	if skipFirst && len(items) > 0 {
		items = items[1:]
	}
	if len(items) == 0 {
		return "None"
	}

	shown := items
	if len(shown) > maxItems {
		shown = shown[:maxItems]
	}

	parts := make([]string, 0, len(shown))
	for _, item := range shown {
		parts = append(parts, format(item))
	}

	out := strings.Join(parts, ", ")
	if rest := len(items) - len(shown); rest > 0 {
		out += fmt.Sprintf(" and %d more...", rest)
	}
	return out
}

// AsColumns lays items out row by row in the given number of left-aligned
// columns.
func AsColumns(items []string, columns int) string {
	if columns < 1 {
		columns = 1
	}

	widths := make([]int, columns)
	for i, item := range items {
		col := i % columns
		widths[col] = max(widths[col], utf8.RuneCountInString(item))
	}

	var b strings.Builder
	for start := 0; start < len(items); start += columns {
		end := min(start+columns, len(items))

		var row strings.Builder
		for i, item := range items[start:end] {
			row.WriteString(item)
			row.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(item)+1))
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
		b.WriteString("\n")
	}
	return b.String()
}
