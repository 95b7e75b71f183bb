package eval

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// Report accumulates evaluation counters.
type Report struct {
	Sentences        int
	CorrectSentences int
	Right, Wrong     int
	// Unknown counts tokens missing from the dictionary; WrongUnknown those
	// of them that were mistagged.
	Unknown      int
	WrongUnknown int
	Confusion    *ConfusionMatrix
}

// Tokens is the number of evaluated tokens.
func (r *Report) Tokens() int {
	return r.Right + r.Wrong
}

// Accuracy is the fraction of tokens tagged correctly, zero if there were none.
func (r *Report) Accuracy() float64 {
	return ratio(r.Right, r.Tokens())
}

// UnknownAccuracy is the fraction of unknown tokens tagged correctly.
func (r *Report) UnknownAccuracy() float64 {
	return ratio(r.Unknown-r.WrongUnknown, r.Unknown)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func percent(n, d int) float64 {
	return 100 * ratio(n, d)
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Results on %d sentences and %d words, of which %d were unknown.\n",
		r.Sentences, r.Tokens(), r.Unknown)
	wrongSentences := r.Sentences - r.CorrectSentences
	fmt.Fprintf(&sb, "Total sentences right: %d (%f%%); wrong: %d (%f%%).\n",
		r.CorrectSentences, percent(r.CorrectSentences, r.Sentences),
		wrongSentences, percent(wrongSentences, r.Sentences))
	fmt.Fprintf(&sb, "Total tags right: %d (%f%%); wrong: %d (%f%%).\n",
		r.Right, percent(r.Right, r.Tokens()), r.Wrong, percent(r.Wrong, r.Tokens()))
	if r.Unknown > 0 {
		fmt.Fprintf(&sb, "Unknown words right: %d (%f%%); wrong: %d (%f%%).\n",
			r.Unknown-r.WrongUnknown, percent(r.Unknown-r.WrongUnknown, r.Unknown),
			r.WrongUnknown, percent(r.WrongUnknown, r.Unknown))
	}
	return sb.String()
}

// Table renders the summary counts as a table.
func (r *Report) Table() string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow || col == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("", "right", "wrong", "accuracy")
	line := func(name string, right, wrong int) {
		table.Row(name, humanize.Comma(int64(right)), humanize.Comma(int64(wrong)),
			fmt.Sprintf("%.2f%%", percent(right, right+wrong)))
	}
	line("sentences", r.CorrectSentences, r.Sentences-r.CorrectSentences)
	line("tags", r.Right, r.Wrong)
	if r.Unknown > 0 {
		line("unknown words", r.Unknown-r.WrongUnknown, r.WrongUnknown)
	}
	return table.String()
}
