package eval

import (
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

type cell struct{ guess, gold string }

// ConfusionMatrix counts (guess, gold) tag pairs.
type ConfusionMatrix struct {
	counts map[cell]int
	labels map[string]bool
}

// NewConfusionMatrix returns an empty matrix.
func NewConfusionMatrix() *ConfusionMatrix {
	return &ConfusionMatrix{counts: make(map[cell]int), labels: make(map[string]bool)}
}

// Add counts one token tagged guess whose gold tag is gold.
func (cm *ConfusionMatrix) Add(guess, gold string) {
	cm.counts[cell{guess, gold}]++
	cm.labels[guess] = true
	cm.labels[gold] = true
}

// Count returns how many tokens with gold tag gold were tagged guess.
func (cm *ConfusionMatrix) Count(guess, gold string) int {
	return cm.counts[cell{guess, gold}]
}

// Labels returns every tag seen as guess or gold, sorted.
func (cm *ConfusionMatrix) Labels() []string {
	return slices.Sorted(maps.Keys(cm.labels))
}

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	headerStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true)
)

// Render draws the matrix with one row per guessed tag and one column per
// gold tag. Zero cells are left blank.
func (cm *ConfusionMatrix) Render() string {
	labels := cm.Labels()
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow || col == 0 {
				return headerStyle
			}
			return cellStyle
		})
	table.Headers(append([]string{"guess\\gold"}, labels...)...)
	for _, guess := range labels {
		row := make([]string, 1+len(labels))
		row[0] = guess
		for j, gold := range labels {
			if n := cm.Count(guess, gold); n > 0 {
				row[j+1] = strconv.Itoa(n)
			}
		}
		table.Row(row...)
	}
	return table.String()
}
