package sequence

import (
	"github.com/pkg/errors"
)

// ScoreOf returns the total score of a full padded assignment: the sum, over
// the real positions, of the entry ScoresOf reports for the assigned tag.
func ScoreOf(m Model, seq []int) (float64, error) {
	left, right := m.LeftWindow(), m.RightWindow()
	if want := m.Length() + left + right; len(seq) != want {
		return 0, errors.Errorf("assignment has %d tags, want %d", len(seq), want)
	}

	buf := make([]int, len(seq))
	copy(buf, seq)

	total := 0.0
	for pos := left; pos < left+m.Length(); pos++ {
		values := m.PossibleValues(pos)
		scores := m.ScoresOf(buf, pos)
		if len(scores) != len(values) {
			return 0, errors.Wrapf(ErrScoreLength, "padded position %d", pos)
		}
		found := false
		for i, v := range values {
			if v == seq[pos] {
				total += scores[i]
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Errorf("tag %d is not a candidate at padded position %d", seq[pos], pos)
		}
		// ScoresOf may have scribbled on the placeholder.
		buf[pos] = seq[pos]
	}
	return total, nil
}
