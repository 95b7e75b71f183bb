package tagger

import (
	"github.com/pkg/errors"

	"github.com/teatak/postag/maxent"
	"github.com/teatak/postag/tagset"
)

// sentenceModel adapts one sentence to sequence.Model. It lives for a single
// TagSentence call and is not shared between goroutines.
type sentenceModel struct {
	t           *Tagger
	left, right int

	words      []string // normalized, with tagset.EOSWord appended
	rare       []bool
	candidates [][]int // per sentence index
	local      [][]float64

	history maxent.History
}

func (t *Tagger) newSentenceModel(words, pinned []string) (*sentenceModel, error) {
	n := len(words) + 1
	m := &sentenceModel{
		t:          t,
		left:       t.Model.LeftWindow(),
		right:      t.Model.RightWindow(),
		words:      make([]string, n),
		rare:       make([]bool, n),
		candidates: make([][]int, n),
		local:      make([][]float64, n),
	}
	for i, w := range words {
		w = t.normalize(w)
		m.words[i] = w
		m.rare[i] = t.isRare(w)
		if pinned != nil && pinned[i] != "" {
			id := t.Tags.Index(pinned[i])
			if id < 0 {
				return nil, errors.Errorf("word %d (%q): unknown tag %q", i, words[i], pinned[i])
			}
			m.candidates[i] = []int{id}
			continue
		}
		m.candidates[i] = t.candidates(w)
	}
	m.words[n-1] = tagset.EOSWord
	m.rare[n-1] = t.isRare(tagset.EOSWord)
	m.candidates[n-1] = []int{t.eos}

	m.history = maxent.History{Words: m.words, Tags: make([]string, n)}
	return m, nil
}

func (m *sentenceModel) Length() int      { return len(m.words) }
func (m *sentenceModel) LeftWindow() int  { return m.left }
func (m *sentenceModel) RightWindow() int { return m.right }

func (m *sentenceModel) PossibleValues(pos int) []int {
	i := pos - m.left
	if i < 0 || i >= len(m.words) {
		return []int{PadTag}
	}
	return m.candidates[i]
}

// ScoresOf returns the log-probabilities of the candidates at pos. Only the
// tags inside the window of pos are copied into the history.
func (m *sentenceModel) ScoresOf(tags []int, pos int) []float64 {
	i := pos - m.left
	for j := max(0, i-m.left); j <= min(len(m.words)-1, i+m.right); j++ {
		if id := tags[j+m.left]; id >= 0 {
			m.history.Tags[j] = m.t.names[id]
		} else {
			m.history.Tags[j] = ""
		}
	}
	m.history.Current = i

	if m.local[i] == nil {
		m.local[i] = m.t.Model.LocalScores(&m.history, m.rare[i])
	}
	all := m.t.Model.Scores(&m.history, m.rare[i], m.local[i])

	scores := make([]float64, len(m.candidates[i]))
	for k, id := range m.candidates[i] {
		scores[k] = all[id]
	}
	return scores
}
