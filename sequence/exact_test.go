package sequence

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcModel is a Model backed by explicit candidate lists and a scoring
// function over the padded assignment.
type funcModel struct {
	length, left, right int
	candidates          [][]int
	score               func(tags []int, pos, tag int) float64
	calls               int
}

func (m *funcModel) Length() int      { return m.length }
func (m *funcModel) LeftWindow() int  { return m.left }
func (m *funcModel) RightWindow() int { return m.right }

func (m *funcModel) PossibleValues(pos int) []int { return m.candidates[pos] }

func (m *funcModel) ScoresOf(tags []int, pos int) []float64 {
	m.calls++
	values := m.candidates[pos]
	scores := make([]float64, len(values))
	for i, v := range values {
		scores[i] = m.score(tags, pos, v)
	}
	return scores
}

func uniform(padLength int, tags ...int) [][]int {
	c := make([][]int, padLength)
	for i := range c {
		c[i] = tags
	}
	return c
}

// randomModel scores a tag with a unary weight plus one pairwise weight per
// neighbour inside the window, all drawn from rng.
func randomModel(rng *rand.Rand, length, left, right, numTags int) *funcModel {
	padLength := length + left + right
	candidates := make([][]int, padLength)
	for pos := range candidates {
		perm := rng.Perm(numTags)
		candidates[pos] = perm[:1+rng.Intn(numTags)]
	}
	width := left + right + 1
	weights := make([][]float64, padLength)
	for pos := range weights {
		weights[pos] = make([]float64, width*numTags*numTags+numTags)
		for i := range weights[pos] {
			weights[pos][i] = rng.NormFloat64()
		}
	}
	return &funcModel{
		length: length, left: left, right: right,
		candidates: candidates,
		score: func(tags []int, pos, tag int) float64 {
			w := weights[pos]
			s := w[width*numTags*numTags+tag]
			for k := -left; k <= right; k++ {
				if k == 0 {
					continue
				}
				s += w[((k+left)*numTags+tags[pos+k])*numTags+tag]
			}
			return s
		},
	}
}

// bruteForce enumerates every padded assignment and returns the best total.
func bruteForce(t *testing.T, m Model) ([]int, float64) {
	padLength := m.Length() + m.LeftWindow() + m.RightWindow()
	values := make([][]int, padLength)
	for pos := range values {
		values[pos] = m.PossibleValues(pos)
	}
	digits := make([]int, padLength)
	seq := make([]int, padLength)
	var best []int
	bestScore := math.Inf(-1)
	for {
		for pos, d := range digits {
			seq[pos] = values[pos][d]
		}
		s, err := ScoreOf(m, seq)
		require.NoError(t, err)
		if s > bestScore {
			bestScore = s
			best = append([]int(nil), seq...)
		}
		pos := padLength - 1
		for ; pos >= 0; pos-- {
			digits[pos]++
			if digits[pos] < len(values[pos]) {
				break
			}
			digits[pos] = 0
		}
		if pos < 0 {
			return best, bestScore
		}
	}
}

func TestBestSequenceMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	finder := NewExactFinder()
	shapes := []struct{ length, left, right, numTags int }{
		{1, 0, 0, 3},
		{4, 0, 0, 3},
		{4, 1, 0, 3},
		{4, 0, 1, 3},
		{3, 1, 1, 3},
		{5, 2, 0, 2},
		{3, 2, 1, 2},
		{2, 1, 2, 3},
	}
	for _, shape := range shapes {
		for trial := 0; trial < 5; trial++ {
			m := randomModel(rng, shape.length, shape.left, shape.right, shape.numTags)
			got, gotScore, err := finder.BestSequenceScore(m)
			require.NoError(t, err)
			require.Len(t, got, shape.length+shape.left+shape.right)

			_, wantScore := bruteForce(t, m)
			assert.InDeltaf(t, wantScore, gotScore, 1e-9, "shape %+v trial %d", shape, trial)

			recomputed, err := ScoreOf(m, got)
			require.NoError(t, err)
			assert.InDelta(t, gotScore, recomputed, 1e-9)

			for pos, tag := range got {
				assert.Containsf(t, m.PossibleValues(pos), tag, "padded position %d", pos)
			}
		}
	}
}

func TestBestSequenceWithoutContextIsArgMax(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		m := randomModel(rng, 6, 0, 0, 5)
		got, err := NewExactFinder().BestSequence(m)
		require.NoError(t, err)
		for pos := 0; pos < m.length; pos++ {
			scores := m.ScoresOf(got, pos)
			best := 0
			for i := range scores {
				if scores[i] > scores[best] {
					best = i
				}
			}
			assert.Equal(t, m.candidates[pos][best], got[pos])
		}
	}
}

func TestBestSequenceIsDeterministic(t *testing.T) {
	m := randomModel(rand.New(rand.NewSource(3)), 5, 1, 1, 3)
	finder := NewExactFinder()
	first, err := finder.BestSequence(m)
	require.NoError(t, err)
	second, err := finder.BestSequence(m)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBestSequenceScenarios(t *testing.T) {
	const (
		A = 10
		B = 11
		P = 20
		Q = 21
		X = 30
	)

	t.Run("constant scores prefer B", func(t *testing.T) {
		m := &funcModel{
			length: 3, left: 1, right: 0,
			candidates: uniform(4, A, B),
			score: func(_ []int, _, tag int) float64 {
				if tag == B {
					return 1
				}
				return 0
			},
		}
		got, score, err := NewExactFinder().BestSequenceScore(m)
		require.NoError(t, err)
		assert.Equal(t, []int{B, B, B}, got[1:4])
		assert.Equal(t, 3.0, score)
		// Padding has no score of its own, so the earliest candidate wins.
		assert.Equal(t, A, got[0])
	})

	t.Run("single candidate", func(t *testing.T) {
		m := &funcModel{
			length: 1,
			candidates: [][]int{{X}},
			score: func(_ []int, _, _ int) float64 {
				return -123
			},
		}
		got, err := NewExactFinder().BestSequence(m)
		require.NoError(t, err)
		assert.Equal(t, []int{X}, got)
	})

	t.Run("context overrides local preference", func(t *testing.T) {
		m := &funcModel{
			length: 2, left: 1, right: 1,
			candidates: [][]int{{A}, {P, Q}, {P, Q}, {A}},
			score: func(tags []int, pos, tag int) float64 {
				if pos == 1 {
					if tag == P {
						return 5
					}
					return 0
				}
				if tags[pos-1] == P {
					return -100
				}
				return 0
			},
		}
		got, err := NewExactFinder().BestSequence(m)
		require.NoError(t, err)
		assert.Equal(t, Q, got[1])
	})

	t.Run("ties keep the earliest encoding", func(t *testing.T) {
		m := &funcModel{
			length: 3, left: 1, right: 1,
			candidates: uniform(5, A, B),
			score: func(_ []int, _, _ int) float64 {
				return 0
			},
		}
		got, err := NewExactFinder().BestSequence(m)
		require.NoError(t, err)
		assert.Equal(t, []int{A, A, A, A, A}, got)
	})

	t.Run("ties between two distinct paths", func(t *testing.T) {
		// [A B] and [B A] both score 1; [A B] ends in the lower encoding.
		m := &funcModel{
			length: 2, left: 1,
			candidates: [][]int{{A}, {A, B}, {A, B}},
			score: func(tags []int, pos, tag int) float64 {
				if pos == 2 && tags[1] != tag {
					return 1
				}
				return 0
			},
		}
		got, err := NewExactFinder().BestSequence(m)
		require.NoError(t, err)
		assert.Equal(t, []int{A, A, B}, got)
	})
}

func TestBestSequenceEmptySentence(t *testing.T) {
	m := &funcModel{
		left: 2, right: 2,
		score: func(_ []int, _, _ int) float64 {
			panic("oracle must not be consulted")
		},
	}
	got, err := NewExactFinder().BestSequence(m)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, m.calls)
}

func TestBestSequenceOracleCalls(t *testing.T) {
	// Three candidates everywhere, window of three: 27 windows per position,
	// but only 9 distinct contexts.
	m := &funcModel{
		length: 4, left: 1, right: 1,
		candidates: uniform(6, 0, 1, 2),
		score: func(tags []int, pos, tag int) float64 {
			return float64(tags[pos-1]*tag - tags[pos+1])
		},
	}
	_, err := NewExactFinder().BestSequence(m)
	require.NoError(t, err)
	assert.Equal(t, 4*9, m.calls)
}

func TestBestSequenceErrors(t *testing.T) {
	zero := func(_ []int, _, _ int) float64 { return 0 }

	tests := []struct {
		name   string
		model  Model
		finder *ExactFinder
		want   error
	}{
		{
			name:  "negative window",
			model: &funcModel{length: 1, left: -1, candidates: uniform(1, 0), score: zero},
			want:  ErrNegativeWindow,
		},
		{
			name:  "empty candidates",
			model: &funcModel{length: 2, candidates: [][]int{{0}, {}}, score: zero},
			want:  ErrEmptyCandidates,
		},
		{
			name:  "duplicate candidates",
			model: &funcModel{length: 1, candidates: [][]int{{4, 4}}, score: zero},
			want:  ErrDuplicateCandidate,
		},
		{
			name:   "window too large",
			model:  &funcModel{length: 3, left: 1, right: 1, candidates: uniform(5, 0, 1, 2, 3), score: zero},
			finder: NewExactFinder(WithMaxWindowProduct(63)),
			want:   ErrWindowTooLarge,
		},
		{
			name:  "NaN score",
			model: &funcModel{length: 2, candidates: uniform(2, 0, 1), score: func(_ []int, _, _ int) float64 { return math.NaN() }},
			want:  ErrScoreNotFinite,
		},
		{
			name:  "+Inf score",
			model: &funcModel{length: 1, candidates: uniform(1, 0), score: func(_ []int, _, _ int) float64 { return math.Inf(1) }},
			want:  ErrScoreNotFinite,
		},
		{
			name:  "no finite path",
			model: &funcModel{length: 2, candidates: uniform(2, 0, 1), score: func(_ []int, _, _ int) float64 { return math.Inf(-1) }},
			want:  ErrNoPath,
		},
		{
			name:  "short score vector",
			model: shortScores{&funcModel{length: 1, candidates: uniform(1, 0, 1), score: zero}},
			want:  ErrScoreLength,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := tt.finder
			if finder == nil {
				finder = NewExactFinder()
			}
			_, err := finder.BestSequence(tt.model)
			require.Error(t, err)
			assert.Truef(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestBestSequenceAllowsForbiddenWindows(t *testing.T) {
	// Tag 1 may never follow tag 1.
	m := &funcModel{
		length: 3, left: 1,
		candidates: uniform(4, 0, 1),
		score: func(tags []int, pos, tag int) float64 {
			if tag == 1 && tags[pos-1] == 1 {
				return math.Inf(-1)
			}
			return float64(tag)
		},
	}
	got, score, err := NewExactFinder().BestSequenceScore(m)
	require.NoError(t, err)
	assert.Equal(t, 2.0, score)
	assert.Equal(t, []int{0, 1, 0, 1}, got)
}

type shortScores struct{ *funcModel }

func (s shortScores) ScoresOf(tags []int, pos int) []float64 {
	return s.funcModel.ScoresOf(tags, pos)[1:]
}
