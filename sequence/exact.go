package sequence

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultMaxWindowProduct bounds the number of joint window assignments a
// single position may have. Each assignment costs three table cells.
const DefaultMaxWindowProduct = 1 << 20

// unreached marks a backpointer the forward pass never set.
const unreached = -1

// ExactFinder runs the Viterbi algorithm over window encodings and returns the
// exact best sequence. It holds no per-call state and is safe for concurrent use.
type ExactFinder struct {
	// MaxWindowProduct is the ceiling on any position's window product.
	// Zero or negative disables the check.
	MaxWindowProduct int
}

// Option configures an ExactFinder.
type Option func(*ExactFinder)

// WithMaxWindowProduct sets the window product ceiling.
func WithMaxWindowProduct(n int) Option {
	return func(f *ExactFinder) {
		f.MaxWindowProduct = n
	}
}

// NewExactFinder creates a finder with DefaultMaxWindowProduct unless overridden.
func NewExactFinder(opts ...Option) *ExactFinder {
	f := &ExactFinder{MaxWindowProduct: DefaultMaxWindowProduct}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BestSequence returns the best padded assignment, of length
// Length+LeftWindow+RightWindow. The real sentence is the slice
// [LeftWindow, LeftWindow+Length). An empty sentence yields an empty slice.
func (f *ExactFinder) BestSequence(m Model) ([]int, error) {
	seq, _, err := f.BestSequenceScore(m)
	return seq, err
}

// BestSequenceScore is BestSequence that also reports the total score of the
// returned assignment.
func (f *ExactFinder) BestSequenceScore(m Model) ([]int, float64, error) {
	if m.Length() == 0 {
		return []int{}, 0, nil
	}

	ws, err := newWindowSpace(m, f.MaxWindowProduct)
	if err != nil {
		return nil, 0, err
	}

	windowScore, calls, err := buildWindowScores(m, ws)
	if err != nil {
		return nil, 0, err
	}
	if klog.V(2).Enabled() {
		klog.Infof("sequence: length=%d left=%d right=%d widest window=%d oracle calls=%d",
			ws.length, ws.left, ws.right, ws.maxProduct(), calls)
	}

	score, trace := forward(ws, windowScore)
	return backtrace(ws, score, trace)
}

// buildWindowScores asks the model once per distinct context of every real
// position and spreads the returned vector over the encodings that differ
// only in the position's own digit.
func buildWindowScores(m Model, ws *windowSpace) ([][]float64, int, error) {
	seq := make([]int, ws.padLength())
	for pos := range seq {
		seq[pos] = ws.tags[pos][0]
	}

	calls := 0
	windowScore := make([][]float64, ws.length)
	for p := 0; p < ws.length; p++ {
		own := p + ws.left
		stride := ws.stride(p)
		windowScore[p] = make([]float64, ws.productSizes[p])

		for idx := 0; idx < ws.productSizes[p]; idx++ {
			if (idx/stride)%ws.tagNum[own] != 0 {
				continue
			}
			ws.decode(p, idx, seq)
			scores := m.ScoresOf(seq, own)
			calls++
			if len(scores) != ws.tagNum[own] {
				return nil, calls, errors.Wrapf(ErrScoreLength,
					"padded position %d: got %d scores for %d candidates", own, len(scores), ws.tagNum[own])
			}
			for t, s := range scores {
				if math.IsNaN(s) || math.IsInf(s, 1) {
					return nil, calls, errors.Wrapf(ErrScoreNotFinite,
						"padded position %d, candidate %d: %v", own, ws.tags[own][t], s)
				}
				windowScore[p][idx+t*stride] = s
			}
		}
	}
	return windowScore, calls, nil
}

// forward fills score[p][idx], the best total of any prefix ending in window
// idx at p, and trace[p][idx], the window at p-1 that achieves it.
func forward(ws *windowSpace, windowScore [][]float64) ([][]float64, [][]int) {
	score := make([][]float64, ws.length)
	trace := make([][]int, ws.length)
	for p := 0; p < ws.length; p++ {
		score[p] = make([]float64, ws.productSizes[p])
		trace[p] = make([]int, ws.productSizes[p])
		for idx := range score[p] {
			score[p][idx] = math.Inf(-1)
			trace[p][idx] = unreached
		}
	}

	// No predecessor for the first position.
	copy(score[0], windowScore[0])

	for p := 1; p < ws.length; p++ {
		newest := ws.tagNum[p+ws.left+ws.right]
		factor := ws.overlap(p)
		for idx := 0; idx < ws.productSizes[p]; idx++ {
			shared := idx / newest
			local := windowScore[p][idx]
			for v := 0; v < ws.tagNum[p-1]; v++ {
				pred := v*factor + shared
				s := score[p-1][pred] + local
				if s > score[p][idx] {
					score[p][idx] = s
					trace[p][idx] = pred
				}
			}
		}
	}
	return score, trace
}

// backtrace picks the best window at the last position and follows the
// backpointers down to the first, decoding the oldest digit at each step.
func backtrace(ws *windowSpace, score [][]float64, trace [][]int) ([]int, float64, error) {
	last := ws.length - 1
	best := unreached
	bestScore := math.Inf(-1)
	for idx, s := range score[last] {
		if s > bestScore {
			best = idx
			bestScore = s
		}
	}
	if best == unreached {
		return nil, 0, errors.WithStack(ErrNoPath)
	}

	seq := make([]int, ws.padLength())
	ws.decode(last, best, seq)

	current := best
	for p := last; p > 0; p-- {
		pred := trace[p][current]
		if pred == unreached {
			return nil, 0, errors.Wrapf(ErrBrokenTrace, "position %d, window %d", p, current)
		}
		oldest := pred / ws.overlap(p)
		seq[p-1] = ws.tags[p-1][oldest]
		current = pred
	}
	return seq, bestScore, nil
}
