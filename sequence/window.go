package sequence

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// windowSpace holds the candidate lists of every padded position and the
// mixed-radix layout of each real position's window.
//
// The window of real position p covers padded positions p..p+l+r. Index 0 of
// the window (padded p) is the most significant digit and padded p+l+r the
// least significant; digit radix is tagNum of the padded position. Windows of
// consecutive positions overlap in l+r digits: dropping the most significant
// digit of window p-1 gives the same value as dropping the least significant
// digit of window p.
type windowSpace struct {
	length, left, right int

	tags         [][]int
	tagNum       []int
	productSizes []int
}

func newWindowSpace(m Model, ceiling int) (*windowSpace, error) {
	ws := &windowSpace{
		length: m.Length(),
		left:   m.LeftWindow(),
		right:  m.RightWindow(),
	}
	if ws.left < 0 || ws.right < 0 {
		return nil, errors.Wrapf(ErrNegativeWindow, "left=%d right=%d", ws.left, ws.right)
	}

	padLength := ws.padLength()
	ws.tags = make([][]int, padLength)
	ws.tagNum = make([]int, padLength)
	for pos := 0; pos < padLength; pos++ {
		values := m.PossibleValues(pos)
		if len(values) == 0 {
			return nil, errors.Wrapf(ErrEmptyCandidates, "padded position %d", pos)
		}
		seen := make(map[int]struct{}, len(values))
		for _, v := range values {
			if _, dup := seen[v]; dup {
				return nil, errors.Wrapf(ErrDuplicateCandidate, "tag %d at padded position %d", v, pos)
			}
			seen[v] = struct{}{}
		}
		ws.tags[pos] = values
		ws.tagNum[pos] = len(values)
	}

	// Products are built digit by digit so an oversized window is caught before
	// it can overflow or be allocated.
	ws.productSizes = make([]int, ws.length)
	for p := 0; p < ws.length; p++ {
		product := 1
		for pos := p; pos <= p+ws.left+ws.right; pos++ {
			n := ws.tagNum[pos]
			if ceiling > 0 && product > ceiling/n {
				return nil, errors.Wrapf(ErrWindowTooLarge,
					"position %d: window product exceeds %s", p, humanize.Comma(int64(ceiling)))
			}
			product *= n
		}
		ws.productSizes[p] = product
	}
	return ws, nil
}

func (ws *windowSpace) padLength() int {
	return ws.length + ws.left + ws.right
}

// width is the number of digits in every window.
func (ws *windowSpace) width() int {
	return ws.left + ws.right + 1
}

// stride is the distance between two encodings of real position p that differ
// only in p's own digit: the radix product of the digits to its right.
func (ws *windowSpace) stride(p int) int {
	s := 1
	for pos := p + ws.left + 1; pos <= p+ws.left+ws.right; pos++ {
		s *= ws.tagNum[pos]
	}
	return s
}

// decode writes the tags encoded by idx into seq[p..p+l+r].
func (ws *windowSpace) decode(p, idx int, seq []int) {
	for pos := p + ws.left + ws.right; pos >= p; pos-- {
		n := ws.tagNum[pos]
		seq[pos] = ws.tags[pos][idx%n]
		idx /= n
	}
}

// encode is the inverse of decode over candidate indices: digits[i] is the
// candidate index at padded position p+i.
func (ws *windowSpace) encode(p int, digits []int) int {
	idx := 0
	for i, d := range digits {
		idx = idx*ws.tagNum[p+i] + d
	}
	return idx
}

// overlap is the size of the space shared by the windows of p-1 and p.
func (ws *windowSpace) overlap(p int) int {
	return ws.productSizes[p] / ws.tagNum[p+ws.left+ws.right]
}

// maxProduct is the widest window product, for logging.
func (ws *windowSpace) maxProduct() int {
	widest := 0
	for _, n := range ws.productSizes {
		widest = max(widest, n)
	}
	return widest
}
