package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpace(t *testing.T, left, right int, candidates [][]int) *windowSpace {
	m := &funcModel{
		length:     len(candidates) - left - right,
		left:       left,
		right:      right,
		candidates: candidates,
	}
	ws, err := newWindowSpace(m, 0)
	require.NoError(t, err)
	return ws
}

func TestWindowSpaceProductSizes(t *testing.T) {
	ws := newTestSpace(t, 1, 1, [][]int{{0}, {0, 1}, {0, 1, 2}, {0, 1}, {0, 1, 2, 3}})
	assert.Equal(t, []int{1, 2, 3, 2, 4}, ws.tagNum)
	assert.Equal(t, []int{6, 12, 24}, ws.productSizes)
	assert.Equal(t, 3, ws.width())
	assert.Equal(t, 24, ws.maxProduct())
}

func TestWindowSpaceDecodeEncode(t *testing.T) {
	candidates := [][]int{{7, 8}, {5, 6, 9}, {1, 2}, {3, 4, 0}}
	ws := newTestSpace(t, 1, 1, candidates)
	seq := make([]int, ws.padLength())
	for p := 0; p < ws.length; p++ {
		for idx := 0; idx < ws.productSizes[p]; idx++ {
			ws.decode(p, idx, seq)
			digits := make([]int, ws.width())
			for i := range digits {
				pos := p + i
				for d, tag := range candidates[pos] {
					if tag == seq[pos] {
						digits[i] = d
					}
				}
			}
			assert.Equal(t, idx, ws.encode(p, digits))
		}
	}
}

func TestWindowSpaceSharing(t *testing.T) {
	// Dropping the oldest digit of window p-1 must equal dropping the newest
	// digit of window p whenever both describe the same shared tags.
	ws := newTestSpace(t, 2, 1, [][]int{{0, 1}, {0, 1, 2}, {0, 1}, {0, 1, 2}, {0, 1}, {0, 1, 2}})
	prev := make([]int, ws.padLength())
	cur := make([]int, ws.padLength())
	for p := 1; p < ws.length; p++ {
		newest := ws.tagNum[p+ws.left+ws.right]
		factor := ws.overlap(p)
		for idx := 0; idx < ws.productSizes[p]; idx++ {
			ws.decode(p, idx, cur)
			for v := 0; v < ws.tagNum[p-1]; v++ {
				pred := v*factor + idx/newest
				ws.decode(p-1, pred, prev)
				assert.Equal(t, ws.tags[p-1][v], prev[p-1])
				assert.Equal(t, cur[p:p+ws.left+ws.right], prev[p:p+ws.left+ws.right])
			}
		}
	}
}

func TestWindowSpaceStride(t *testing.T) {
	ws := newTestSpace(t, 1, 2, [][]int{{0, 1}, {0, 1, 2}, {0, 1}, {0, 1, 2, 3}, {0, 1}})
	// Own digit of p=0 is padded 1; digits to its right have radix 2 and 4.
	assert.Equal(t, 8, ws.stride(0))
	seq := make([]int, ws.padLength())
	for idx := 0; idx < 8; idx++ {
		for own := 0; own < 3; own++ {
			ws.decode(0, idx+own*ws.stride(0), seq)
			assert.Equal(t, own, seq[1])
		}
	}
}
