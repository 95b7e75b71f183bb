// Package sequence finds best-scoring tag sequences under locally scored
// sequence models.
//
// A Model scores one position at a time given the tags of a fixed window of
// neighbours: LeftWindow tags to the left and RightWindow tags to the right.
// Positions are addressed in a padded coordinate space 0..Length+LeftWindow+RightWindow-1,
// where the real sentence occupies LeftWindow..LeftWindow+Length-1 and the rest
// is padding whose candidates come from the model like any other position.
package sequence

// Model is the scoring oracle consumed by a BestSequenceFinder.
//
// Implementations must be deterministic for a fixed input and must not retain
// the tags slice passed to ScoresOf: the finder reuses it between calls.
type Model interface {
	// Length is the number of real positions in the sequence.
	Length() int
	// LeftWindow is how many tags to the left of a position influence its score.
	LeftWindow() int
	// RightWindow is how many tags to the right of a position influence its score.
	RightWindow() int
	// PossibleValues returns the ordered, duplicate-free candidate tags for the
	// padded position pos.
	PossibleValues(pos int) []int
	// ScoresOf returns one score per PossibleValues(pos) entry for the padded
	// position pos, holding every other entry of tags fixed. The value stored at
	// tags[pos] is a placeholder.
	ScoresOf(tags []int, pos int) []float64
}

// BestSequenceFinder computes the best padded tag assignment for a Model.
type BestSequenceFinder interface {
	BestSequence(m Model) ([]int, error)
}
