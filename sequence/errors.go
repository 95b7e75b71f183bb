package sequence

import "github.com/pkg/errors"

var (
	// ErrNegativeWindow is returned when a model reports a negative window size.
	ErrNegativeWindow = errors.New("negative context window")
	// ErrEmptyCandidates is returned when a position has no legal tag.
	ErrEmptyCandidates = errors.New("position has no candidate tags")
	// ErrDuplicateCandidate is returned when a candidate list repeats a tag.
	ErrDuplicateCandidate = errors.New("duplicate candidate tag")
	// ErrWindowTooLarge is returned when a window product exceeds the finder's ceiling.
	ErrWindowTooLarge = errors.New("window product exceeds ceiling")
	// ErrScoreLength is returned when ScoresOf disagrees with PossibleValues in length.
	ErrScoreLength = errors.New("score vector length mismatch")
	// ErrScoreNotFinite is returned when ScoresOf yields NaN or +Inf.
	ErrScoreNotFinite = errors.New("score is NaN or +Inf")
	// ErrNoPath is returned when every complete assignment scores -Inf.
	ErrNoPath = errors.New("no assignment with a finite score")
	// ErrBrokenTrace signals an unreached backpointer on the selected path.
	ErrBrokenTrace = errors.New("backtrace reached an unset backpointer")
)
