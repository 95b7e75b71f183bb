// Package tagger assigns part-of-speech tags to sentences by decoding a
// maxent model restricted to dictionary candidates.
package tagger

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/dictionary"
	"github.com/teatak/postag/maxent"
	"github.com/teatak/postag/sequence"
	"github.com/teatak/postag/tagset"
)

// PadTag is the only candidate of a padding position. It has no name and
// reads as maxent.NA in feature histories.
const PadTag = -1

// DefaultRareThreshold is the word count below which rare-word templates fire.
const DefaultRareThreshold = 5

// Tagger holds a trained model. Once built it is read-only and TagSentence
// may be called from many goroutines.
type Tagger struct {
	Tags   *tagset.TagSet
	Dict   *dictionary.Dictionary
	Model  *maxent.Model
	Finder sequence.BestSequenceFinder

	// RareThreshold: words seen fewer times than this are rare.
	RareThreshold int
	// WordFunction, if set, rewrites every word before lookup and scoring.
	// Tagged output keeps the input words.
	WordFunction func(string) string

	names   []string
	openIDs []int
	eos     int
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithFinder replaces the default exact finder.
func WithFinder(f sequence.BestSequenceFinder) Option {
	return func(t *Tagger) { t.Finder = f }
}

// WithRareThreshold sets the rare word threshold.
func WithRareThreshold(n int) Option {
	return func(t *Tagger) { t.RareThreshold = n }
}

// WithWordFunction sets the word rewriting function.
func WithWordFunction(fn func(string) string) Option {
	return func(t *Tagger) { t.WordFunction = fn }
}

// WithExpansionRules replaces the expansion rules of the tag set.
func WithExpansionRules(rules [][]string) Option {
	return func(t *Tagger) { t.Tags.ExpansionRules = rules }
}

// New binds a tag set, a dictionary and a model. The tag set must contain
// tagset.EOSTag and its size must match the model.
func New(tags *tagset.TagSet, dict *dictionary.Dictionary, model *maxent.Model, opts ...Option) (*Tagger, error) {
	if tags.Size() != model.NumTags {
		return nil, errors.Errorf("model scores %d tags but the tag set has %d", model.NumTags, tags.Size())
	}
	eos := tags.Index(tagset.EOSTag)
	if eos < 0 {
		return nil, errors.Errorf("tag set has no end-of-sentence tag %q", tagset.EOSTag)
	}
	t := &Tagger{
		Tags:          tags,
		Dict:          dict,
		Model:         model,
		Finder:        sequence.NewExactFinder(),
		RareThreshold: DefaultRareThreshold,
		names:         tags.Tags(),
		eos:           eos,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.openIDs = t.ids(tags.ExpandTags(tags.OpenTags()))
	if len(t.openIDs) == 0 {
		return nil, errors.New("tag set has no open-class tags for unknown words")
	}
	klog.V(1).Infof("tagger: %d tags (%d open), %d known words, context %d+%d",
		tags.Size(), len(t.openIDs), dict.Len(), model.LeftWindow(), model.RightWindow())
	return t, nil
}

func (t *Tagger) ids(tags []string) []int {
	ids := make([]int, 0, len(tags))
	for _, tag := range tags {
		if id := t.Tags.Index(tag); id >= 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsUnknown reports whether word, after WordFunction, is missing from the
// dictionary.
func (t *Tagger) IsUnknown(word string) bool {
	return t.Dict.IsUnknown(t.normalize(word))
}

func (t *Tagger) normalize(word string) string {
	if t.WordFunction != nil {
		return t.WordFunction(word)
	}
	return word
}

func (t *Tagger) isRare(word string) bool {
	return t.Dict.Sum(word) < t.RareThreshold
}

// candidates returns the tag ids word may take.
func (t *Tagger) candidates(word string) []int {
	if t.Dict.IsUnknown(word) {
		return t.openIDs
	}
	ids := t.ids(t.Tags.ExpandTags(t.Dict.Tags(word)))
	if len(ids) == 0 {
		return t.openIDs
	}
	return ids
}

// TagSentence tags words.
func (t *Tagger) TagSentence(words []string) ([]corpus.TaggedWord, error) {
	return t.TagSentenceReusing(words, nil)
}

// TagSentenceReusing tags words keeping every non-empty entry of tags as the
// only choice at its position. tags may be nil.
func (t *Tagger) TagSentenceReusing(words, tags []string) ([]corpus.TaggedWord, error) {
	if tags != nil && len(tags) != len(words) {
		return nil, errors.Errorf("%d words but %d tags", len(words), len(tags))
	}
	m, err := t.newSentenceModel(words, tags)
	if err != nil {
		return nil, err
	}
	best, err := t.Finder.BestSequence(m)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to tag %d-word sentence", len(words))
	}

	out := make([]corpus.TaggedWord, len(words))
	left := m.LeftWindow()
	for i, w := range words {
		out[i] = corpus.TaggedWord{Word: w, Tag: t.names[best[left+i]]}
	}
	return out, nil
}
