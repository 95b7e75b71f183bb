// Package tagset assigns ids to part-of-speech tags and knows which tags are
// open class (any unknown word may take them) and which are closed.
package tagset

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

const (
	// EOSTag is the tag of the end-of-sentence token appended to every sentence.
	EOSTag = ".$$."
	// EOSWord is the word form of the end-of-sentence token.
	EOSWord = ".$."
)

// TagSet holds the tag index and the open/closed classification.
// It is not safe for concurrent mutation; readers may share it once built.
type TagSet struct {
	index  []string
	ids    map[string]int
	closed map[string]bool

	// When openFixed is set the open tags are given explicitly and every other
	// tag is closed.
	openFixed bool
	open      map[string]bool

	ExpansionRules [][]string
}

// New creates an empty tag set seeded with the closed tags of language.
// An empty language seeds nothing.
func New(language string) (*TagSet, error) {
	ts := &TagSet{
		ids:    make(map[string]int),
		closed: make(map[string]bool),
		open:   make(map[string]bool),
	}
	preset, ok := closedPresets[strings.ToLower(language)]
	if !ok {
		return nil, errors.Errorf("unknown language: %q", language)
	}
	for _, tag := range preset {
		ts.closed[tag] = true
	}
	return ts, nil
}

// Add adds tag to the index if missing and returns its id.
func (ts *TagSet) Add(tag string) int {
	if id, ok := ts.ids[tag]; ok {
		return id
	}
	id := len(ts.index)
	ts.index = append(ts.index, tag)
	ts.ids[tag] = id
	return id
}

// Tag returns the tag with id i.
func (ts *TagSet) Tag(i int) string {
	return ts.index[i]
}

// Index returns the id of tag, or -1.
func (ts *TagSet) Index(tag string) int {
	if id, ok := ts.ids[tag]; ok {
		return id
	}
	return -1
}

// Size is the number of tags in the index.
func (ts *TagSet) Size() int {
	return len(ts.index)
}

// Tags returns the tags in id order.
func (ts *TagSet) Tags() []string {
	return slices.Clone(ts.index)
}

// IsClosed reports whether tag is a closed-class tag.
func (ts *TagSet) IsClosed(tag string) bool {
	if ts.openFixed {
		return !ts.open[tag]
	}
	return ts.closed[tag]
}

// MarkClosed adds tag to the index and marks it closed.
func (ts *TagSet) MarkClosed(tag string) {
	ts.Add(tag)
	ts.closed[tag] = true
}

// SetOpenClassTags fixes the open tags; every other tag becomes closed.
func (ts *TagSet) SetOpenClassTags(tags ...string) {
	for _, tag := range tags {
		ts.open[tag] = true
		ts.Add(tag)
	}
	ts.openFixed = true
}

// SetClosedClassTags marks every given tag closed.
func (ts *TagSet) SetClosedClassTags(tags ...string) {
	for _, tag := range tags {
		ts.MarkClosed(tag)
	}
}

// OpenTags returns the open-class tags in id order.
func (ts *TagSet) OpenTags() []string {
	var open []string
	for _, tag := range ts.index {
		if !ts.IsClosed(tag) {
			open = append(open, tag)
		}
	}
	return open
}

// LearnClosedTags marks closed every tag seen with fewer than threshold
// distinct word types. typeCounts maps tag to its number of word types.
func (ts *TagSet) LearnClosedTags(typeCounts map[string]int, threshold int) {
	for _, tag := range ts.index {
		if n, ok := typeCounts[tag]; ok && n < threshold {
			ts.MarkClosed(tag)
		}
	}
}

// ExpandTags adds, for every expansion rule sharing a tag with tags, the rest
// of that rule. The input order is kept and additions follow rule order.
func (ts *TagSet) ExpandTags(tags []string) []string {
	if len(ts.ExpansionRules) == 0 {
		return tags
	}
	expanded := slices.Clone(tags)
	for _, rule := range ts.ExpansionRules {
		if !intersects(tags, rule) {
			continue
		}
		for _, tag := range rule {
			if !slices.Contains(expanded, tag) {
				expanded = append(expanded, tag)
			}
		}
	}
	return expanded
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

func (ts *TagSet) String() string {
	var sb strings.Builder
	sb.WriteString("[" + strings.Join(ts.index, ", ") + "]")
	if ts.openFixed {
		sb.WriteString(" OPEN:[" + strings.Join(ts.OpenTags(), ", ") + "]")
		return sb.String()
	}
	var closed []string
	for _, tag := range ts.index {
		if ts.closed[tag] {
			closed = append(closed, tag)
		}
	}
	sb.WriteString(" open:[" + strings.Join(ts.OpenTags(), ", ") + "]")
	sb.WriteString(" CLOSED:[" + strings.Join(closed, ", ") + "]")
	return sb.String()
}
