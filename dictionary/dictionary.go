package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// TagCount is how often a word was seen with one tag.
type TagCount struct {
	Tag   string
	Count int
}

// Dictionary holds, for every known word, the tags it was observed with.
// Tags keep the order in which they were first seen.
type Dictionary struct {
	Words map[string][]TagCount
	Total int
}

// NewDictionary creates a new empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		Words: make(map[string][]TagCount),
	}
}

// Add records n more observations of word with tag.
func (d *Dictionary) Add(word, tag string, n int) {
	counts := d.Words[word]
	for i := range counts {
		if counts[i].Tag == tag {
			counts[i].Count += n
			d.Total += n
			return
		}
	}
	d.Words[word] = append(counts, TagCount{Tag: tag, Count: n})
	d.Total += n
}

// AddSentence records every word of a gold-tagged sentence.
func (d *Dictionary) AddSentence(words, tags []string) {
	for i, w := range words {
		d.Add(w, tags[i], 1)
	}
}

// IsUnknown reports whether word was never observed.
func (d *Dictionary) IsUnknown(word string) bool {
	_, ok := d.Words[word]
	return !ok
}

// Tags returns the tags observed with word, in first-seen order.
func (d *Dictionary) Tags(word string) []string {
	counts := d.Words[word]
	tags := make([]string, len(counts))
	for i, tc := range counts {
		tags[i] = tc.Tag
	}
	return tags
}

// Count returns how often word was seen with tag.
func (d *Dictionary) Count(word, tag string) int {
	for _, tc := range d.Words[word] {
		if tc.Tag == tag {
			return tc.Count
		}
	}
	return 0
}

// Sum returns how often word was seen with any tag.
func (d *Dictionary) Sum(word string) int {
	sum := 0
	for _, tc := range d.Words[word] {
		sum += tc.Count
	}
	return sum
}

// Len is the number of known words.
func (d *Dictionary) Len() int {
	return len(d.Words)
}

// TagTypeCounts returns, per tag, the number of distinct words seen with it.
func (d *Dictionary) TagTypeCounts() map[string]int {
	types := make(map[string]int)
	for _, counts := range d.Words {
		for _, tc := range counts {
			types[tc.Tag]++
		}
	}
	return types
}

// Load loads word/tag counts from a file.
// File format: word tag count (space separated), one pair per line.
// A missing count defaults to 1; lines starting with "#" are comments.
func (d *Dictionary) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open dictionary %q", path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			klog.Warningf("%s:%d: skipping entry without a tag: %q", path, lineNo, line)
			continue
		}
		count := 1
		if len(parts) >= 3 {
			c, err := strconv.Atoi(parts[2])
			if err != nil || c <= 0 {
				return errors.Errorf("%s:%d: bad count %q", path, lineNo, parts[2])
			}
			count = c
		}
		d.Add(parts[0], parts[1], count)
	}
	return errors.Wrapf(scanner.Err(), "failed to read dictionary %q", path)
}

// Save writes the dictionary in the format read by Load, words sorted.
func (d *Dictionary) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create dictionary %q", path)
	}
	defer file.Close()
	writer := bufio.NewWriter(file)

	words := make([]string, 0, len(d.Words))
	for w := range d.Words {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		for _, tc := range d.Words[w] {
			fmt.Fprintf(writer, "%s %s %d\n", w, tc.Tag, tc.Count)
		}
	}
	return writer.Flush()
}
