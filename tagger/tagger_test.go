package tagger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/dictionary"
	"github.com/teatak/postag/maxent"
	"github.com/teatak/postag/sequence"
	"github.com/teatak/postag/tagset"
)

func newTestTagger(t *testing.T, opts ...Option) *Tagger {
	tags := must.M1(tagset.New(""))
	for _, tag := range []string{"DT", "NN", "VB"} {
		tags.Add(tag)
	}
	tags.MarkClosed("DT")
	tags.MarkClosed(tagset.EOSTag)

	dict := dictionary.NewDictionary()
	dict.AddSentence([]string{"the", "dog", "runs"}, []string{"DT", "NN", "VB"})
	dict.Add("runs", "NN", 1)

	model := must.M1(maxent.NewModel(tags.Size(), []string{"w0", "t-1"}, nil))
	set := func(feat, tag string, w float64) {
		require.NoError(t, model.SetWeight(feat, tags.Index(tag), w))
	}
	set("w0:runs", "NN", 0.5)
	set("t-1:NN", "VB", 2)
	set("t-1:DT", "NN", 2)
	set("t-1:VB", "NN", 1)

	return must.M1(New(tags, dict, model, opts...))
}

func tagsOf(tagged []corpus.TaggedWord) []string {
	return corpus.Tags(tagged)
}

func TestTagSentence(t *testing.T) {
	tg := newTestTagger(t)

	tests := []struct {
		text     string
		expected []string
	}{
		{"the dog runs", []string{"DT", "NN", "VB"}},
		{"the cat runs", []string{"DT", "NN", "VB"}},
		{"runs", []string{"VB"}},
		{"dog runs runs", []string{"NN", "VB", "NN"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got, err := tg.TagSentence(strings.Fields(tt.text))
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.expected, tagsOf(got), tt.text)
	}
}

func TestCandidates(t *testing.T) {
	tg := newTestTagger(t)
	assert.Equal(t, []int{1, 2}, tg.candidates("unseen"))
	assert.Equal(t, []int{2, 1}, tg.candidates("runs"))
	assert.True(t, tg.IsUnknown("cat"))
	assert.False(t, tg.IsUnknown("dog"))

	tg.Tags.ExpansionRules = [][]string{{"DT", "VB"}}
	assert.Equal(t, []int{0, 2}, tg.candidates("the"))
}

func TestSentenceModel(t *testing.T) {
	tg := newTestTagger(t)
	m := must.M1(tg.newSentenceModel([]string{"the", "dog"}, nil))
	assert.Equal(t, 3, m.Length())
	assert.Equal(t, 1, m.LeftWindow())
	assert.Equal(t, 0, m.RightWindow())
	assert.Equal(t, []int{PadTag}, m.PossibleValues(0))
	assert.Equal(t, []int{0}, m.PossibleValues(1))
	assert.Equal(t, []int{tg.Tags.Index(tagset.EOSTag)}, m.PossibleValues(3))

	// The decoded assignment scores the same through ScoreOf.
	best, score, err := sequence.NewExactFinder().BestSequenceScore(m)
	require.NoError(t, err)
	again := must.M1(sequence.ScoreOf(m, best))
	assert.InDelta(t, score, again, 1e-9)
}

func TestTagSentenceReusing(t *testing.T) {
	tg := newTestTagger(t)
	words := []string{"the", "dog", "runs"}

	got := must.M1(tg.TagSentenceReusing(words, []string{"", "", "NN"}))
	assert.Equal(t, []string{"DT", "NN", "NN"}, tagsOf(got))

	_, err := tg.TagSentenceReusing(words, []string{"", "", "XX"})
	assert.Error(t, err)
	_, err = tg.TagSentenceReusing(words, []string{"DT"})
	assert.Error(t, err)
}

func TestWordFunction(t *testing.T) {
	tg := newTestTagger(t, WithWordFunction(strings.ToLower))
	got := must.M1(tg.TagSentence([]string{"The", "DOG", "Runs"}))
	assert.Equal(t, []corpus.TaggedWord{{"The", "DT"}, {"DOG", "NN"}, {"Runs", "VB"}}, got)
}

func TestWindowTooLarge(t *testing.T) {
	tg := newTestTagger(t, WithFinder(sequence.NewExactFinder(sequence.WithMaxWindowProduct(1))))
	_, err := tg.TagSentence([]string{"the", "cat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sequence.ErrWindowTooLarge)
}

func TestNewErrors(t *testing.T) {
	tags := must.M1(tagset.New(""))
	tags.Add("NN")
	dict := dictionary.NewDictionary()

	_, err := New(tags, dict, must.M1(maxent.NewModel(2, nil, nil)))
	assert.Error(t, err, "size mismatch")
	_, err = New(tags, dict, must.M1(maxent.NewModel(1, nil, nil)))
	assert.Error(t, err, "no end-of-sentence tag")

	tags.MarkClosed("NN")
	tags.MarkClosed(tagset.EOSTag)
	_, err = New(tags, dict, must.M1(maxent.NewModel(2, nil, nil)))
	assert.Error(t, err, "no open tags")
}

func TestConcurrentTagging(t *testing.T) {
	tg := newTestTagger(t)
	sentences := [][]string{
		{"the", "dog", "runs"},
		{"dog", "runs", "runs"},
		{"the", "cat", "runs"},
	}
	want := make([][]corpus.TaggedWord, len(sentences))
	for i, s := range sentences {
		want[i] = must.M1(tg.TagSentence(s))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, s := range sentences {
				got, err := tg.TagSentence(s)
				if err != nil {
					errs <- err
					return
				}
				if !assert.Equal(t, want[i], got) {
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestBundle(t *testing.T) {
	tg := newTestTagger(t, WithRareThreshold(3))
	path := filepath.Join(t.TempDir(), "model.bundle")
	require.NoError(t, tg.SaveBundle(path))

	loaded := must.M1(LoadBundle(path))
	assert.Equal(t, 3, loaded.RareThreshold)
	assert.Equal(t, tg.Tags.Tags(), loaded.Tags.Tags())
	assert.Equal(t, tg.Dict.Words, loaded.Dict.Words)
	assert.Equal(t, tg.Model.Feats, loaded.Model.Feats)
	for _, text := range []string{"the dog runs", "the cat runs"} {
		want := must.M1(tg.TagSentence(strings.Fields(text)))
		assert.Equal(t, want, must.M1(loaded.TagSentence(strings.Fields(text))))
	}

	_, err := LoadBundle(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadText(t *testing.T) {
	tg := newTestTagger(t)
	dir := t.TempDir()
	tagsPath := filepath.Join(dir, "tags.txt")
	dictPath := filepath.Join(dir, "dict.txt")
	weightsPath := filepath.Join(dir, "weights.txt")

	tagsFile := must.M1(os.Create(tagsPath))
	require.NoError(t, tg.Tags.WriteText(tagsFile))
	require.NoError(t, tagsFile.Close())
	require.NoError(t, tg.Dict.Save(dictPath))
	weightsFile := must.M1(os.Create(weightsPath))
	require.NoError(t, tg.Model.WriteText(weightsFile, tg.Tags))
	require.NoError(t, weightsFile.Close())

	loaded := must.M1(LoadText(tagsPath, dictPath, weightsPath, ""))
	assert.Equal(t, tg.Tags.OpenTags(), loaded.Tags.OpenTags())
	got := must.M1(loaded.TagSentence([]string{"the", "cat", "runs"}))
	assert.Equal(t, []string{"DT", "NN", "VB"}, tagsOf(got))
}
