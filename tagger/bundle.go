package tagger

import (
	"bufio"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/dictionary"
	"github.com/teatak/postag/maxent"
	"github.com/teatak/postag/tagset"
)

// bundle is the on-disk form of a tagger: everything needed to tag, in one
// msgpack document.
type bundle struct {
	ID            string                 `msgpack:"id"`
	Tags          *tagset.TagSet         `msgpack:"tags"`
	Dict          *dictionary.Dictionary `msgpack:"dict"`
	Model         *maxent.Model          `msgpack:"model"`
	RareThreshold int                    `msgpack:"rare_threshold"`
}

// SaveBundle writes the tag set, dictionary, model and rare threshold to path.
func (t *Tagger) SaveBundle(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create bundle %q", path)
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	b := bundle{
		ID:            uuid.NewString(),
		Tags:          t.Tags,
		Dict:          t.Dict,
		Model:         t.Model,
		RareThreshold: t.RareThreshold,
	}
	if err := msgpack.NewEncoder(w).Encode(&b); err != nil {
		return errors.Wrapf(err, "failed to encode bundle %q", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write bundle %q", path)
	}
	klog.V(1).Infof("saved tagger bundle %s to %q", b.ID, path)
	return nil
}

// LoadBundle reads a tagger written by SaveBundle. Options apply after the
// saved settings.
func LoadBundle(path string, opts ...Option) (*Tagger, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bundle %q", path)
	}
	defer file.Close()

	var b bundle
	if err := msgpack.NewDecoder(bufio.NewReader(file)).Decode(&b); err != nil {
		return nil, errors.Wrapf(err, "failed to decode bundle %q", path)
	}
	if b.Tags == nil || b.Dict == nil || b.Model == nil {
		return nil, errors.Errorf("bundle %q is incomplete", path)
	}
	if b.Dict.Words == nil {
		b.Dict.Words = make(map[string][]dictionary.TagCount)
	}
	klog.V(1).Infof("loaded tagger bundle %s from %q", b.ID, path)
	return New(b.Tags, b.Dict, b.Model, append([]Option{WithRareThreshold(b.RareThreshold)}, opts...)...)
}

// LoadText builds a tagger from a text tag file, a text dictionary and text
// model weights. language selects the closed-tag preset the tag file extends.
func LoadText(tagsPath, dictPath, weightsPath, language string, opts ...Option) (*Tagger, error) {
	tagsFile, err := os.Open(tagsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open tags %q", tagsPath)
	}
	defer tagsFile.Close()
	tags, err := tagset.ReadText(tagsFile, language)
	if err != nil {
		return nil, errors.Wrapf(err, "tags %q", tagsPath)
	}

	dict := dictionary.NewDictionary()
	if err := dict.Load(dictPath); err != nil {
		return nil, err
	}

	weightsFile, err := os.Open(weightsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open weights %q", weightsPath)
	}
	defer weightsFile.Close()
	model, err := maxent.ReadText(weightsFile, tags)
	if err != nil {
		return nil, errors.Wrapf(err, "weights %q", weightsPath)
	}
	return New(tags, dict, model, opts...)
}
