package tagset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"k8s.io/klog/v2"
)

// entry is the persisted form of one tag.
type entry struct {
	Tag    string `msgpack:"tag"`
	Closed bool   `msgpack:"closed"`
}

type persisted struct {
	Tags  []entry    `msgpack:"tags"`
	Rules [][]string `msgpack:"rules,omitempty"`
}

func (ts *TagSet) persisted() persisted {
	p := persisted{Rules: ts.ExpansionRules}
	for _, tag := range ts.index {
		p.Tags = append(p.Tags, entry{Tag: tag, Closed: ts.IsClosed(tag)})
	}
	return p
}

func fromPersisted(p persisted) *TagSet {
	ts := &TagSet{
		ids:            make(map[string]int),
		closed:         make(map[string]bool),
		open:           make(map[string]bool),
		ExpansionRules: p.Rules,
	}
	for _, e := range p.Tags {
		ts.Add(e.Tag)
		if e.Closed {
			ts.closed[e.Tag] = true
		}
	}
	return ts
}

// EncodeMsgpack implements msgpack.CustomEncoder so a TagSet can be embedded
// in larger msgpack documents.
func (ts *TagSet) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(ts.persisted())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (ts *TagSet) DecodeMsgpack(dec *msgpack.Decoder) error {
	var p persisted
	if err := dec.Decode(&p); err != nil {
		return errors.Wrap(err, "failed to decode tag set")
	}
	*ts = *fromPersisted(p)
	return nil
}

// Save writes the tag set in msgpack form. Tags keep their ids and their
// closed flag; a fixed open set is saved as its closed complement.
func (ts *TagSet) Save(w io.Writer) error {
	return errors.Wrap(msgpack.NewEncoder(w).Encode(ts), "failed to write tag set")
}

// Load reads a tag set written by Save.
func Load(r io.Reader) (*TagSet, error) {
	ts := &TagSet{}
	if err := msgpack.NewDecoder(r).Decode(ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// WriteText writes one tag per line in id order, followed by "closed" for
// closed-class tags.
func (ts *TagSet) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, tag := range ts.index {
		if ts.IsClosed(tag) {
			fmt.Fprintf(bw, "%s closed\n", tag)
		} else {
			fmt.Fprintln(bw, tag)
		}
	}
	return bw.Flush()
}

// ReadText reads the format written by WriteText on top of the closed tags of
// language. Blank lines and lines starting with "#" are skipped.
func ReadText(r io.Reader, language string) (*TagSet, error) {
	ts, err := New(language)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		switch {
		case len(parts) == 1:
			ts.Add(parts[0])
		case len(parts) == 2 && parts[1] == "closed":
			ts.MarkClosed(parts[0])
		default:
			return nil, errors.Errorf("line %d: malformed tag entry %q", lineNo, line)
		}
	}
	return ts, errors.Wrap(scanner.Err(), "failed to read tags")
}

// LoadExpansionRules reads one comma-separated rule per line. A missing file
// yields no rules.
func LoadExpansionRules(path string) ([][]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		klog.Warningf("tag expansion rule file %q not found, expansion disabled", path)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open expansion rules %q", path)
	}
	defer file.Close()

	var rules [][]string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rule []string
		for _, tag := range strings.Split(scanner.Text(), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				rule = append(rule, tag)
			}
		}
		if len(rule) > 0 {
			rules = append(rules, rule)
		}
	}
	return rules, errors.Wrapf(scanner.Err(), "failed to read expansion rules %q", path)
}
