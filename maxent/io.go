package maxent

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// TagIndex maps tag names to the ids a Model scores.
type TagIndex interface {
	Index(tag string) int
	Tag(id int) string
	Size() int
}

// ReadText reads a text model.
// Format lines:
// A template      (always-on template)
// R template      (rare-word template)
// F feature tag weight
func ReadText(r io.Reader, tags TagIndex) (*Model, error) {
	m := &Model{NumTags: tags.Size(), Feats: make(map[string]map[int]float64)}
	var arch, rare []string
	type weight struct {
		feat string
		tag  int
		w    float64
	}
	var weights []weight

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		switch {
		case parts[0] == "A" && len(parts) == 2:
			arch = append(arch, parts[1])
		case parts[0] == "R" && len(parts) == 2:
			rare = append(rare, parts[1])
		case parts[0] == "F" && len(parts) == 4:
			tag := tags.Index(parts[2])
			if tag < 0 {
				return nil, errors.Errorf("line %d: unknown tag %q", lineNo, parts[2])
			}
			w, err := strconv.ParseFloat(parts[3], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad weight", lineNo)
			}
			weights = append(weights, weight{parts[1], tag, w})
		default:
			return nil, errors.Errorf("line %d: malformed model line %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read model")
	}

	var err error
	if m.Templates, err = LookupTemplates(arch); err != nil {
		return nil, err
	}
	if m.RareTemplates, err = LookupTemplates(rare); err != nil {
		return nil, err
	}
	for _, w := range weights {
		if err := m.SetWeight(w.feat, w.tag, w.w); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WriteText writes the model in the format read by ReadText, features sorted.
func (m *Model) WriteText(w io.Writer, tags TagIndex) error {
	bw := bufio.NewWriter(w)
	arch, rare := m.Arch()
	for _, name := range arch {
		fmt.Fprintf(bw, "A %s\n", name)
	}
	for _, name := range rare {
		fmt.Fprintf(bw, "R %s\n", name)
	}
	for _, feat := range slices.Sorted(maps.Keys(m.Feats)) {
		weights := m.Feats[feat]
		for _, tag := range slices.Sorted(maps.Keys(weights)) {
			if weights[tag] != 0 {
				fmt.Fprintf(bw, "F %s %s %s\n", feat, tags.Tag(tag),
					strconv.FormatFloat(weights[tag], 'g', -1, 64))
			}
		}
	}
	return bw.Flush()
}

type persisted struct {
	NumTags int                           `msgpack:"num_tags"`
	Arch    []string                      `msgpack:"arch"`
	Rare    []string                      `msgpack:"rare,omitempty"`
	Feats   map[string]map[uint32]float64 `msgpack:"feats"`
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (m *Model) EncodeMsgpack(enc *msgpack.Encoder) error {
	p := persisted{NumTags: m.NumTags, Feats: make(map[string]map[uint32]float64, len(m.Feats))}
	p.Arch, p.Rare = m.Arch()
	for feat, weights := range m.Feats {
		ws := make(map[uint32]float64, len(weights))
		for tag, w := range weights {
			id, err := safecast.Conv[uint32](tag)
			if err != nil {
				return errors.Wrapf(err, "tag id of feature %q", feat)
			}
			ws[id] = w
		}
		p.Feats[feat] = ws
	}
	return enc.Encode(p)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (m *Model) DecodeMsgpack(dec *msgpack.Decoder) error {
	var p persisted
	if err := dec.Decode(&p); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	decoded, err := NewModel(p.NumTags, p.Arch, p.Rare)
	if err != nil {
		return err
	}
	for feat, weights := range p.Feats {
		for id, w := range weights {
			tag, err := safecast.Conv[int](id)
			if err != nil {
				return errors.Wrapf(err, "tag id of feature %q", feat)
			}
			if err := decoded.SetWeight(feat, tag, w); err != nil {
				return errors.Wrapf(err, "feature %q", feat)
			}
		}
	}
	*m = *decoded
	return nil
}
