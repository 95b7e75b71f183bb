// Package corpus reads and writes tagged sentences.
package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TaggedWord is a word with its part-of-speech tag.
type TaggedWord struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// Format is the layout of a tagged file.
type Format int

const (
	// TEXT holds one sentence per line as word<sep>tag tokens.
	TEXT Format = iota
	// TSV holds one token per line in tab separated columns; a blank line ends
	// a sentence.
	TSV
)

func (f Format) String() string {
	switch f {
	case TEXT:
		return "TEXT"
	case TSV:
		return "TSV"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case "TEXT":
		return TEXT, nil
	case "TSV":
		return TSV, nil
	case "TREES":
		return 0, errors.New("format TREES is not supported")
	}
	return 0, errors.Errorf("unknown format %q", s)
}

// DefaultTagSeparator separates word and tag in TEXT files.
const DefaultTagSeparator = "_"

// Record describes one tagged file and how to read it.
type Record struct {
	Path         string
	Format       Format
	TagSeparator string
	// Zero-based TSV columns.
	WordColumn int
	TagColumn  int
}

// DefaultRecord returns the record settings used when a description leaves
// them out.
func DefaultRecord() Record {
	return Record{Format: TEXT, TagSeparator: DefaultTagSeparator, WordColumn: 0, TagColumn: 1}
}

func (r Record) String() string {
	s := fmt.Sprintf("format=%s,tagSeparator=%s", r.Format, r.TagSeparator)
	if r.Format == TSV {
		s += fmt.Sprintf(",wordColumn=%d,tagColumn=%d", r.WordColumn, r.TagColumn)
	}
	return s + "," + r.Path
}

// ParseRecord parses "key=value,...,path". Keys are format, encoding,
// tagSeparator, wordColumn and tagColumn, matched case-insensitively;
// settings not given come from defaults. A bare path uses defaults as is.
func ParseRecord(description string, defaults Record) (Record, error) {
	pieces := strings.Split(description, ",")
	r := defaults
	r.Path = pieces[len(pieces)-1]
	if r.Path == "" {
		return Record{}, errors.Errorf("record %q has no file", description)
	}
	for _, arg := range pieces[:len(pieces)-1] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Record{}, errors.Errorf("record argument %q has no '='", arg)
		}
		var err error
		switch strings.ToLower(key) {
		case "format":
			r.Format, err = ParseFormat(value)
		case "encoding":
			if e := strings.ToLower(value); e != "utf-8" && e != "utf8" {
				err = errors.Errorf("encoding %q is not supported, only UTF-8", value)
			}
		case "tagseparator":
			if value == "" {
				err = errors.New("empty tag separator")
			}
			r.TagSeparator = value
		case "wordcolumn":
			r.WordColumn, err = parseColumn(value)
		case "tagcolumn":
			r.TagColumn, err = parseColumn(value)
		default:
			err = errors.Errorf("unknown record argument %q", key)
		}
		if err != nil {
			return Record{}, errors.Wrapf(err, "record %q", description)
		}
	}
	return r, nil
}

func parseColumn(s string) (int, error) {
	c, err := strconv.Atoi(s)
	if err != nil || c < 0 {
		return 0, errors.Errorf("bad column %q", s)
	}
	return c, nil
}

// ParseRecords parses several records separated by ";".
func ParseRecords(description string, defaults Record) ([]Record, error) {
	var records []Record
	for _, piece := range strings.Split(description, ";") {
		if piece = strings.TrimSpace(piece); piece == "" {
			continue
		}
		r, err := ParseRecord(piece, defaults)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
