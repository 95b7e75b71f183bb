package corpus

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"k8s.io/klog/v2"
)

// Normalize returns word in Unicode NFC.
func Normalize(word string) string {
	return norm.NFC.String(word)
}

// Read opens the record's file and calls fn for every sentence.
// Reading stops at the first error fn returns.
func (r Record) Read(fn func([]TaggedWord) error) error {
	file, err := os.Open(r.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to open corpus %q", r.Path)
	}
	defer file.Close()
	return r.ReadFrom(file, fn)
}

// ReadFrom is Read over an already open stream.
func (r Record) ReadFrom(in io.Reader, fn func([]TaggedWord) error) error {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	var err error
	switch r.Format {
	case TEXT:
		err = r.readText(scanner, fn)
	case TSV:
		err = r.readTSV(scanner, fn)
	default:
		return errors.Errorf("unknown format %s", r.Format)
	}
	if err != nil {
		return err
	}
	return errors.Wrapf(scanner.Err(), "failed to read corpus %q", r.Path)
}

func (r Record) readText(scanner *bufio.Scanner, fn func([]TaggedWord) error) error {
	lineNo := 0
lines:
	for scanner.Scan() {
		lineNo++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		sentence := make([]TaggedWord, 0, len(tokens))
		for _, token := range tokens {
			i := strings.LastIndex(token, r.TagSeparator)
			if i <= 0 || i+len(r.TagSeparator) == len(token) {
				klog.Warningf("%s:%d: skipping sentence, token %q has no %q tag", r.Path, lineNo, token, r.TagSeparator)
				continue lines
			}
			sentence = append(sentence, TaggedWord{
				Word: Normalize(token[:i]),
				Tag:  token[i+len(r.TagSeparator):],
			})
		}
		if err := fn(sentence); err != nil {
			return err
		}
	}
	return nil
}

func (r Record) readTSV(scanner *bufio.Scanner, fn func([]TaggedWord) error) error {
	need := max(r.WordColumn, r.TagColumn) + 1
	var sentence []TaggedWord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(sentence) > 0 {
				if err := fn(sentence); err != nil {
					return err
				}
				sentence = nil
			}
			continue
		}
		columns := strings.Split(line, "\t")
		if len(columns) < need {
			klog.Warningf("%s:%d: skipping line with %d columns, need %d", r.Path, lineNo, len(columns), need)
			continue
		}
		sentence = append(sentence, TaggedWord{
			Word: Normalize(columns[r.WordColumn]),
			Tag:  columns[r.TagColumn],
		})
	}
	if len(sentence) > 0 {
		return fn(sentence)
	}
	return nil
}

// ReadAll reads every sentence of the record.
func (r Record) ReadAll() ([][]TaggedWord, error) {
	var sentences [][]TaggedWord
	err := r.Read(func(s []TaggedWord) error {
		sentences = append(sentences, s)
		return nil
	})
	return sentences, err
}

// Words returns the words of a tagged sentence.
func Words(sentence []TaggedWord) []string {
	words := make([]string, len(sentence))
	for i, tw := range sentence {
		words[i] = tw.Word
	}
	return words
}

// Tags returns the tags of a tagged sentence.
func Tags(sentence []TaggedWord) []string {
	tags := make([]string, len(sentence))
	for i, tw := range sentence {
		tags[i] = tw.Tag
	}
	return tags
}

// WriteText writes sentence as one TEXT line.
func WriteText(w io.Writer, sentence []TaggedWord, sep string) error {
	var sb strings.Builder
	for i, tw := range sentence {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tw.Word)
		sb.WriteString(sep)
		sb.WriteString(tw.Tag)
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "failed to write sentence")
}
