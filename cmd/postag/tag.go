package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/tagger"
	"github.com/teatak/postag/tokenizer"
)

var tagCmd = &cobra.Command{
	Use:   "tag [flags] [text...]",
	Short: "Tag raw text",
	Long: `Tag tokenizes and tags the text given as arguments, the lines of --input,
or standard input, one sentence per line.`,
	RunE: runTag,
}

func init() {
	tagCmd.Flags().String("input", "", "input file, one sentence per line")
	tagCmd.Flags().String("output", "", "output file (default standard output)")
	tagCmd.Flags().Bool("columns", false, "print one aligned word/tag pair per line")
	tagCmd.Flags().String("separator", corpus.DefaultTagSeparator, "separator between word and tag")
	tagCmd.Flags().Int("threads", 0, "sentences tagged at once in --input mode (0 = all CPUs)")
}

// lineTagger turns one line of raw text into a tagged sentence. With reuse
// set, tokens written as word<separator>tag keep their tag.
type lineTagger struct {
	tg        *tagger.Tagger
	reuse     bool
	separator string
}

func (lt lineTagger) split(line string) (words, tags []string) {
	if !lt.reuse {
		return tokenizer.Tokenize(line), nil
	}
	for _, field := range strings.Fields(line) {
		if i := strings.LastIndex(field, lt.separator); i > 0 && i+len(lt.separator) < len(field) {
			words = append(words, field[:i])
			tags = append(tags, field[i+len(lt.separator):])
			continue
		}
		for _, token := range tokenizer.Tokenize(field) {
			words = append(words, token)
			tags = append(tags, "")
		}
	}
	return words, tags
}

func (lt lineTagger) tag(words, tags []string) ([]corpus.TaggedWord, error) {
	if tags != nil {
		return lt.tg.TagSentenceReusing(words, tags)
	}
	return lt.tg.TagSentence(words)
}

type tagOutput struct {
	columns   bool
	separator string
}

func (o tagOutput) format(tagged []corpus.TaggedWord) string {
	if o.columns {
		return formatColumns(tagged)
	}
	var sb strings.Builder
	for i, tw := range tagged {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tw.Word + o.separator + tw.Tag)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// formatColumns pads words to a common display width so tags line up, also
// for wide CJK characters.
func formatColumns(tagged []corpus.TaggedWord) string {
	width := 0
	for _, tw := range tagged {
		width = max(width, runewidth.StringWidth(tw.Word))
	}
	var sb strings.Builder
	for _, tw := range tagged {
		sb.WriteString(runewidth.FillRight(tw.Word, width))
		sb.WriteString("  ")
		sb.WriteString(tw.Tag)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func runTag(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tg, err := cfg.OpenTagger()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	columns, _ := flags.GetBool("columns")
	separator, _ := flags.GetString("separator")
	out := tagOutput{columns: columns, separator: separator}
	lt := lineTagger{tg: tg, reuse: cfg.Tagger.ReuseTags, separator: cfg.Corpus.TagSeparator}
	inputPath, _ := flags.GetString("input")
	outputPath, _ := flags.GetString("output")
	threads, _ := flags.GetInt("threads")

	w := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrapf(err, "failed to create output %q", outputPath)
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		defer bw.Flush()
		w = bw
	}

	switch {
	case len(args) > 0:
		tagged, err := lt.tag(lt.split(strings.Join(args, " ")))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out.format(tagged))
		return err

	case inputPath != "":
		return tagFile(cmd.Context(), lt, inputPath, w, out, threads)

	default:
		return tagInteractive(lt, cmd.InOrStdin(), w, out, isTerminal(os.Stdin))
	}
}

// tagInteractive tags lines from in as they arrive, prompting when in is a
// terminal.
func tagInteractive(lt lineTagger, in io.Reader, w io.Writer, out tagOutput, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(os.Stderr, "> ")
		}
		if !scanner.Scan() {
			break
		}
		words, tags := lt.split(scanner.Text())
		if len(words) == 0 {
			continue
		}
		tagged, err := lt.tag(words, tags)
		if err != nil {
			klog.Errorf("%v", err)
			continue
		}
		if _, err := io.WriteString(w, out.format(tagged)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// tagFile tags a whole file in parallel and writes the sentences back in
// input order.
func tagFile(ctx context.Context, lt lineTagger, path string, w io.Writer, out tagOutput, threads int) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read input %q", path)
	}
	type line struct{ words, tags []string }
	var lines []line
	for _, text := range strings.Split(string(content), "\n") {
		if words, tags := lt.split(text); len(words) > 0 {
			lines = append(lines, line{words, tags})
		}
	}
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	results := make([]string, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, l := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tagged, err := lt.tag(l.words, l.tags)
			if err != nil {
				return errors.Wrapf(err, "%s: sentence %d", path, i+1)
			}
			results[i] = out.format(tagged)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := io.WriteString(w, r); err != nil {
			return err
		}
	}
	klog.Infof("tagged %s sentences from %s", humanize.Comma(int64(len(lines))), path)
	return nil
}
