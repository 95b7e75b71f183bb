// Package eval measures tagging accuracy against gold-standard sentences.
package eval

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/tagger"
)

// Evaluator tags gold sentences and compares the result with the gold tags.
type Evaluator struct {
	Tagger *tagger.Tagger
	// Threads bounds the sentences tagged at once; zero or less uses GOMAXPROCS.
	Threads int
	// Verbose prints every tagged sentence to Out and logs every error.
	Verbose bool
	Out     io.Writer
	// Debug, if set, receives one line per sentence: word<sep>guess[|gold][*].
	Debug        io.Writer
	TagSeparator string
	// Progress, if set, shows a progress bar.
	Progress io.Writer
}

type result struct {
	words   []string
	gold    []string
	guess   []string
	unknown []bool
}

// Run tags sentences in parallel and accumulates the report in input order.
func (e *Evaluator) Run(ctx context.Context, sentences [][]corpus.TaggedWord) (*Report, error) {
	threads := e.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	var bar *progressbar.ProgressBar
	if e.Progress != nil {
		bar = progressbar.NewOptions(len(sentences),
			progressbar.OptionSetDescription("tagging"),
			progressbar.OptionSetWriter(e.Progress),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("sentences"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
		)
	}

	results := make([]result, len(sentences))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(threads, len(sentences))))
	for i, sentence := range sentences {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			words := corpus.Words(sentence)
			tagged, err := e.Tagger.TagSentence(words)
			if err != nil {
				return errors.Wrapf(err, "sentence %d", i+1)
			}
			r := result{
				words:   words,
				gold:    corpus.Tags(sentence),
				guess:   corpus.Tags(tagged),
				unknown: make([]bool, len(words)),
			}
			for j, w := range words {
				r.unknown[j] = e.Tagger.IsUnknown(w)
			}
			results[i] = r
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	report := &Report{Confusion: NewConfusionMatrix()}
	for _, r := range results {
		if err := e.process(report, r); err != nil {
			return nil, err
		}
	}
	klog.V(1).Infof("eval: %d sentences, %d tokens, accuracy %.4f", report.Sentences, report.Tokens(), report.Accuracy())
	return report, nil
}

func (e *Evaluator) process(report *Report, r result) error {
	report.Sentences++
	sep := e.TagSeparator
	if sep == "" {
		sep = corpus.DefaultTagSeparator
	}

	var debug, verbose strings.Builder
	right, wrong, wrongUnknown := 0, 0, 0
	for i, w := range r.words {
		guess, gold := r.guess[i], r.gold[i]
		report.Confusion.Add(guess, gold)
		if r.unknown[i] {
			report.Unknown++
		}
		token := w + sep + guess
		debug.WriteString(token)
		if guess == gold {
			right++
			verbose.WriteString(token)
		} else {
			wrong++
			debug.WriteString("|" + gold)
			verbose.WriteString(color.RedString("%s", token))
			if r.unknown[i] {
				wrongUnknown++
				debug.WriteString("*")
			}
			if e.Verbose {
				prefix := ""
				if r.unknown[i] {
					prefix = "Unk"
				}
				klog.Infof("%sWord: %s; correct: %s; guessed: %s", prefix, w, gold, guess)
			}
		}
		debug.WriteByte(' ')
		verbose.WriteByte(' ')
	}

	report.Right += right
	report.Wrong += wrong
	report.WrongUnknown += wrongUnknown
	if wrong == 0 {
		report.CorrectSentences++
	}

	if e.Debug != nil {
		if _, err := fmt.Fprintln(e.Debug, debug.String()); err != nil {
			return errors.Wrap(err, "failed to write debug output")
		}
	}
	if e.Verbose {
		klog.Infof("Sentence number: %d; length %d; correct: %d; wrong: %d; unknown wrong: %d",
			report.Sentences, len(r.words), right, wrong, wrongUnknown)
		out := e.Out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintln(out, verbose.String())
	}
	return nil
}
