package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] record...",
	Short: "Evaluate the tagger on gold tagged files",
	Long: `Eval tags every sentence of the given tagged files and reports accuracy.
A record is a path, optionally prefixed with key=value settings:
  format=TSV,wordColumn=1,tagColumn=3,dev.conllu`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().Int("threads", 0, "sentences tagged at once (overrides [eval].threads)")
	evalCmd.Flags().Bool("verbose", false, "print every sentence and every error")
	evalCmd.Flags().Bool("confusion", false, "print the confusion matrix")
	evalCmd.Flags().String("debug", "", "write <prefix>.test.debug with per-token results")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("threads") {
		cfg.Eval.Threads, _ = flags.GetInt("threads")
	}
	if flags.Changed("verbose") {
		cfg.Eval.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("confusion") {
		cfg.Eval.Confusion, _ = flags.GetBool("confusion")
	}
	if flags.Changed("debug") {
		cfg.Eval.DebugPrefix, _ = flags.GetString("debug")
	}

	tg, err := cfg.OpenTagger()
	if err != nil {
		return err
	}
	defaults, err := cfg.Record("")
	if err != nil {
		return err
	}

	var sentences [][]corpus.TaggedWord
	for _, arg := range args {
		records, err := corpus.ParseRecords(arg, defaults)
		if err != nil {
			return err
		}
		for _, r := range records {
			s, err := r.ReadAll()
			if err != nil {
				return err
			}
			klog.V(1).Infof("read %s sentences from %s", humanize.Comma(int64(len(s))), r)
			sentences = append(sentences, s...)
		}
	}

	out := cmd.OutOrStdout()
	e := &eval.Evaluator{
		Tagger:       tg,
		Threads:      cfg.Eval.Threads,
		Verbose:      cfg.Eval.Verbose,
		Out:          out,
		TagSeparator: cfg.Corpus.TagSeparator,
	}
	if cfg.Eval.DebugPrefix != "" {
		path := cfg.Eval.DebugPrefix + ".test.debug"
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create debug file %q", path)
		}
		defer f.Close()
		e.Debug = f
	}
	if !cfg.Eval.Verbose && isTerminal(os.Stderr) {
		e.Progress = os.Stderr
	}

	report, err := e.Run(cmd.Context(), sentences)
	if err != nil {
		return err
	}
	return printReport(out, report, cfg.Eval.Confusion, tg.Model.NumTags, len(tg.Model.Feats), tg.Dict.Len())
}

func printReport(w io.Writer, report *eval.Report, confusion bool, tags, features, words int) error {
	if _, err := fmt.Fprintf(w, "Model has %d tags, %s features and %s known words.\n",
		tags, humanize.Comma(int64(features)), humanize.Comma(int64(words))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, report.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, report.Table()); err != nil {
		return err
	}
	if confusion {
		_, err := fmt.Fprintln(w, report.Confusion.Render())
		return err
	}
	return nil
}
