package main

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/dictionary"
	"github.com/teatak/postag/maxent"
	"github.com/teatak/postag/tagger"
	"github.com/teatak/postag/tagset"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] record...",
	Short: "Build a dictionary and tag set from gold tagged files",
	Long: `Build collects word/tag counts and the tag set of the given tagged files and
writes them as tags.txt and dict.txt. With --weights it also packs the text
model weights into a single bundle.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("out-dir", ".", "directory for tags.txt and dict.txt")
	buildCmd.Flags().String("weights", "", "text model weights to bundle")
	buildCmd.Flags().String("bundle", "", "bundle output path (default [model].bundle)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defaults, err := cfg.Record("")
	if err != nil {
		return err
	}

	tags, err := tagset.New(cfg.Tagger.Language)
	if err != nil {
		return err
	}
	dict := dictionary.NewDictionary()
	sentences := 0
	for _, arg := range args {
		records, err := corpus.ParseRecords(arg, defaults)
		if err != nil {
			return err
		}
		for _, r := range records {
			err := r.Read(func(s []corpus.TaggedWord) error {
				words, gold := corpus.Words(s), corpus.Tags(s)
				for _, tag := range gold {
					tags.Add(tag)
				}
				dict.AddSentence(words, gold)
				sentences++
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	tags.Add(tagset.EOSTag)
	if cfg.Tagger.LearnClosedTags {
		tags.LearnClosedTags(dict.TagTypeCounts(), cfg.Tagger.ClosedTagThreshold)
	}
	if cfg.Tagger.ExpansionRules != "" {
		if tags.ExpansionRules, err = tagset.LoadExpansionRules(cfg.Tagger.ExpansionRules); err != nil {
			return err
		}
	}
	klog.Infof("read %s sentences: %s tokens, %s word types, %d tags",
		humanize.Comma(int64(sentences)), humanize.Comma(int64(dict.Total)),
		humanize.Comma(int64(dict.Len())), tags.Size())
	klog.V(1).Infof("tags: %s", tags)

	outDir, _ := cmd.Flags().GetString("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %q", outDir)
	}
	tagsPath := filepath.Join(outDir, "tags.txt")
	f, err := os.Create(tagsPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", tagsPath)
	}
	if err := tags.WriteText(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := dict.Save(filepath.Join(outDir, "dict.txt")); err != nil {
		return err
	}

	weightsPath, _ := cmd.Flags().GetString("weights")
	if weightsPath == "" {
		return nil
	}
	wf, err := os.Open(weightsPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open weights %q", weightsPath)
	}
	defer wf.Close()
	model, err := maxent.ReadText(wf, tags)
	if err != nil {
		return errors.Wrapf(err, "weights %q", weightsPath)
	}
	tg, err := tagger.New(tags, dict, model, tagger.WithRareThreshold(cfg.Tagger.RareThreshold))
	if err != nil {
		return err
	}
	bundlePath, _ := cmd.Flags().GetString("bundle")
	if bundlePath == "" {
		bundlePath = cfg.Model.Bundle
	}
	if bundlePath == "" {
		return errors.New("no bundle path: set --bundle or [model].bundle")
	}
	return tg.SaveBundle(bundlePath)
}
