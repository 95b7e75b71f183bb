package main

import (
	goflag "flag"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/config"
)

var rootCmd = &cobra.Command{
	Use:   "postag",
	Short: "Part-of-speech tagger with exact higher-order Viterbi decoding",
	Long: `postag tags text with a maxent model, evaluates it against gold
corpora, builds dictionaries and tag sets, and serves tagging over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		switch flag, _ := cmd.Flags().GetString("color"); flag {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		default:
			color.NoColor = !isTerminal(os.Stdout)
		}
		return nil
	},
}

func main() {
	klogFlags := goflag.NewFlagSet("klog", goflag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().String("config", "", "TOML configuration file (defaults apply when empty)")
	rootCmd.PersistentFlags().String("model", "", "model bundle, overrides [model] in the config")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	err := rootCmd.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config, or the defaults when it is not set, and
// applies --model.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model.Bundle = model
	}
	return cfg, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
