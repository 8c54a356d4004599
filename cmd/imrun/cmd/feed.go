package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mike-fabian/m17n-lib-sub004/internal/imdb"
	"github.com/mike-fabian/m17n-lib-sub004/pkg/im"
	"github.com/spf13/cobra"
)

var (
	feedKeys     []string
	feedLanguage string
	feedCharset  string
)

var feedCmd = &cobra.Command{
	Use:   "feed <file> [keys...]",
	Short: "Feed keys through an input context and print its observables",
	Long: `Load an input method description, create an input context, feed the
given key symbols through it one at a time, and print the context's
observables (preedit, cursor, candidates, committed text) after each
key.

Keys are given as key symbol names: single characters ("a", "="), or
named keys ("Return", "C-x", "M-Delete").

Examples:
  # Feed three keys through a kana input method
  imrun feed testdata/descriptions/ja-kana.mim k a n

  # The same, with repeatable --key flags
  imrun feed testdata/descriptions/ja-kana.mim -k k -k a -k n`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringSliceVarP(&feedKeys, "key", "k", nil, "key to feed (repeatable, appended after positional keys)")
	feedCmd.Flags().StringVar(&feedLanguage, "language", "t", "language tag the description is registered under")
	feedCmd.Flags().StringVar(&feedCharset, "charset", "", "filter candidates against this charset")
}

func runFeed(cmd *cobra.Command, args []string) error {
	file := args[0]
	keys := append(append([]string(nil), args[1:]...), feedKeys...)
	if len(keys) == 0 {
		return fmt.Errorf("no keys to feed; pass them as arguments or with --key")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", file, err)
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	store := imdb.NewMemStore()
	tag := imdb.Tag{InputMethod: "input-method", Language: feedLanguage, Name: name}
	if err := store.Register(tag, string(data), file); err != nil {
		return fmt.Errorf("registering description: %w", err)
	}

	engine := im.NewEngine(store, nil)
	method, err := engine.OpenIM(feedLanguage, name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("load failed")
	}
	ic := method.CreateIC()
	if feedCharset != "" {
		ic.SetCandidatesCharset(feedCharset)
	}

	for _, key := range keys {
		code := ic.Filter(key)
		obs := ic.Observe()
		fmt.Printf("key %-10s filter=%d preedit=%q cursor=%d status=%q",
			key, code, obs.Preedit, obs.CursorPos, obs.Status)
		if len(obs.CandidateItems) > 0 {
			fmt.Printf(" candidates=%v index=%d", obs.CandidateItems, obs.CandidateIndex)
		}
		if code == 0 {
			text, lookupCode := ic.Lookup()
			if lookupCode < 0 {
				fmt.Printf(" unhandled")
			} else if text != "" {
				fmt.Printf(" committed=%q", text)
			}
		}
		fmt.Println()
	}
	return nil
}
