// Package cli implements the converse CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skellner/converse/internal/engine"
	"github.com/skellner/converse/internal/nlp"
)

var (
	modelFlag   string
	remoteFlag  string
	lexiconFlag string
	windowFlag  int
	formatFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "converse",
	Short: "Conversational context tracking for productivity assistants",
	Long:  "Converse tracks entities, references, intents, and temporal expressions across multi-turn conversations. Text in, structured context out.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "builtin", "Annotation backend: builtin or remote")
	RootCmd.PersistentFlags().StringVar(&remoteFlag, "remote-url", "http://localhost:9090", "Remote annotation service URL")
	RootCmd.PersistentFlags().StringVarP(&lexiconFlag, "lexicon", "l", "", "YAML lexicon overrides for the builtin backend")
	RootCmd.PersistentFlags().IntVarP(&windowFlag, "window", "w", 5, "Recent-context window in turns")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func newEngine() (*engine.ContextEngine, error) {
	tagger, _, err := nlp.NewTagger(nlp.Options{
		Model:       modelFlag,
		RemoteURL:   remoteFlag,
		LexiconPath: lexiconFlag,
	})
	if err != nil {
		return nil, err
	}
	return engine.New(tagger, engine.WithWindowSize(windowFlag)), nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
