package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skellner/converse/pkg/types"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze utterances as one conversation",
		Long:  "Run each argument through the context pipeline as a conversation turn and print the processed turns. Later turns see the context of earlier ones. With no arguments, turns are read from stdin, one per line.",
		Args:  cobra.ArbitraryArgs,
		Run:   runAnalyze,
	}

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	eng, err := newEngine()
	if err != nil {
		exitErr("init engine", err)
	}

	inputs := args
	if len(inputs) == 0 {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				inputs = append(inputs, line)
			}
		}
	}

	var turns []*types.Turn
	for _, text := range inputs {
		turn, err := eng.ProcessTurn(cmd.Context(), text, "")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: turn %d degraded: %v\n", turn.TurnID, err)
		}
		turns = append(turns, turn)
	}

	if formatFlag == "text" {
		for _, turn := range turns {
			printTurnText(cmd, turn)
		}
		return
	}

	b, _ := json.MarshalIndent(turns, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func printTurnText(cmd *cobra.Command, turn *types.Turn) {
	fmt.Fprintf(cmd.OutOrStdout(), "turn %d: %s\n", turn.TurnID, turn.UserInput)
	if turn.Intent != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  intent: %s (%.2f)\n", turn.Intent, turn.IntentConfidence)
	}
	for _, entity := range turn.Entities {
		line := fmt.Sprintf("  %s %q [%s]", entity.Label, entity.Text, entity.CanonicalID)
		if entity.ResolvedDatetime != nil {
			line += " -> " + entity.ResolvedDatetime.Format("2006-01-02 15:04")
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	for pronoun, referent := range turn.ResolvedReferences {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s\n", pronoun, referent)
	}
	if len(turn.ContextUpdates) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  notes: %s\n", strings.Join(turn.ContextUpdates, "; "))
	}
}
