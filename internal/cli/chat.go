package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation REPL",
		Long: `Start an interactive session. Each line is processed as a conversation turn.

Commands:
  /entity <text>   show the aggregated context for an entity
  /recent          show the recent-context window
  /export          print the full session export
  /quit            exit`,
		Run: runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	eng, err := newEngine()
	if err != nil {
		exitErr("init engine", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "converse chat (/quit to exit)")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return

		case line == "/recent":
			printJSON(cmd, eng.RecentContext(windowFlag))

		case line == "/export":
			printJSON(cmd, eng.Export())

		case strings.HasPrefix(line, "/entity "):
			text := strings.TrimSpace(strings.TrimPrefix(line, "/entity "))
			ec, err := eng.ContextForEntity(text)
			if err != nil {
				fmt.Fprintf(out, "no context: %v\n", err)
				continue
			}
			printJSON(cmd, ec)

		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(out, "unknown command %q\n", line)

		default:
			turn, err := eng.ProcessTurn(cmd.Context(), line, "")
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: turn degraded: %v\n", err)
			}
			if formatFlag == "text" {
				printTurnText(cmd, turn)
			} else {
				printJSON(cmd, turn)
			}
		}
	}
}

func printJSON(cmd *cobra.Command, data interface{}) {
	b, _ := json.MarshalIndent(data, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
