package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/odds-chat/internal/intent"
	"github.com/sells-group/odds-chat/internal/resolver"
)

// explainer reports which resolution stage matched.
type explainer interface {
	Explain(ctx context.Context, text string) (string, resolver.Step)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <message>",
	Short: "Show the intent and sport key a message resolves to",
	Long:  "Classifies the message and resolves its sport without fetching scores or odds or calling the LLM.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		core := initCore(nil)
		writeResolution(cmd.Context(), cmd.OutOrStdout(), core.Resolver, strings.Join(args, " "))
		return nil
	},
}

// writeResolution classifies text, resolves its sport, and prints both.
func writeResolution(ctx context.Context, out io.Writer, r explainer, text string) {
	in := intent.Classify(text)
	key, step := "-", resolver.StepNone
	if in.Kind.NeedsSport() {
		if k, s := r.Explain(ctx, text); k != "" {
			key, step = k, s
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "INTENT\t%s\n", in.Kind)
	_, _ = fmt.Fprintf(w, "SPORT\t%s\n", key)
	_, _ = fmt.Fprintf(w, "STEP\t%s\n", step)
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
