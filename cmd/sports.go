package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/odds-chat/internal/model"
)

var (
	sportsFormat  string
	sportsRefresh bool
)

var sportsCmd = &cobra.Command{
	Use:   "sports",
	Short: "List the sports catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		core := initCore(nil)
		sports := core.Catalog.Sports(cmd.Context(), sportsRefresh)
		return formatSports(cmd.OutOrStdout(), sports, sportsFormat)
	},
}

// formatSports writes sports to out as a table, JSON, or YAML.
func formatSports(out io.Writer, sports []model.Sport, format string) error {
	if sports == nil {
		sports = []model.Sport{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(sports), "sports: encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(sports); err != nil {
			return eris.Wrap(err, "sports: encode yaml")
		}
		return eris.Wrap(enc.Close(), "sports: close yaml encoder")
	case "table", "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tGROUP\tTITLE\tACTIVE")
		_, _ = fmt.Fprintln(w, "---\t-----\t-----\t------")
		for _, s := range sports {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", s.Key, s.Group, s.Title, s.Active)
		}
		return eris.Wrap(w.Flush(), "sports: flush table")
	default:
		return eris.Errorf("sports: unknown format %q", format)
	}
}

func init() {
	sportsCmd.Flags().StringVar(&sportsFormat, "format", "table", "output format: table, json, or yaml")
	sportsCmd.Flags().BoolVar(&sportsRefresh, "refresh", false, "bypass the catalog cache")
	rootCmd.AddCommand(sportsCmd)
}
