package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/form"
)

func newFieldsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the questionnaire fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(form.Sections())
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, sec := range form.Sections() {
				fmt.Fprintf(tw, "# %s\n", sec.Title)
				for _, f := range sec.Fields {
					flags := []string{}
					if f.Required {
						flags = append(flags, "required")
					}
					if f.ReadOnly {
						flags = append(flags, "derived")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Kind, strings.Join(flags, ","), f.Label)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the registry as JSON")
	return cmd
}
