package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newstrnt/admin-authz/internal/rbac"
)

func init() { //nolint: gochecknoinits
	rolesCmd.Flags().BoolVar(&rolesJSON, "json", false, "print the role table as JSON")

	rootCmd.AddCommand(rolesCmd)
}

var (
	rolesJSON bool

	rolesCmd = &cobra.Command{
		Use:   "roles",
		Short: "Print the built-in role table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roles := rbac.Default().Roles()

			if rolesJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(roles)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd

			fmt.Fprintln(w, "ROLE\tLEVEL\tDASHBOARD\tMANAGES\tPERMISSIONS")

			for _, r := range roles {
				manages := make([]string, len(r.ManageableRoles))
				for i, m := range r.ManageableRoles {
					manages[i] = string(m)
				}

				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\n",
					r.Name, r.Level, r.DashboardPath, strings.Join(manages, ","), len(r.Permissions))
			}

			return w.Flush()
		},
	}
)
