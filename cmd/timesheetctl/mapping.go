package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cmlabs-hris/timesheet-sync/internal/app"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/spf13/cobra"
)

var mappingNotes string

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage employee name mappings",
}

var mappingAddCmd = &cobra.Command{
	Use:   "add <alternate-name> <canonical-name>",
	Short: "Map an alternate spelling to an employee and rewrite past rows",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := employee.CreateNameMappingRequest{
			AlternateName: args[0],
			CanonicalName: args[1],
			Source:        employee.MappingSourceCLI,
		}
		if mappingNotes != "" {
			req.Notes = &mappingNotes
		}

		return withApp(cmd.Context(), func(a *app.App) error {
			res, err := a.Service.AddNameMapping(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q -> %q\n", res.Mapping.AlternateName, res.Mapping.CanonicalName)
			fmt.Fprintf(cmd.OutOrStdout(), "timesheets renamed: %d (conflicts %d), leaves renamed: %d (conflicts %d)\n",
				res.TimesheetsRenamed, res.TimesheetConflicts, res.LeavesRenamed, res.LeaveConflicts)
			return nil
		})
	},
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List name mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			mappings, err := a.Service.ListNameMappings(cmd.Context())
			if err != nil {
				return err
			}
			printMappings(cmd.OutOrStdout(), mappings)
			return nil
		})
	},
}

func init() {
	mappingAddCmd.Flags().StringVar(&mappingNotes, "notes", "", "Free-text note stored with the mapping")
	mappingCmd.AddCommand(mappingAddCmd)
	mappingCmd.AddCommand(mappingListCmd)
}

func printMappings(w io.Writer, mappings []employee.NameMappingResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALTERNATE\tCANONICAL\tSOURCE\tACTIVE")
	for _, m := range mappings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", m.AlternateName, m.CanonicalName, m.Source, m.IsActive)
	}
	tw.Flush()
}
