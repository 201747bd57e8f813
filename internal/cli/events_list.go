package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/flags"
)

var eventsListQuiet bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the event catalogue",
	Long: `Inspect which event names adeconsole formats specially.

Events not listed here still produce a line: their JSON text at info level.

Examples:
  # List every event name and prefix family
  adeconsole events list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List event names with dedicated formatting",
	Long: `List the event names and prefix families known to this build.

Names are sorted within each stream. Prefix families are listed in match
order; an exact name always wins over a prefix.

Examples:
  adeconsole events list
  adeconsole events list --quiet | grep summary

Output:
  A section per stream:
    ----------------------------------------
    BUILD EVENTS (7)
    ----------------------------------------
    build.complete
    ...
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := []*console.Table{console.BuildTable(), console.RunTable()}
		w := cmd.OutOrStdout()
		for _, t := range tables {
			if eventsListQuiet {
				printNames(w, t)
			} else {
				printTable(w, t)
			}
		}
		return nil
	},
}

func printNames(w io.Writer, t *console.Table) {
	for _, name := range t.Names() {
		fmt.Fprintln(w, name)
	}
	for _, p := range t.Prefixes() {
		fmt.Fprintln(w, p+"*")
	}
}

func printTable(w io.Writer, t *console.Table) {
	bold := color.New(color.Bold)
	names := t.Names()

	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "%s EVENTS (%d)\n", strings.ToUpper(string(t.Origin())), len(names))
	fmt.Fprintln(w, "----------------------------------------")
	for _, name := range names {
		fmt.Fprintln(w, name)
	}

	if prefixes := t.Prefixes(); len(prefixes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Prefix families (in match order):")
		for _, p := range prefixes {
			fmt.Fprintf(w, "  %s*\n", p)
		}
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsListCmd.Flags().BoolVarP(&eventsListQuiet, flags.FlagQuiet, "q", false, "Only print event names")
}
