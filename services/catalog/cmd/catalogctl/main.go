// Command catalogctl runs maintenance tasks against the catalog database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Catalog maintenance CLI",
	Long:          "catalogctl applies migrations, seeds demo data and creates admin accounts using the catalog service configuration.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(newCreateAdminCmd())
}
