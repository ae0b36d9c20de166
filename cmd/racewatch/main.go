// racewatch streams a Race Monitor timing feed and renders the live
// standings in the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped by the build.
var Version = "dev"

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "racewatch",
	Short:         "Live Race Monitor timing client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the JSON configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("racewatch: " + err.Error() + "\n")
		os.Exit(1)
	}
}
