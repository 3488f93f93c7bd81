package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the fxplan CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fxplan version %s\n", version)
		fmt.Println("Multi-timeframe FX signal planner and trade journal")
		fmt.Println("https://github.com/rustyeddy/fxplan")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
