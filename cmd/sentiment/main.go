// Command sentiment serves the feedback classifier and trains its model.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const app = "sentiment"

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "sentiment classifies training feedback and trains the model it serves",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
