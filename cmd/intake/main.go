package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theflipapp/intake/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:   "intake",
		Short: "Intake classifies chat messages into maintenance records",
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newEvaluateCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetInfo())
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
