package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mipimipi/musicd/internal/config"
)

var validateCfg *config.Cfg

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify musicd configuration",
	Long:  "Check that musicd's flags describe a complete, usable configuration without starting the server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateCfg.Validate(); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		fmt.Println("configuration OK")
	},
}

func init() {
	validateCfg = config.Bind(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
