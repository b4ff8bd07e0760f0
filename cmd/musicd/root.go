package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; left at this default for
// development builds.
var Version = "dev"

var preamble = `musicd ` + Version + `

musicd is a personal music server: it indexes a collection of audio
files and cue sheets into a queryable catalog and serves tracks,
artwork and lyrics over a small HTTP API.`

var rootCmd = &cobra.Command{
	Use:     "musicd",
	Short:   "musicd personal music server",
	Long:    preamble,
	Version: Version,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
