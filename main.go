package main

import (
	"fmt"
	"os"

	"steam-ledger/cmd/export"
	"steam-ledger/cmd/ingest"
	"steam-ledger/cmd/root"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
