package main

import (
	"os"

	bridgecmder "github.com/papercomputeco/bridge/cmd/bridge"
)

func main() {
	cmd := bridgecmder.NewBridgeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
