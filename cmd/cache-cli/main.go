// Command cache-cli is the operator-facing CLI for starting a node and
// issuing cache-client requests against it.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"cachechain/cmd/cli"
)

func main() {
	root := &cobra.Command{Use: "cache-cli"}
	cli.RegisterRoutes(root)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
