package cli

// -----------------------------------------------------------------------------
// client.go - cache client CLI
// -----------------------------------------------------------------------------
// Commands after RegisterRoutes(root):
//   client set <name> <value> - store a blob on the configured remote node
//   client get <name>         - fetch a blob from the configured remote node
// -----------------------------------------------------------------------------

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cachechain/core"
)

func newClient() (*core.Client, error) {
	_ = godotenv.Load()
	remote := viper.GetString("network.leader_addr")
	return core.NewClient(0, remote, core.AckTimeout*time.Duration(core.MaxRetries+1))
}

func clientSet(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if ok := c.SetData(args[0], []byte(args[1])); !ok {
		return fmt.Errorf("set %q: no acknowledgement after %d attempts", args[0], core.MaxRetries+1)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "set %q (%d bytes)\n", args[0], len(args[1]))
	return nil
}

func clientGet(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	data, ok := c.GetData(args[0])
	if !ok {
		return fmt.Errorf("get %q: not found or no reply", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

var clientRootCmd = &cobra.Command{Use: "client", Short: "Cache client operations"}

var clientSetCmd = &cobra.Command{Use: "set <name> <value>", Short: "Store a blob", Args: cobra.ExactArgs(2), RunE: clientSet}
var clientGetCmd = &cobra.Command{Use: "get <name>", Short: "Fetch a blob", Args: cobra.ExactArgs(1), RunE: clientGet}

func init() { clientRootCmd.AddCommand(clientSetCmd, clientGetCmd) }

// ClientCmd exposes cache client commands.
var ClientCmd = clientRootCmd
