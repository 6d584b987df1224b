package cli

// -----------------------------------------------------------------------------
// node.go - cache node CLI
// -----------------------------------------------------------------------------
// Commands after RegisterRoutes(root):
//   node start  - boot a node and block until interrupted
//   node status - print chain height and peer count
//   node stop   - stop a node started by this same process; a node running
//                 in another process is not reached (prints "not running")
// -----------------------------------------------------------------------------

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cachechain/core"
)

var (
	nodeInstance *core.Node
	nodeMu       sync.RWMutex
	nodeStop     chan struct{}
)

func nodeInit(cmd *cobra.Command, _ []string) error {
	if nodeInstance != nil {
		return nil
	}
	_ = godotenv.Load()

	lv, err := logrus.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		lv = logrus.InfoLevel
	}
	logrus.SetLevel(lv)

	n, err := core.NewNode(core.NodeConfig{
		ID:         uint16(viper.GetUint("network.node_id")),
		BindAddr:   viper.GetString("network.listen_addr"),
		LeaderID:   uint16(viper.GetUint("network.leader_id")),
		LeaderAddr: viper.GetString("network.leader_addr"),
	})
	if err != nil {
		return err
	}
	nodeMu.Lock()
	nodeInstance = n
	nodeMu.Unlock()
	return nil
}

func nodeStart(cmd *cobra.Command, _ []string) error {
	nodeMu.RLock()
	n := nodeInstance
	nodeMu.RUnlock()
	if n == nil {
		return fmt.Errorf("not initialised")
	}
	nodeStop = make(chan struct{})
	go n.Run(nodeStop)
	fmt.Fprintf(cmd.OutOrStdout(), "node %d started at %s\n", n.ID(), n.LocalAddr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	close(nodeStop)
	_ = n.Close()
	return nil
}

func nodeStop_(cmd *cobra.Command, _ []string) error {
	if nodeStop == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "not running")
		return nil
	}
	close(nodeStop)
	nodeMu.RLock()
	n := nodeInstance
	nodeMu.RUnlock()
	if n != nil {
		_ = n.Close()
	}
	fmt.Fprintln(cmd.OutOrStdout(), "stopped")
	return nil
}

func nodeStatus(cmd *cobra.Command, _ []string) error {
	nodeMu.RLock()
	n := nodeInstance
	nodeMu.RUnlock()
	if n == nil {
		return fmt.Errorf("not running")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "height=%d peers=%d pending_tx=%d leader=%v\n",
		n.Chain().Height(), n.PeerCount(), n.PendingTransactionCount(), n.IsLeader())
	return nil
}

var nodeRootCmd = &cobra.Command{Use: "node", Short: "Cache node lifecycle", PersistentPreRunE: nodeInit}

var nodeStartCmd = &cobra.Command{Use: "start", Short: "Start the node", Args: cobra.NoArgs, RunE: nodeStart}
var nodeStopCmd = &cobra.Command{Use: "stop", Short: "Stop the node", Args: cobra.NoArgs, RunE: nodeStop_}
var nodeStatusCmd = &cobra.Command{Use: "status", Short: "Print node status", Args: cobra.NoArgs, RunE: nodeStatus}

func init() { nodeRootCmd.AddCommand(nodeStartCmd, nodeStopCmd, nodeStatusCmd) }

// NodeCmd exposes node lifecycle commands.
var NodeCmd = nodeRootCmd
