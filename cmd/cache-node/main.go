// Command cache-node runs a single cachechain node process: it joins the
// cluster, replicates the audit-log chain, and serves cache operations over
// the reliable datagram protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"cachechain/core"
	"cachechain/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logrus.New()
	lv, err := logrus.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		lv = logrus.InfoLevel
	}
	logger.SetLevel(lv)
	core.SetLogger(logger)

	node, err := core.NewNode(core.NodeConfig{
		ID:         cfg.Network.NodeID,
		BindAddr:   cfg.Network.ListenAddr,
		LeaderID:   cfg.Network.LeaderID,
		LeaderAddr: cfg.Network.LeaderAddr,
	})
	if err != nil {
		return fmt.Errorf("start node: %w", err)
	}
	defer node.Close()

	logger.WithFields(logrus.Fields{
		"node_id":   node.ID(),
		"instance":  node.InstanceID(),
		"is_leader": node.IsLeader(),
		"addr":      node.LocalAddr().String(),
	}).Info("cache-node: starting")

	stop := make(chan struct{})
	go node.Run(stop)

	var metricsSrv interface{ Shutdown(context.Context) error }
	if cfg.Metrics.Enabled {
		hl := core.NewHealthLogger(node)
		go hl.Run(context.Background(), 10*time.Second)
		srv := hl.StartServer(cfg.Metrics.ListenAddr)
		metricsSrv = srv
		logger.WithField("addr", cfg.Metrics.ListenAddr).Info("cache-node: metrics listening")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	close(stop)
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}
	logger.Info("cache-node: stopped")
	return nil
}
