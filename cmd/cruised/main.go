// Command cruised is the container manager daemon: it owns the registry,
// the on-disk store, and the runtime adapter, and exposes their
// orchestration over gRPC.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/willdeuschle/cruise/pkg/api"
	"github.com/willdeuschle/cruise/pkg/log"
	"github.com/willdeuschle/cruise/pkg/manager"
	"github.com/willdeuschle/cruise/pkg/metrics"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cruised",
	Short: "cruise container manager daemon",
}

var debug bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "v", false, "raise log verbosity")
	cobra.OnInitialize(initLogging)
	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	log.Init(log.Config{Level: level})
}

var (
	port        int
	libRoot     string
	runtimePath string
	metricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the daemon in the foreground",
	RunE:  runDaemon,
}

func init() {
	runCmd.Flags().IntVar(&port, "port", 50051, "TCP port to listen on")
	runCmd.Flags().StringVar(&libRoot, "lib_root", "/var/lib/cruise", "root of the on-disk store")
	runCmd.Flags().StringVar(&runtimePath, "runtime_path", "/usr/bin/runc", "OCI runtime binary path")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "127.0.0.1:9090", "Prometheus metrics listen address")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("cruised")

	mgr, err := manager.New(manager.Config{RootDir: libRoot, RuntimePath: runtimePath})
	if err != nil {
		return fmt.Errorf("failed to construct manager: %w", err)
	}

	collector := metrics.NewCollector(mgr, 15*time.Second)
	go collector.Run()

	metricsServer := &http.Server{Addr: metricsAddr, Handler: metrics.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	srv := api.NewServer(mgr)
	addr := fmt.Sprintf("[::1]:%d", port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("rpc server failed: %w", err)
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	collector.Stop()
	srv.Stop()
	_ = metricsServer.Close()
	return nil
}
