package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memodesk/memodesk/internal/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the memodesk HTTP API",
	Long:  `Start a web server exposing the memo store as a JSON API with a server-sent event stream of memo changes.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from config, 8080)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (default from config, localhost)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.watchConfig()
	srv := server.New(a.cfg, a.svc, a.bus, a.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	host, port := a.cfg.Server.Host, a.cfg.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	err = srv.Start(ctx, addr)
	a.metrics.Flush("server.shutdown", map[string]string{"addr": addr})
	return err
}
