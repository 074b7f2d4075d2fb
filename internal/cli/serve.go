package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"github.com/ppiankov/truthslies/internal/engine"
	"github.com/ppiankov/truthslies/internal/generation"
	"github.com/ppiankov/truthslies/internal/llm"
)

var (
	serveListen     string
	serveHTTPListen string
)

// serveCmd hosts the in-process engine as a generation service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the statement generation service",
	Long: `Serve the local generation engine over gRPC (JSON codec) and,
optionally, over HTTP at POST /v1/generate.

When llm.provider is configured, lies are fabricated by the LLM.

Example:
  truthslies serve --listen :50051
  truthslies serve --listen :50051 --http-listen :8080`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlag("service.listen_addr", cmd.Flags().Lookup("listen"))
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "gRPC listen address (default from service.listen_addr)")
	serveCmd.Flags().StringVar(&serveHTTPListen, "http-listen", "", "also serve HTTP JSON on this address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	var opts []engine.Option
	if cfg.LLM.Provider != "" {
		fab, err := llm.NewFabricator(llm.ConfigFromModel(cfg.LLM, cfg.Service))
		if err != nil {
			return fmt.Errorf("create LLM fabricator: %w", err)
		}
		opts = append(opts, engine.WithFabricator(fab))
	}
	backend := generation.NewLocalClient(cfg.Engine, opts...)

	lis, err := net.Listen("tcp", cfg.Service.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Service.ListenAddr, err)
	}

	srv := grpc.NewServer()
	generation.Register(srv, generation.NewServer(backend, logger))

	errCh := make(chan error, 2)
	go func() {
		fmt.Fprintf(os.Stderr, "✓ gRPC generation service listening on %s\n", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	var httpSrv *http.Server
	if serveHTTPListen != "" {
		httpSrv = &http.Server{
			Addr:              serveHTTPListen,
			Handler:           generation.NewHTTPHandler(backend, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			fmt.Fprintf(os.Stderr, "✓ HTTP generation service listening on %s\n", serveHTTPListen)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-cmd.Context().Done():
		fmt.Fprintf(os.Stderr, "Shutting down...\n")
	case err := <-errCh:
		srv.Stop()
		return fmt.Errorf("serve: %w", err)
	}

	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}
	srv.GracefulStop()
	return nil
}
