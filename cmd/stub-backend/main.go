// Package main runs the in-memory skills backend for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/skillmonitor/internal/testbackend"
	"github.com/okian/skillmonitor/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var (
	addr    string
	delay   time.Duration
	noUsers bool
	failing []string
	broken  []string
)

var rootCmd = &cobra.Command{
	Use:   "stub-backend",
	Short: "In-memory skills analysis API",
	Long: `Serves /api/dashboard-data, /api/skills-lista, /api/usuarios and
/api/registrar-usuario from fixtures. Registered users live until the process exits.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":5000", "Listen address")
	rootCmd.Flags().DurationVar(&delay, "delay", 0, "Delay every answer by this much")
	rootCmd.Flags().BoolVar(&noUsers, "no-users", false, "Start with an empty user directory")
	rootCmd.Flags().StringSliceVar(&failing, "fail", nil, "Endpoints answering success:false")
	rootCmd.Flags().StringSliceVar(&broken, "break", nil, "Endpoints answering without a JSON envelope")
}

func newServer(log logger.Logger) *testbackend.Server {
	opts := []testbackend.Option{testbackend.WithDelay(delay), testbackend.WithLogger(log)}
	if noUsers {
		opts = append(opts, testbackend.WithoutUsers())
	}
	s := testbackend.New(opts...)
	for _, p := range failing {
		s.SetMode(p, testbackend.ModeBackendError)
	}
	for _, p := range broken {
		s.SetMode(p, testbackend.ModeTransportError)
	}
	return s
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Named("stub-backend")

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(log).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting stub backend", logger.String("addr", addr), logger.Duration("delay", delay))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
