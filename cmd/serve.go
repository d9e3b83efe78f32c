package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/logger"
	"github.com/spigell/loan-eligibility/internal/metrics"
	"github.com/spigell/loan-eligibility/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction API for the web form",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the loan-eligibility server", zap.String("version", version))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(reg)
	if err != nil {
		logger.Fatal("registering metrics", zap.Error(err))
	}

	res, err := newResolver(ctx, config.AI, m, logger)
	if err != nil {
		logger.Fatal("preparing the resolver", zap.Error(err))
	}

	srv := server.New(res, reg, logger)
	if err := srv.ListenAndServe(ctx, config.Server.Addr, config.Server.ShutdownTimeout); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}
}
