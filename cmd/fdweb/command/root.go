// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command contains the cobra commands of the fdweb.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/freight/pkg/adapter/config"
	"github.com/momeni/freight/pkg/adapter/restful/gin/routes"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "fdweb",
	Short: "Freight dispatch web service",
	Long: `Freight dispatch web service which accepts transport requests,
prices them with the active tariff, allocates drivers and vehicles to
them as shipments without double-booking, and consolidates shipments
into LTL voyages.
Status transitions are recorded in an outbox table and, when Kafka
brokers are configured, are relayed to a Kafka topic by the same
process. Retried POST, PUT, and PATCH requests with an Idempotency-Key
header are answered from Redis when it is configured.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

// loadConfig loads the .env file and then the config file, and
// installs the configured default slog handler.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	c.Log.Install(os.Stderr)
	return c, nil
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()

	var rdb redis.UniversalClient
	if c.Redis.Enabled() {
		client, err := c.Redis.NewClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
	}
	e := c.Gin.NewEngine(rdb, *c.Redis.IdempotencyTTL)
	if err = routes.Register(e, p, c); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	srv := &http.Server{
		Addr:              c.Gin.Addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "serving REST APIs", slog.String("addr", c.Gin.Addr))
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 10*time.Second,
		)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if c.Kafka.Enabled() {
		g.Go(func() error {
			return runRelay(gctx, c, p)
		})
	} else {
		log.Info(ctx, "kafka brokers are not configured, relay is off")
	}
	return g.Wait()
}

// Execute runs the root command and exits with a non-zero code
// in case of errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
