// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/momeni/freight/pkg/adapter/config"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay the outbox events to Kafka without serving REST APIs",
	Long: `Relay the outbox events to Kafka without serving REST APIs.
Events are claimed in batches, so more than one relay process may run
concurrently. The fdweb command runs the same relay next to the web
server, hence, this command is useful for scaling them separately.`,
	RunE: startRelay,
	Args: cobra.NoArgs,
}

func startRelay(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	if !c.Kafka.Enabled() {
		return errors.New("kafka brokers are not configured")
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	return runRelay(ctx, c, p)
}

func runRelay(ctx context.Context, c *config.Config, p repo.Pool) error {
	pub := c.Kafka.NewPublisher()
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn(ctx, "closing kafka writer", log.Err("err", err))
		}
	}()
	relay, err := c.Usecases.NewRelay(p, pub)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	log.Info(
		ctx, "relaying outbox events",
		log.Valuer("interval", c.Usecases.Relay.Interval),
		slog.Int("batch", *c.Usecases.Relay.BatchSize),
		slog.String("topic", c.Kafka.Topic),
	)
	return relay.Run(ctx)
}

func init() {
	rootCmd.AddCommand(relayCmd)
}
