// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"strings"

	"github.com/momeni/freight/pkg/adapter/messaging/kafka"
)

// Kafka contains the settings of the topic which receives the outbox
// events. Without any broker, the outbox relay is not started.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Enabled reports if some broker is configured.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

// ValidateAndNormalize fills the default topic name.
func (k *Kafka) ValidateAndNormalize() error {
	for _, b := range k.Brokers {
		if strings.TrimSpace(b) == "" {
			return errors.New("empty broker address")
		}
	}
	if k.Topic == "" {
		k.Topic = "fdweb.events"
	}
	return nil
}

// NewPublisher creates an outbox events publisher.
func (k Kafka) NewPublisher() *kafka.Publisher {
	return kafka.NewPublisher(k.Brokers, k.Topic)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
