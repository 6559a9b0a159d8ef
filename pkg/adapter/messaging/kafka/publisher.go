// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package kafka publishes the outbox events to a Kafka topic using the
// segmentio/kafka-go writer. Messages are keyed by the entity id, so
// the events of one entity keep their order in a partition.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fdweb_outbox_events_published_total",
		Help: "The total number of outbox events which are published",
	}, []string{"type"})
	publishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fdweb_outbox_publish_errors_total",
		Help: "The total number of failed outbox event publications",
	}, []string{"type"})
)

// MessageWriter is the subset of *kafka.Writer which Publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements the relayuc.Publisher interface.
type Publisher struct {
	w MessageWriter
}

// NewPublisher creates a Publisher which writes into the topic of
// the given brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

// NewPublisherWithWriter creates a Publisher on top of w.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish writes e as a JSON message with the event type header.
func (p *Publisher) Publish(ctx context.Context, e *model.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", e.Type, err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.EntityID.String()),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "event-id", Value: []byte(e.ID.String())},
		},
		Time: e.OccurredAt,
	})
	if err != nil {
		publishErrors.WithLabelValues(string(e.Type)).Inc()
		return fmt.Errorf("writing %s event: %w", e.Type, err)
	}
	eventsPublished.WithLabelValues(string(e.Type)).Inc()
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
