package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// NATSSubscriber subscribes to JetStream subjects and feeds raw operation
// messages into the single-threaded engine via opChan. Each game surface
// publishes to its own subject family so they scale independently.
type NATSSubscriber struct {
	js        jetstream.JetStream
	opChan    chan<- RawMessage
	consumers []jetstream.ConsumeContext
	log       zerolog.Logger
}

// RawMessage is a received-but-unparsed operation, ready for the ingest
// loop to validate and convert into a typed operation.
type RawMessage struct {
	Subject    string
	Data       []byte
	ReceivedAt time.Time
	AckFunc    func() // ACK after successful processing (or a rejected op)
	NakFunc    func() // NAK on transient failure; message is redelivered
}

// SubjectConfig maps a NATS subject family to a durable consumer.
type SubjectConfig struct {
	Subject      string
	ConsumerName string
	StreamName   string
}

// DefaultSubjects returns the standard subject configuration: one subject
// family per game surface.
func DefaultSubjects() []SubjectConfig {
	return []SubjectConfig{
		{Subject: "game.economy.>", ConsumerName: "ledger-economy", StreamName: "GAME_ECONOMY"},
		{Subject: "game.profiles.>", ConsumerName: "ledger-profiles", StreamName: "GAME_PROFILES"},
		{Subject: "game.sessions.>", ConsumerName: "ledger-sessions", StreamName: "GAME_SESSIONS"},
		{Subject: "game.market.>", ConsumerName: "ledger-market", StreamName: "GAME_MARKET"},
		{Subject: "game.items.>", ConsumerName: "ledger-items", StreamName: "GAME_ITEMS"},
	}
}

func NewNATSSubscriber(js jetstream.JetStream, opChan chan<- RawMessage, logger zerolog.Logger) *NATSSubscriber {
	return &NATSSubscriber{
		js:     js,
		opChan: opChan,
		log:    logger.With().Str("component", "nats_subscriber").Logger(),
	}
}

// Subscribe creates JetStream consumers for all configured subjects.
// Consumers use explicit ACK, max_deliver=5, ack_wait=30s.
func (ns *NATSSubscriber) Subscribe(ctx context.Context, subjects []SubjectConfig) error {
	for _, cfg := range subjects {
		consumer, err := ns.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
			Durable:       cfg.ConsumerName,
			FilterSubject: cfg.Subject,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       30 * time.Second,
			MaxDeliver:    5,
			DeliverPolicy: jetstream.DeliverAllPolicy,
		})
		if err != nil {
			return fmt.Errorf("create consumer %s: %w", cfg.ConsumerName, err)
		}

		consumerContext, err := consumer.Consume(func(msg jetstream.Msg) {
			raw := RawMessage{
				Subject:    msg.Subject(),
				Data:       msg.Data(),
				ReceivedAt: time.Now(),
				AckFunc:    func() { msg.Ack() },
				NakFunc:    func() { msg.Nak() },
			}

			select {
			case ns.opChan <- raw:
			case <-ctx.Done():
				msg.Nak()
			}
		})
		if err != nil {
			return fmt.Errorf("consume %s: %w", cfg.ConsumerName, err)
		}

		ns.consumers = append(ns.consumers, consumerContext)
		ns.log.Info().Str("subject", cfg.Subject).Str("consumer", cfg.ConsumerName).Msg("subscribed")
	}

	return nil
}

// EnsureStreams creates the required JetStream streams if they don't exist.
// Streams use FileStorage, retention=Limits, max_age=72h.
func EnsureStreams(ctx context.Context, js jetstream.JetStream, logger zerolog.Logger) error {
	streams := []jetstream.StreamConfig{
		{Name: "GAME_ECONOMY", Subjects: []string{"game.economy.>"}},
		{Name: "GAME_PROFILES", Subjects: []string{"game.profiles.>"}},
		{Name: "GAME_SESSIONS", Subjects: []string{"game.sessions.>"}},
		{Name: "GAME_MARKET", Subjects: []string{"game.market.>"}},
		{Name: "GAME_ITEMS", Subjects: []string{"game.items.>"}},
	}

	for _, cfg := range streams {
		cfg.Storage = jetstream.FileStorage
		cfg.Retention = jetstream.LimitsPolicy
		cfg.MaxAge = 72 * time.Hour
		cfg.Replicas = 1

		if _, err := js.CreateOrUpdateStream(ctx, cfg); err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.Name, err)
		}
		logger.Info().Str("stream", cfg.Name).Msg("ensured stream")
	}

	return nil
}

// Stop gracefully stops all consumers.
func (ns *NATSSubscriber) Stop() {
	for _, cc := range ns.consumers {
		cc.Stop()
	}
	ns.log.Info().Msg("NATS subscribers stopped")
}

// ConnectNATS establishes a NATS connection and returns a JetStream context.
func ConnectNATS(url string, logger zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}
