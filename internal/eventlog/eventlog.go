// Package eventlog streams accepted bids to downstream consumers.
package eventlog

import (
	model "bidding-room/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic carries one message per committed bid, keyed by auction
const DefaultTopic = "auction.bids.accepted"

const eventAccepted = "bid.accepted"

// Sink receives every committed bid after broadcast
type Sink interface {
	Emit(ctx context.Context, bid model.AcceptedBid) error
	Close() error
}

// KafkaWriter is the part of *kafka.Writer the sink uses
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AcceptedEvent is the message value written for each committed bid
type AcceptedEvent struct {
	Event string            `json:"event"`
	Bid   model.AcceptedBid `json:"bid"`
}

// KafkaSink writes accepted bids to a Kafka topic
type KafkaSink struct {
	writer KafkaWriter
}

var (
	_ Sink = (*KafkaSink)(nil)
	_ Sink = NopSink{}
)

// NewKafkaWriter builds a writer whose key hashing keeps one auction on one partition
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: time.Second,
		MaxAttempts:  3,
	}
}

// NewKafkaSink creates a sink over writer
func NewKafkaSink(writer KafkaWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Emit(ctx context.Context, bid model.AcceptedBid) error {
	payload, err := json.Marshal(AcceptedEvent{Event: eventAccepted, Bid: bid})
	if err != nil {
		return fmt.Errorf("encode accepted bid %s: %w", bid.BidID, err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(bid.AuctionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(eventAccepted)},
		},
		Time: bid.AcceptedAt,
	})
	if err != nil {
		return fmt.Errorf("write accepted bid %s: %w", bid.BidID, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// NopSink drops every event
type NopSink struct{}

func (NopSink) Emit(context.Context, model.AcceptedBid) error { return nil }
func (NopSink) Close() error                                   { return nil }
