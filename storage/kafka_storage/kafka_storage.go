package kafka_storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/qash-finance/qash-sub002/storage"
)

var _ storage.Storage = (*KafkaStorage)(nil)

const (
	kafkaMinBytes    = 10
	kafkaMaxBytes    = 10e6
	kafkaMaxAttempts = 16
)

type Config struct {
	BrokerEndpoint string
	Topic          string
	ConsumerGroup  string
	TLSConfig      *tls.Config
	ProducerCreds  *plain.Mechanism
	ConsumerCreds  *plain.Mechanism
	Timeout        time.Duration
	// ReadWindow bounds a single GetMessages poll
	ReadWindow time.Duration
}

// KafkaStorage keeps the relay log in a kafka topic. Reads go through a
// consumer group, so the offset passed to GetMessages is informational.
type KafkaStorage struct {
	mu     sync.Mutex
	cfg    Config
	reader *kafka.Reader
	writer *kafka.Writer

	idIgnoreList     map[string]struct{}
	offsetIgnoreList map[uint64]struct{}
}

func NewKafkaStorage(cfg Config) (*KafkaStorage, error) {
	if cfg.ReadWindow == 0 {
		cfg.ReadWindow = 10 * time.Second
	}
	ks := &KafkaStorage{
		cfg:              cfg,
		idIgnoreList:     map[string]struct{}{},
		offsetIgnoreList: map[uint64]struct{}{},
	}
	if err := ks.reset(); err != nil {
		return nil, fmt.Errorf("failed to create a NewKafkaStorage: %w", err)
	}

	return ks, nil
}

func (ks *KafkaStorage) Close() error {
	if ks.reader != nil {
		if err := ks.reader.Close(); err != nil {
			return fmt.Errorf("failed to Close reader: %w", err)
		}
	}

	if ks.writer != nil {
		if err := ks.writer.Close(); err != nil {
			return fmt.Errorf("failed to Close writer: %w", err)
		}
	}

	return nil
}

func (ks *KafkaStorage) Send(messages ...storage.Message) error {
	kafkaMessages, err := storageToKafkaMessages(messages...)
	if err != nil {
		return fmt.Errorf("failed to storageToKafkaMessages: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ks.cfg.Timeout+ks.cfg.ReadWindow)
	defer cancel()

	if err := ks.writer.WriteMessages(ctx, kafkaMessages...); err != nil {
		return fmt.Errorf("failed to WriteMessages: %w", err)
	}

	return nil
}

func (ks *KafkaStorage) GetMessages(_ uint64) ([]storage.Message, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), ks.cfg.ReadWindow)
	defer cancel()

	var messages []storage.Message
	for {
		kafkaMessage, err := ks.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("failed to ReadMessage: %w", err)
		}

		var message storage.Message
		if err = json.Unmarshal(kafkaMessage.Value, &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal a message %s: %w", string(kafkaMessage.Value), err)
		}

		message.Offset = uint64(kafkaMessage.Offset)

		_, idOk := ks.idIgnoreList[message.ID]
		_, offsetOk := ks.offsetIgnoreList[message.Offset]
		if !idOk && !offsetOk {
			messages = append(messages, message)
		}
	}

	return messages, nil
}

// IgnoreMessages hides messages by ID, or by offset when useOffset is set.
func (ks *KafkaStorage) IgnoreMessages(messages []string, useOffset bool) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	for _, msg := range messages {
		if useOffset {
			offset, err := strconv.ParseUint(msg, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse message offset: %w", err)
			}
			ks.offsetIgnoreList[offset] = struct{}{}

			continue
		}

		ks.idIgnoreList[msg] = struct{}{}
	}

	return nil
}

func (ks *KafkaStorage) UnignoreMessages() {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.idIgnoreList = map[string]struct{}{}
	ks.offsetIgnoreList = map[uint64]struct{}{}
}

func storageToKafkaMessages(messages ...storage.Message) ([]kafka.Message, error) {
	kafkaMessages := make([]kafka.Message, len(messages))
	for i, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return kafkaMessages, fmt.Errorf("failed to marshal a message %s: %w", m.ID, err)
		}
		// keyed by account, so one account's messages stay ordered within a partition
		kafkaMessages[i] = kafka.Message{Key: []byte(m.AccountID), Value: data}
	}

	return kafkaMessages, nil
}

func (ks *KafkaStorage) reset() error {
	if err := ks.Close(); err != nil {
		return fmt.Errorf("failed to Close connections: %w", err)
	}

	ks.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{ks.cfg.BrokerEndpoint},
		GroupID:     ks.cfg.ConsumerGroup,
		Topic:       ks.cfg.Topic,
		MinBytes:    kafkaMinBytes,
		MaxBytes:    kafkaMaxBytes,
		MaxAttempts: kafkaMaxAttempts,
		Dialer: &kafka.Dialer{
			Timeout:       ks.cfg.Timeout,
			DualStack:     true,
			TLS:           ks.cfg.TLSConfig,
			SASLMechanism: mechanism(ks.cfg.ConsumerCreds),
		},
	})

	ks.writer = &kafka.Writer{
		Addr:         kafka.TCP(ks.cfg.BrokerEndpoint),
		Topic:        ks.cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  kafkaMaxAttempts,
		BatchTimeout: ks.cfg.Timeout,
		ReadTimeout:  ks.cfg.Timeout,
		WriteTimeout: ks.cfg.Timeout,
		Transport: &kafka.Transport{
			Dial: (&net.Dialer{
				Timeout: ks.cfg.Timeout,
			}).DialContext,
			TLS:  ks.cfg.TLSConfig,
			SASL: mechanism(ks.cfg.ProducerCreds),
		},
	}

	return nil
}
