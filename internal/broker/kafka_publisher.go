package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaPublisher implements Publisher using Apache Kafka. The exchange name
// maps to a topic and the routing key becomes the message key, so all
// messages of one room land on one partition and stay ordered.
type KafkaPublisher struct {
	producer *kafka.Producer
	doneCh   chan struct{}
}

// NewKafkaPublisher creates a new Kafka-backed publisher and ensures the
// chat exchange topic exists.
func NewKafkaPublisher(brokers string, partitions int) (*KafkaPublisher, error) {
	if err := ensureTopic(brokers, TopicForExchange(ExchangeChat), partitions); err != nil {
		log.Printf("Warning: failed to ensure topic %s: %v (may already exist)", TopicForExchange(ExchangeChat), err)
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kp := &KafkaPublisher{
		producer: p,
		doneCh:   make(chan struct{}),
	}

	go kp.deliveryReportHandler()

	return kp, nil
}

func ensureTopic(brokers, topic string, partitions int) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	if partitions <= 0 {
		partitions = 4
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{
		{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		},
	})
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", result.Topic, result.Error)
		}
	}

	return nil
}

func (kp *KafkaPublisher) deliveryReportHandler() {
	for e := range kp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				log.Printf("Kafka delivery failed: %v", ev.TopicPartition.Error)
			}
		}
	}
	close(kp.doneCh)
}

// Publish sends the payload to the exchange topic keyed by routing key.
func (kp *KafkaPublisher) Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	topic := TopicForExchange(exchange)
	err = kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(routingKey),
		Value: value,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return nil
}

// Close flushes pending messages and shuts down the producer.
func (kp *KafkaPublisher) Close() error {
	kp.producer.Flush(5000)
	kp.producer.Close()
	<-kp.doneCh
	return nil
}

// Ensure interface is satisfied at compile time.
var _ Publisher = (*KafkaPublisher)(nil)
