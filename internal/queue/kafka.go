package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

var _ RecordQueue = (*KafkaRecordQueue)(nil)

// NewKafkaRecordQueue connects a producer to the given brokers.
func NewKafkaRecordQueue(brokers string) (*KafkaRecordQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	return &KafkaRecordQueue{producer: producer}, nil
}

type KafkaRecordQueue struct {
	producer *kafka.Producer
}

// PublishChange sends the change keyed by table name, so consumers see
// the versions of one table in write order.
func (k *KafkaRecordQueue) PublishChange(ctx context.Context, change *ChangeEvent) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	topic := RecordChangeTopic
	deliveries := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(change.Table),
		Value:          payload,
	}, deliveries)
	if err != nil {
		return err
	}

	select {
	case e := <-deliveries:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (k *KafkaRecordQueue) Close() error {
	left := k.producer.Flush(5000)
	if left > 0 {
		logrus.Warnf("closing kafka producer with %d undelivered messages", left)
	}
	k.producer.Close()

	return nil
}
