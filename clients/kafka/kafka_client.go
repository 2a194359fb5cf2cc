package kafka_client

import (
	"encoding/json"
	"os"

	"portfolioadvisor/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

var (
	KafkaProducer *kafka.Producer
)

// SendMessage publishes a portfolio event to the configured topic. Delivery
// is best-effort; failures are logged, never returned.
func SendMessage(event types.PortfolioEvent) {
	if KafkaProducer == nil {
		return
	}
	topic := os.Getenv("KAFKA_TOPIC")
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Error marshalling portfolio event", zap.Error(err))
		return
	}

	err = KafkaProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
	}, nil)
	if err != nil {
		zap.L().Error("Error sending message to kafka: ", zap.Any("error", err.Error()))
	}
}

func init() {
	bootstrapServers := os.Getenv("KAFKA_BOOTSTRAPSERVERS")
	if bootstrapServers == "" {
		zap.L().Info("Kafka not configured, portfolio events will not be produced")
		return
	}

	newProducer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"client.id":         "portfolioadvisor",
		"acks":              "all",
	})
	if err != nil {
		zap.L().Error("Kafka Producer initialization failed: ", zap.Any("error", err.Error()))
		return
	}
	KafkaProducer = newProducer

	// Delivery report handler for produced messages
	go func() {
		for e := range KafkaProducer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					zap.L().Error("Kafka Delivery failed: ", zap.Any("error", ev.TopicPartition.Error.Error()))
				} else {
					zap.L().Sugar().Infof("Delivered message to %s", *ev.TopicPartition.Topic)
				}
			}
		}
	}()

	zap.L().Info("Connected to Kafka")
}
