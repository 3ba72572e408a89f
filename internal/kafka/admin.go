package kafka

import (
	"fmt"
	"log"

	"github.com/IBM/sarama"
)

// EnsureTopicExists создает топик заказов, если его еще нет.
// Вызывается один раз при старте приложения.
func EnsureTopicExists(broker []string, topic string) error {
	config := sarama.NewConfig()
	config.Version = sarama.V2_1_0_0

	admin, err := sarama.NewClusterAdmin(broker, config)
	if err != nil {
		return fmt.Errorf("ошибка создания admin-клиента Kafka: %w", err)
	}
	defer func() {
		if err := admin.Close(); err != nil {
			log.Printf("failed to close kafka admin: %v", err)
		}
	}()

	topics, err := admin.ListTopics()
	if err != nil {
		return fmt.Errorf("ошибка получения списка топиков: %w", err)
	}
	if _, exists := topics[topic]; exists {
		log.Printf("Kafka: топик '%s' уже существует", topic)
		return nil
	}

	topicDetails := &sarama.TopicDetail{
		NumPartitions:     1,
		ReplicationFactor: 1,
		ConfigEntries: map[string]*string{
			"retention.ms": strPtr("604800000"),
		},
	}

	if err := admin.CreateTopic(topic, topicDetails, false); err != nil {
		return fmt.Errorf("не удалось создать топик: %w", err)
	}

	log.Printf("Kafka: топик '%s' успешно создан", topic)
	return nil
}

func strPtr(s string) *string {
	return &s
}
