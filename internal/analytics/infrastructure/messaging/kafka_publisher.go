package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
	"github.com/wyfcoding/optionanalytics/pkg/mq"
)

// envelope 事件信封，带事件标识与类型便于下游按类型消费
type envelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaEventPublisher 将领域事件发布到 Kafka
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建 Kafka 事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

// Publish 发布单条领域事件
// key 为空时退化为事件类型，保证同合约的事件进入同一分区
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType string, key string, event any) error {
	if key == "" {
		key = eventType
	}
	return p.producer.SendMessage(ctx, p.topic, key, envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   event,
		CreatedAt: time.Now(),
	})
}
