package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/listing_service/config"
	"github.com/Xushengqwer/listing_service/models/events"
)

// KafkaProducer Kafka 消息生产者
type KafkaProducer struct {
	writer *kafka.Writer
	logger *core.ZapLogger
	topics config.Topics
}

// NewKafkaProducer 创建一个新的 Kafka 生产者实例
func NewKafkaProducer(config config.KafkaConfig, logger *core.ZapLogger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(config.Brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaProducer{
		writer: writer,
		logger: logger,
		topics: config.Topics,
	}
}

// Close 关闭底层 writer，服务优雅停机时调用。
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// SendEvent 发送事件到指定 Kafka 主题
// - 生产者未配置 (nil) 时静默跳过，事件发送是尽力而为的旁路
func (p *KafkaProducer) SendEvent(ctx context.Context, topic string, event interface{}) error {
	if p == nil {
		return nil
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err), zap.String("topic", topic))
		return err
	}

	p.logger.Debug("Sending Kafka message",
		zap.String("topic", topic),
		zap.ByteString("payload", eventBytes))

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: eventBytes,
	})

	if err != nil {
		p.logger.Error("Failed to write Kafka message", zap.Error(err), zap.String("topic", topic))
	} else {
		p.logger.Info("Successfully sent Kafka message", zap.String("topic", topic))
	}
	return err
}

// SendListingCreatedEvent 发送帖子创建事件到 Kafka
// - 意图: 将新创建的帖子快照发送给下游 (搜索索引、推荐) 消费
// - 输入: ctx context.Context 上下文, listingData events.ListingData 帖子核心数据
// - 输出: error 错误信息
func (p *KafkaProducer) SendListingCreatedEvent(ctx context.Context, listingData events.ListingData) error {
	if p == nil {
		return nil
	}
	event := events.ListingCreatedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Listing:   listingData,
	}

	return p.SendEvent(ctx, p.topics.ListingCreated, event)
}

// SendListingDeletedEvent 发送帖子删除事件到 Kafka
// - 意图: 通知下游清理与该帖子相关的派生数据
// - 输入: ctx context.Context 上下文, listingID uint64 帖子ID
// - 输出: error 错误信息
func (p *KafkaProducer) SendListingDeletedEvent(ctx context.Context, listingID uint64) error {
	if p == nil {
		return nil
	}
	event := events.ListingDeletedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		ListingID: listingID,
	}

	return p.SendEvent(ctx, p.topics.ListingDeleted, event)
}
