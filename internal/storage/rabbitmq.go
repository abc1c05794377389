package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resume-screener-go/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ 消息队列客户端，用于发布筛选完成事件供下游消费
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
}

// ScreeningCompletedEvent 一次screen调用完成后发布的事件
type ScreeningCompletedEvent struct {
	BatchID     string    `json:"batch_id"`
	RoleID      string    `json:"role_id"`
	NumScreened int       `json:"num_screened"`
	NumSkipped  int       `json:"num_skipped"`
	Threshold   float64   `json:"threshold"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewRabbitMQ 建立连接并声明筛选事件交换机
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开RabbitMQ通道失败: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.ScreeningEventsExchange, // name
		"topic",                     // type
		true,                        // durable
		false,                       // auto-deleted
		false,                       // internal
		false,                       // no-wait
		nil,                         // args
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明交换机 '%s' 失败: %w", cfg.ScreeningEventsExchange, err)
	}

	return &RabbitMQ{conn: conn, channel: channel, cfg: cfg}, nil
}

// Close 关闭通道和连接
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("关闭RabbitMQ通道失败: %w", err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("关闭RabbitMQ连接失败: %w", err)
		}
	}
	return nil
}

// PublishScreeningCompleted 发布筛选完成事件
// 发布失败只影响事件通知，不影响已落库的筛选结果
func (r *RabbitMQ) PublishScreeningCompleted(ctx context.Context, event ScreeningCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化筛选事件失败: %w", err)
	}

	timeout := time.Duration(r.cfg.PublishTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = r.channel.PublishWithContext(ctx,
		r.cfg.ScreeningEventsExchange,
		r.cfg.ScreeningDoneRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("发布筛选事件失败: %w", err)
	}
	return nil
}
