// Package mq 提供基于 Watermill 的消息队列客户端，缩略图任务通过它在上传服务与 worker 之间传递.
//
// 支持的 MQ 类型：
//   - nats：JetStream 持久化，消费组实现多 worker 竞争消费
//   - redis：Redis Streams + 消费组
//   - memory：进程内 gochannel，适合单进程部署与测试
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/filevault/pkg/configs"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredTypes 返回已注册的 MQ 类型.
func GetRegisteredTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	kind       configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Options 可选项.
type Options struct {
	// Registerer 非空时用 watermill prometheus 指标装饰 Publisher/Subscriber
	Registerer prometheus.Registerer
}

// New 按配置创建 MQ 客户端.
func New(ctx context.Context, cfg *configs.MQConfig, opts Options) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewZerologAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if opts.Registerer != nil {
		builder := metrics.NewPrometheusMetricsBuilder(opts.Registerer, "filevault", "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已初始化")

	return &Client{kind: cfg.Type, publisher: pub, subscriber: sub}, nil
}

// NewFromPubSub 用现成的 Publisher/Subscriber 构造客户端（测试与嵌入场景）.
func NewFromPubSub(pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{kind: configs.MQTypeMemory, publisher: pub, subscriber: sub}
}

// Type 返回 MQ 类型.
func (c *Client) Type() configs.MQType {
	return c.kind
}

// Publisher 返回底层 Publisher.
func (c *Client) Publisher() message.Publisher {
	return c.publisher
}

// Subscriber 返回底层 Subscriber.
func (c *Client) Subscriber() message.Subscriber {
	return c.subscriber
}

// Publish 便捷发布.
func (c *Client) Publish(topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭资源；memory 类型的 Publisher 与 Subscriber 是同一个实例，只关闭一次.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}

// Ping 仅确认客户端已初始化；watermill 不暴露统一的连通性检查.
func (c *Client) Ping(context.Context) error {
	if c == nil || c.publisher == nil || c.subscriber == nil {
		return errors.New("mq client not initialized")
	}

	return nil
}
