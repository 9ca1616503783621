package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/filevault/pkg/configs"
)

const (
	// DefaultChannelBufferSize 默认通道缓冲区大小.
	DefaultChannelBufferSize = 100

	redisBlockTimeout = 2 * time.Second
	redisNackDelay    = time.Second

	fieldUUID     = "uuid"
	fieldPayload  = "payload"
	fieldMetadata = "metadata"
)

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

func newRedisClient(cfg *configs.MQRedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// redisFactory 基于 Redis Streams 的 Publisher & Subscriber.
// 每个 topic 是一个 stream，订阅端通过消费组竞争消费，Ack 后 XACK，Nack 的消息留在 PEL 中稍后重投.
func redisFactory(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	pubClient := newRedisClient(&cfg.Redis)
	if err := pubClient.Ping(ctx).Err(); err != nil {
		_ = pubClient.Close()

		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	pub := &RedisPublisher{client: pubClient}
	sub := &RedisSubscriber{
		client:   newRedisClient(&cfg.Redis),
		group:    cfg.Common.ConsumerGroup,
		consumer: cfg.Common.ClientID,
		logger:   logger,
		closeCh:  make(chan struct{}),
	}

	return pub, sub, nil
}

// RedisPublisher 将消息 XADD 到同名 stream.
type RedisPublisher struct {
	client *redis.Client
}

// Publish 实现 message.Publisher.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		meta, err := sonic.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		err = p.client.XAdd(msg.Context(), &redis.XAddArgs{
			Stream: topic,
			Values: map[string]any{
				fieldUUID:     msg.UUID,
				fieldPayload:  string(msg.Payload),
				fieldMetadata: string(meta),
			},
		}).Err()
		if err != nil {
			return fmt.Errorf("xadd %s: %w", topic, err)
		}
	}

	return nil
}

// Close 实现 message.Publisher.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// RedisSubscriber 通过 XREADGROUP 读取 stream.
type RedisSubscriber struct {
	client   *redis.Client
	group    string
	consumer string
	logger   watermill.LoggerAdapter

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Subscribe 实现 message.Subscriber；消费组不存在时自动创建.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("redis subscriber closed")
	}

	err := s.client.XGroupCreateMkStream(ctx, topic, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	out := make(chan *message.Message, DefaultChannelBufferSize)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)

		s.consume(ctx, topic, out)
	}()

	return out, nil
}

// consume 先处理本消费者 PEL 中未确认的消息（ID "0"），读空后再读新消息（ID ">"）.
func (s *RedisSubscriber) consume(ctx context.Context, topic string, out chan<- *message.Message) {
	fields := watermill.LogFields{"topic": topic, "group": s.group}
	readPending := true

	for {
		if s.stopped(ctx) {
			return
		}

		start := ">"
		if readPending {
			start = "0"
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{topic, start},
			Count:    int64(DefaultChannelBufferSize),
			Block:    redisBlockTimeout,
		}).Result()

		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if s.stopped(ctx) {
				return
			}

			s.logger.Error("xreadgroup failed", err, fields)
			s.sleep(ctx, redisNackDelay)

			continue
		}

		received := 0
		nacked := false

		for _, stream := range streams {
			for _, xmsg := range stream.Messages {
				received++

				ok, alive := s.deliver(ctx, topic, xmsg, out)
				if !alive {
					return
				}

				if !ok {
					nacked = true
				}
			}
		}

		switch {
		case nacked:
			readPending = true

			s.sleep(ctx, redisNackDelay)
		case readPending && received == 0:
			readPending = false
		}
	}
}

// deliver 投递单条消息并等待 Ack/Nack；alive=false 表示订阅已结束.
func (s *RedisSubscriber) deliver(ctx context.Context, topic string, xmsg redis.XMessage, out chan<- *message.Message) (acked, alive bool) {
	msg := toMessage(xmsg)

	msgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	msg.SetContext(msgCtx)

	select {
	case out <- msg:
	case <-s.closeCh:
		return false, false
	case <-ctx.Done():
		return false, false
	}

	select {
	case <-msg.Acked():
		if err := s.client.XAck(ctx, topic, s.group, xmsg.ID).Err(); err != nil {
			s.logger.Error("xack failed", err, watermill.LogFields{"topic": topic, "id": xmsg.ID})
		}

		return true, true
	case <-msg.Nacked():
		return false, true
	case <-s.closeCh:
		return false, false
	case <-ctx.Done():
		return false, false
	}
}

func toMessage(xmsg redis.XMessage) *message.Message {
	uuid, _ := xmsg.Values[fieldUUID].(string)
	if uuid == "" {
		uuid = xmsg.ID
	}

	payload, _ := xmsg.Values[fieldPayload].(string)
	msg := message.NewMessage(uuid, []byte(payload))

	if raw, ok := xmsg.Values[fieldMetadata].(string); ok && raw != "" {
		var meta message.Metadata
		if err := sonic.UnmarshalString(raw, &meta); err == nil {
			msg.Metadata = meta
		}
	}

	return msg
}

func (s *RedisSubscriber) stopped(ctx context.Context) bool {
	select {
	case <-s.closeCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (s *RedisSubscriber) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-s.closeCh:
	case <-ctx.Done():
	}
}

// Close 停止全部订阅并关闭连接.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.closeCh)
	s.mu.Unlock()

	err := s.client.Close()

	s.wg.Wait()

	return err
}
