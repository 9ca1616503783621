package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// envelopePrefix 标记带过期时间的值. 内存与 NATS KV 不支持逐键 TTL，
// 过期时间随值一起存储，读取时判断.
var envelopePrefix = []byte("FVTTL1:")

type envelope struct {
	Value    []byte `json:"v"`
	ExpireAt int64  `json:"e,omitempty"` // unix 毫秒
}

// expireAt ttl<=0 时返回零值，表示不过期.
func expireAt(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return now.Add(ttl)
}

// seal 在 deadline 非零时包装 value.
func seal(value []byte, deadline time.Time) ([]byte, error) {
	if deadline.IsZero() {
		return value, nil
	}

	b, err := sonic.Marshal(envelope{Value: value, ExpireAt: deadline.UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("seal kv value: %w", err)
	}

	return append(bytes.Clone(envelopePrefix), b...), nil
}

// open 解开包装；live 为 false 表示已过期. 未包装的值原样返回.
func open(raw []byte, now time.Time) (value []byte, live bool, err error) {
	body, ok := bytes.CutPrefix(raw, envelopePrefix)
	if !ok {
		return raw, true, nil
	}

	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, false, fmt.Errorf("open kv value: %w", err)
	}

	if env.ExpireAt > 0 && now.UnixMilli() >= env.ExpireAt {
		return nil, false, nil
	}

	return env.Value, true, nil
}
