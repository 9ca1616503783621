// Package session 校验与签发访问令牌，会话以 auth_<token> -> ownerId 的形式保存在 KV 中.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

// KeyPrefix 会话键前缀.
const KeyPrefix = "auth_"

// Key 返回令牌对应的 KV 键.
func Key(token string) string {
	return KeyPrefix + token
}

// Verifier 基于 KV 的会话校验.
type Verifier struct {
	store kv.KVStore
}

// NewVerifier 创建 Verifier.
func NewVerifier(store kv.KVStore) *Verifier {
	return &Verifier{store: store}
}

// Verify 返回令牌对应的用户；空、未知或过期的令牌返回 ok=false，KV 故障返回 err.
func (v *Verifier) Verify(ctx context.Context, token string) (string, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false, nil
	}

	raw, err := v.store.Get(ctx, Key(token))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}

	ownerID := string(raw)
	if ownerID == "" {
		return "", false, nil
	}

	return ownerID, true, nil
}

// Issue 为用户签发新令牌.
func (v *Verifier) Issue(ctx context.Context, ownerID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", errors.New("owner id is required")
	}

	token := uuid.NewString()
	if err := v.store.Set(ctx, Key(token), []byte(ownerID), ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

// Revoke 删除令牌.
func (v *Verifier) Revoke(ctx context.Context, token string) error {
	return v.store.Delete(ctx, Key(token))
}
