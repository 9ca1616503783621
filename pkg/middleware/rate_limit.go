package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/filevault/pkg/configs"
)

// sweepEvery 每隔多少次取用检查一次闲置 limiter.
const sweepEvery = 1024

// limiterSet 按键维护令牌桶，闲置超过 idle 的条目在取用时顺带清理.
type limiterSet struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idle    time.Duration
	entries map[string]*limiterEntry
	calls   int
	now     func() time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiterSet(rps float64, burst int, idle time.Duration) *limiterSet {
	return &limiterSet{
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		entries: map[string]*limiterEntry{},
		now:     time.Now,
	}
}

// allow 返回 key 是否放行，拒绝时附带建议等待的时间.
func (s *limiterSet) allow(key string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now)
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.seen = now

	r := e.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)

		return false, delay
	}

	return true, 0
}

func (s *limiterSet) sweep(now time.Time) {
	if s.idle <= 0 {
		return
	}

	for k, e := range s.entries {
		if now.Sub(e.seen) > s.idle {
			delete(s.entries, k)
		}
	}
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// RateLimitMiddleware 令牌桶限流，超限返回 429 并带 Retry-After.
//
// cfg.Key 选择维度：global、ip 或 header:<Name>；按请求头限流时以头部值的 xxhash 为键，
// 令牌本身不会常驻内存，请求未携带该头时退回按 IP.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	set := newLimiterSet(cfg.RPS, cfg.Burst, cfg.IdleTTL)
	keyOf := rateLimitKey(cfg.Key)

	return func(c *gin.Context) {
		ok, wait := set.allow(keyOf(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abortJSON(c, http.StatusTooManyRequests, "Too many requests")

			return
		}

		c.Next()
	}
}

func rateLimitKey(mode string) func(c *gin.Context) string {
	mode = strings.TrimSpace(mode)

	switch {
	case mode == "" || strings.EqualFold(mode, "global"):
		return func(*gin.Context) string { return "global" }
	case strings.HasPrefix(strings.ToLower(mode), "header:"):
		header := mode[len("header:"):]

		return func(c *gin.Context) string {
			if v := c.GetHeader(header); v != "" {
				return fmt.Sprintf("h:%x", xxhash.Sum64String(v))
			}

			return "ip:" + c.ClientIP()
		}
	default:
		return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
	}
}
