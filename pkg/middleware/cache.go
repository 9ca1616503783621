package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/log"
)

const (
	DefaultMaxBodyBytes = 1 << 20 // 1MB
	defaultTTL          = 30 * time.Second
)

// 响应头.
const (
	HeaderCache       = "X-Cache"
	HeaderCacheBypass = "X-Cache-Bypass"
)

// 不随缓存条目回放的响应头.
var volatileHeaders = []string{HeaderCache, "Content-Encoding", "Content-Length", "Vary", "Age"}

// CacheConfig 缓存中间件配置.
type CacheConfig struct {
	Cache *appcache.Cache // 必须
	TTL   time.Duration

	KeyFunc func(*gin.Context) string // 缺省为 方法+路由+排序后的 query
	Skipper func(*gin.Context) bool   // 返回 true 跳过缓存

	MaxBodyBytes int // 超过该大小的响应不缓存，0 为不限制
}

// DefaultCacheConfig 返回一份默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          defaultTTL,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// cachedResponse KV 中保存的响应.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e"`
	StoredAt int64             `json:"t"`
}

// CacheMiddleware 缓存 GET/HEAD 的 200 响应：命中时回放状态码、头与响应体（X-Cache: HIT），
// If-None-Match 与 ETag 相同时返回 304；未命中时标记 X-Cache: MISS 并写入缓存.
// 带 X-Cache-Bypass 头或 Cache-Control: no-store/private 的响应不缓存，缓存读写失败不影响请求.
//
//	cfg := middleware.DefaultCacheConfig(cache.NewCache(mgr.KV, "fv:cache:"))
//	cfg.KeyFunc = middleware.OwnerCacheKey("stats")
//	r.GET("/stats", auth, middleware.CacheMiddleware(cfg), h.Stats)
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = routeCacheKey
	}

	return func(c *gin.Context) {
		if skipCache(c, cfg) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)

		if entry, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key); err == nil {
			replay(c, entry)
			return
		}

		c.Header(HeaderCache, "MISS")

		w := &bufferedWriter{ResponseWriter: c.Writer, max: cfg.MaxBodyBytes}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter

		if w.spilled {
			return
		}

		h := w.Header()
		body := w.buf.Bytes()
		etag := h.Get("ETag")

		if etag == "" {
			etag = fmt.Sprintf(`"%x"`, xxhash.Sum64(body))
			h.Set("ETag", etag)
		}

		if w.Status() == http.StatusOK && storable(h) {
			store(c, cfg, key, cachedResponse{
				Status:   http.StatusOK,
				Header:   snapshot(h),
				Body:     body,
				ETag:     etag,
				StoredAt: time.Now().UnixNano(),
			})
		}

		if len(body) > 0 {
			_, _ = w.ResponseWriter.Write(body)
		}
	}
}

func skipCache(c *gin.Context, cfg CacheConfig) bool {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return true
	}

	if c.GetHeader(HeaderCacheBypass) != "" {
		return true
	}

	return cfg.Skipper != nil && cfg.Skipper(c)
}

func replay(c *gin.Context, entry cachedResponse) {
	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	h.Set("ETag", entry.ETag)
	h.Set("Age", strconv.Itoa(int(time.Since(time.Unix(0, entry.StoredAt)).Seconds())))
	h.Set(HeaderCache, "HIT")

	if c.GetHeader("If-None-Match") == entry.ETag {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()
}

func store(c *gin.Context, cfg CacheConfig, key string, entry cachedResponse) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	ctx := context.WithoutCancel(c.Request.Context())
	if err := appcache.Set(ctx, cfg.Cache, key, entry, ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("store response cache")
	}
}

// storable 响应是否允许缓存.
func storable(h http.Header) bool {
	cc := strings.ToLower(h.Get("Cache-Control"))

	return !strings.Contains(cc, "no-store") && !strings.Contains(cc, "private")
}

func snapshot(h http.Header) map[string]string {
	out := make(map[string]string, len(h))

	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}

	for _, k := range volatileHeaders {
		delete(out, k)
	}

	return out
}

// routeCacheKey 方法 + 路由模板 + 排序后的 query 的 xxhash.
func routeCacheKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(c.Request.Method+" "+route+"?"+c.Request.URL.Query().Encode()))
}

// bufferedWriter 在处理器返回前缓冲响应体，便于补写 ETag 等响应头；
// 超过 max 后把已缓冲的内容写出并改为直通.
type bufferedWriter struct {
	gin.ResponseWriter

	buf     bytes.Buffer
	max     int
	spilled bool
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.spilled {
		return w.ResponseWriter.Write(b)
	}

	if w.max > 0 && w.buf.Len()+len(b) > w.max {
		w.spilled = true

		if _, err := w.ResponseWriter.Write(w.buf.Bytes()); err != nil {
			return 0, err
		}

		w.buf.Reset()

		return w.ResponseWriter.Write(b)
	}

	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Written 缓冲期间不向下游报告已写出.
func (w *bufferedWriter) Written() bool {
	return w.spilled && w.ResponseWriter.Written()
}

// OwnerCacheKey 按已认证用户区分缓存，键为 <name>:<ownerID>.
func OwnerCacheKey(name string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return name + ":" + OwnerID(c)
	}
}

// SkipAnonymous 跳过未认证的请求.
func SkipAnonymous(c *gin.Context) bool {
	return OwnerID(c) == ""
}
