package router_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	engine *gin.Engine
	issue  func(owner string) string
}

func newServer(t *testing.T) *server {
	t.Helper()

	dir := t.TempDir()
	cfg := &configs.AppConfig{
		Server: configs.ServerConfig{Host: "127.0.0.1", Port: 8080, MaxBodyMB: 1},
		Auth:   configs.AuthConfig{Header: configs.DefaultAuthHeader},
		DB: configs.DBConfig{
			Type:         configs.SQLite,
			DataDir:      filepath.Join(dir, "data"),
			Database:     "files_manager",
			MaxIdleConns: 1,
		},
		Blob: configs.BlobConfig{
			Type:  configs.BlobTypeLocal,
			Local: configs.LocalBlobConfig{Root: filepath.Join(dir, "files")},
		},
		KV: configs.KVConfig{Type: configs.KVTypeMemory},
		MQ: configs.MQConfig{Type: configs.MQTypeMemory},
	}

	ctx := context.Background()

	mgr, err := storage.New(ctx, cfg, storage.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	verifier := session.NewVerifier(mgr.KV)

	engine := router.New(router.Deps{
		Config:   cfg,
		Files:    service.NewFileService(mgr.Files, mgr.Blobs, mgr.MQ.Publisher()),
		Verifier: verifier,
		Cache:    cache.NewCache(mgr.KV, "fv:cache:"),
		Manager:  mgr,
	})

	return &server{
		engine: engine,
		issue: func(owner string) string {
			token, err := verifier.Issue(ctx, owner, 0)
			require.NoError(t, err)

			return token
		},
	}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set(configs.DefaultAuthHeader, token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

type fileJSON struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID any    `json:"parentId"`
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	return decode[map[string]string](t, w)["error"]
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/files"},
		{http.MethodGet, "/api/v1/files"},
		{http.MethodGet, "/api/v1/files/abc"},
		{http.MethodPut, "/api/v1/files/abc/publish"},
		{http.MethodPut, "/api/v1/files/abc/unpublish"},
		{http.MethodGet, "/api/v1/stats"},
	}

	for _, r := range routes {
		for _, token := range []string{"", "unknown-token"} {
			w := s.do(t, r.method, r.path, token, map[string]any{"name": "x"})
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
			assert.Equal(t, "Unauthorized", errorOf(t, w))
		}
	}
}

func TestUploadListAndGet(t *testing.T) {
	s := newServer(t)
	token := s.issue("u1")

	w := s.do(t, http.MethodPost, "/api/v1/files", token, map[string]any{"name": "docs", "type": "folder"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	folder := decode[fileJSON](t, w)
	assert.Equal(t, "u1", folder.UserID)
	assert.Equal(t, "folder", folder.Type)
	assert.EqualValues(t, 0, folder.ParentID)

	w = s.do(t, http.MethodPost, "/api/v1/files", token, map[string]any{
		"name":     "hello.txt",
		"type":     "file",
		"parentId": folder.ID,
		"data":     base64.StdEncoding.EncodeToString([]byte("Hello Webstack!\n")),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	file := decode[fileJSON](t, w)
	assert.Equal(t, folder.ID, file.ParentID)
	assert.False(t, file.IsPublic)

	w = s.do(t, http.MethodGet, "/api/v1/files?parentId="+folder.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	children := decode[[]fileJSON](t, w)
	require.Len(t, children, 1)
	assert.Equal(t, file.ID, children[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/files?page=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/files/"+file.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello.txt", decode[fileJSON](t, w).Name)

	// 其它用户看不到
	w = s.do(t, http.MethodGet, "/api/v1/files/"+file.ID, s.issue("u2"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", errorOf(t, w))
}

func TestUploadValidation(t *testing.T) {
	s := newServer(t)
	token := s.issue("u1")

	cases := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"type": "folder"}, service.MsgMissingName},
		{map[string]any{"name": "a"}, service.MsgMissingType},
		{map[string]any{"name": "a", "type": "video"}, service.MsgMissingType},
		{map[string]any{"name": "a", "type": "file"}, service.MsgMissingData},
		{map[string]any{"name": "a", "type": "folder", "parentId": "nope"}, service.MsgParentNotFound},
		{map[string]any{"type": 5, "parentId": map[string]any{"x": 1}}, service.MsgMissingName},
		{map[string]any{"name": "a", "type": 5}, service.MsgMissingType},
		{map[string]any{"name": "a", "type": "folder", "parentId": map[string]any{"x": 1}}, service.MsgParentNotFound},
	}

	for _, tc := range cases {
		w := s.do(t, http.MethodPost, "/api/v1/files", token, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.want)
		assert.Equal(t, tc.want, errorOf(t, w))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewBufferString("{not json"))
	req.Header.Set(configs.DefaultAuthHeader, token)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/files", token, nil)
	assert.Equal(t, "[]", w.Body.String())
}

func TestDataVisibility(t *testing.T) {
	s := newServer(t)
	owner := s.issue("u1")
	other := s.issue("u2")

	w := s.do(t, http.MethodPost, "/api/v1/files", owner, map[string]any{
		"name": "hello.txt",
		"type": "file",
		"data": base64.StdEncoding.EncodeToString([]byte("Hello Webstack!\n")),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	id := decode[fileJSON](t, w).ID
	dataPath := "/api/v1/files/" + id + "/data"

	for _, token := range []string{"", other} {
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, dataPath, token, nil).Code)
	}

	w = s.do(t, http.MethodGet, dataPath, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Webstack!\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.NotEmpty(t, w.Header().Get("ETag"))

	w = s.do(t, http.MethodPut, "/api/v1/files/"+id+"/publish", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[fileJSON](t, w).IsPublic)

	for _, token := range []string{"", other} {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, dataPath, token, nil).Code)
	}

	w = s.do(t, http.MethodPut, "/api/v1/files/"+id+"/unpublish", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[fileJSON](t, w).IsPublic)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, dataPath, "", nil).Code)

	w = s.do(t, http.MethodGet, dataPath+"?size=42", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgInvalidSize, errorOf(t, w))

	// 其它用户不能修改可见性
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/v1/files/"+id+"/publish", other, nil).Code)
}

func TestFolderHasNoContent(t *testing.T) {
	s := newServer(t)
	token := s.issue("u1")

	w := s.do(t, http.MethodPost, "/api/v1/files", token, map[string]any{"name": "docs", "type": "folder", "isPublic": true})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/files/"+decode[fileJSON](t, w).ID+"/data", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgFolderHasNoContent, errorOf(t, w))
}

func TestStatsCachedAndInvalidated(t *testing.T) {
	s := newServer(t)
	token := s.issue("u1")

	w := s.do(t, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.EqualValues(t, 0, decode[map[string]int64](t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	require.Equal(t, http.StatusCreated,
		s.do(t, http.MethodPost, "/api/v1/files", token, map[string]any{"name": "docs", "type": "folder"}).Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	stats := decode[map[string]int64](t, w)
	assert.EqualValues(t, 1, stats["folders"])
	assert.EqualValues(t, 1, stats["total"])

	// 每个用户独立缓存
	w = s.do(t, http.MethodGet, "/api/v1/stats", s.issue("u2"), nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.EqualValues(t, 0, decode[map[string]int64](t, w)["total"])
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	for _, c := range storage.Components {
		w := s.do(t, http.MethodGet, "/api/v1/health/"+c, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, c)
		assert.Equal(t, map[string]string{"component": c, "status": "ok"}, decode[map[string]string](t, w))
	}
}
