package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/queue"
)

// memStore 内存 FileStore，按插入顺序保存.
type memStore struct {
	mu      sync.Mutex
	order   []string
	byID    map[string]model.File
	seq     int
	failGet error
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]model.File{}}
}

func (m *memStore) Create(_ context.Context, f *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	f.ID = fmt.Sprintf("f%04d", m.seq)
	m.byID[f.ID] = *f
	m.order = append(m.order, f.ID)

	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet != nil {
		return nil, m.failGet
	}

	f, ok := m.byID[id]
	if !ok {
		return nil, model.ErrRecordNotFound
	}

	return &f, nil
}

func (m *memStore) FindOwned(ctx context.Context, id, ownerID string) (*model.File, error) {
	f, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.OwnerID != ownerID {
		return nil, model.ErrRecordNotFound
	}

	return f, nil
}

func (m *memStore) List(_ context.Context, ownerID string, parent model.ParentID, offset, limit int) ([]model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []model.File

	for _, id := range m.order {
		f := m.byID[id]
		if f.OwnerID == ownerID && f.ParentID.Key() == parent.Key() {
			matched = append(matched, f)
		}
	}

	if offset >= len(matched) {
		return []model.File{}, nil
	}

	end := min(offset+limit, len(matched))

	return matched[offset:end], nil
}

func (m *memStore) SetPublic(ctx context.Context, id, ownerID string, public bool) (*model.File, error) {
	f, err := m.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f.IsPublic = public
	m.byID[id] = *f

	return f, nil
}

func (m *memStore) CountByType(_ context.Context, ownerID string) (map[model.FileType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := map[model.FileType]int64{}

	for _, f := range m.byID {
		if ownerID == "" || f.OwnerID == ownerID {
			out[f.Type]++
		}
	}

	return out, nil
}

func (m *memStore) ListByType(context.Context, model.FileType, string, int) ([]model.File, error) {
	return nil, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) Close() error { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.byID)
}

type fixture struct {
	svc   *service.FileService
	store *memStore
	fs    afero.Fs
	blobs blob.Store
	ps    *gochannel.GoChannel
}

const blobRoot = "/tmp/files_manager"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fsys := afero.NewMemMapFs()
	store := newMemStore()
	blobs := blob.NewLocalStore(fsys, blobRoot)
	ps := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })

	return &fixture{
		svc:   service.NewFileService(store, blobs, ps),
		store: store,
		fs:    fsys,
		blobs: blobs,
		ps:    ps,
	}
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func (fx *fixture) upload(t *testing.T, owner string, req types.UploadFileRequest) *model.File {
	t.Helper()

	f, err := fx.svc.Upload(context.Background(), owner, &req)
	require.NoError(t, err)

	return f
}

func (fx *fixture) blobCount(t *testing.T) int {
	t.Helper()

	entries, err := afero.ReadDir(fx.fs, blobRoot)
	if errors.Is(err, afero.ErrFileNotFound) {
		return 0
	}

	require.NoError(t, err)

	return len(entries)
}

func assertKind(t *testing.T, err error, kind service.Kind, msg string) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, kind, service.KindOf(err), err.Error())

	if msg != "" {
		assert.Equal(t, msg, service.PublicMessage(err))
	}
}

func TestUploadValidationHasNoSideEffects(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	regular := fx.upload(t, "u1", types.UploadFileRequest{Name: "a.txt", Type: "file", Data: b64("x")})

	cases := []struct {
		name string
		req  types.UploadFileRequest
		msg  string
	}{
		{"missing name", types.UploadFileRequest{Type: "file", Data: b64("x")}, service.MsgMissingName},
		{"name checked before type", types.UploadFileRequest{Type: "video"}, service.MsgMissingName},
		{"missing type", types.UploadFileRequest{Name: "a"}, service.MsgMissingType},
		{"unknown type", types.UploadFileRequest{Name: "a", Type: "video", Data: b64("x")}, service.MsgMissingType},
		{"missing data", types.UploadFileRequest{Name: "a", Type: "image"}, service.MsgMissingData},
		{"unknown parent", types.UploadFileRequest{Name: "a", Type: "folder", ParentID: model.Ref("nope")}, service.MsgParentNotFound},
		{"parent is a file", types.UploadFileRequest{Name: "a", Type: "file", Data: b64("x"), ParentID: model.Ref(regular.ID)}, service.MsgParentNotFolder},
		{"bad base64", types.UploadFileRequest{Name: "a", Type: "file", Data: "%%%"}, service.MsgInvalidData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Upload(ctx, "u1", &tc.req)
			assertKind(t, err, service.KindValidation, tc.msg)
		})
	}

	assert.Equal(t, 1, fx.store.count())
	assert.Equal(t, 1, fx.blobCount(t))
}

func TestUploadBlobWriteFailureLeavesNoRecord(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemStore()
	ps := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })

	readOnly := blob.NewLocalStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), blobRoot)
	svc := service.NewFileService(store, readOnly, ps)

	for _, typ := range []string{"file", "image"} {
		_, err := svc.Upload(ctx, "u1", &types.UploadFileRequest{Name: "p.png", Type: typ, Data: b64("img")})
		assertKind(t, err, service.KindInternal, "")
	}

	assert.Zero(t, store.count())

	ch, err := ps.Subscribe(ctx, queue.TopicThumbnailRequested)
	require.NoError(t, err)

	select {
	case msg := <-ch:
		t.Fatalf("unexpected job: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUploadKeepsNameAsGiven(t *testing.T) {
	fx := newFixture(t)

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "  ", Type: "folder"})
	assert.Equal(t, "  ", f.Name)
}

func TestUploadFolderAndChildren(t *testing.T) {
	fx := newFixture(t)

	folder := fx.upload(t, "u1", types.UploadFileRequest{Name: "docs", Type: "folder"})
	assert.True(t, folder.ParentID.IsRoot())
	assert.Empty(t, folder.LocalPath)
	assert.False(t, folder.IsPublic)
	assert.Equal(t, 0, fx.blobCount(t))

	child := fx.upload(t, "u1", types.UploadFileRequest{
		Name: "readme.md", Type: "file", Data: b64("# hi"), ParentID: model.Ref(folder.ID), IsPublic: true,
	})
	assert.Equal(t, folder.ID, child.ParentID.ID())
	assert.Equal(t, "u1", child.OwnerID)
	assert.True(t, child.IsPublic)
	require.NoError(t, blob.ValidateKey(child.LocalPath))

	raw, err := afero.ReadFile(fx.fs, blobRoot+"/"+child.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(raw))
}

func TestContentRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "notes.json", Type: "file", Data: b64(`{"hello":"world"}`)})

	content, err := fx.svc.GetContent(ctx, "u1", f.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"hello":"world"}`, string(content.Data))
	assert.Equal(t, "application/json", content.ContentType)
	assert.NotEmpty(t, content.ETag)
}

func TestVisibility(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "secret.txt", Type: "file", Data: b64("s")})

	for _, caller := range []string{"", "u2"} {
		_, err := fx.svc.GetContent(ctx, caller, f.ID, 0)
		assertKind(t, err, service.KindNotFound, service.MsgNotFound)
	}

	published, err := fx.svc.Publish(ctx, "u1", f.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)

	content, err := fx.svc.GetContent(ctx, "", f.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "s", string(content.Data))

	_, err = fx.svc.Unpublish(ctx, "u1", f.ID)
	require.NoError(t, err)

	_, err = fx.svc.GetContent(ctx, "", f.ID, 0)
	assertKind(t, err, service.KindNotFound, "")
}

func TestPublishIdempotentAndOwned(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "a.txt", Type: "file", Data: b64("a")})

	for range 2 {
		got, err := fx.svc.Publish(ctx, "u1", f.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPublic)
	}

	for range 2 {
		got, err := fx.svc.Unpublish(ctx, "u1", f.ID)
		require.NoError(t, err)
		assert.False(t, got.IsPublic)
	}

	_, err := fx.svc.Publish(ctx, "u2", f.ID)
	assertKind(t, err, service.KindNotFound, service.MsgNotFound)

	_, err = fx.svc.Unpublish(ctx, "u1", "missing")
	assertKind(t, err, service.KindNotFound, "")
}

func TestGetOwned(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "docs", Type: "folder"})

	got, err := fx.svc.Get(ctx, "u1", f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	_, err = fx.svc.Get(ctx, "u2", f.ID)
	assertKind(t, err, service.KindNotFound, "")
}

func TestGetStoreFailureIsInternal(t *testing.T) {
	fx := newFixture(t)
	fx.store.failGet = errors.New("connection reset")

	_, err := fx.svc.Get(context.Background(), "u1", "f0001")
	assertKind(t, err, service.KindInternal, service.MsgInternal)
}

func TestFolderHasNoContent(t *testing.T) {
	fx := newFixture(t)

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "docs", Type: "folder"})

	_, err := fx.svc.GetContent(context.Background(), "u1", f.ID, 0)
	assertKind(t, err, service.KindBadRequest, service.MsgFolderHasNoContent)
}

func TestMissingBlobIsNotFound(t *testing.T) {
	fx := newFixture(t)

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "a.bin", Type: "file", Data: b64("a")})
	require.NoError(t, fx.fs.Remove(blobRoot+"/"+f.LocalPath))

	_, err := fx.svc.GetContent(context.Background(), "u1", f.ID, 0)
	assertKind(t, err, service.KindNotFound, "")
}

func TestListPagination(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	folder := fx.upload(t, "u1", types.UploadFileRequest{Name: "docs", Type: "folder"})

	for i := range 3 {
		fx.upload(t, "u1", types.UploadFileRequest{
			Name: fmt.Sprintf("%d.txt", i), Type: "file", Data: b64("x"), ParentID: model.Ref(folder.ID),
		})
	}

	fx.upload(t, "u2", types.UploadFileRequest{Name: "other", Type: "folder"})

	children, err := fx.svc.List(ctx, "u1", model.Ref(folder.ID), 0)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "0.txt", children[0].Name)
	assert.Equal(t, "2.txt", children[2].Name)

	beyond, err := fx.svc.List(ctx, "u1", model.Ref(folder.ID), 5)
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	roots, err := fx.svc.List(ctx, "u1", model.Root(), -3)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, folder.ID, roots[0].ID)
}

func TestListPageSize(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := range service.PageSize + 5 {
		fx.upload(t, "u1", types.UploadFileRequest{Name: fmt.Sprintf("d%02d", i), Type: "folder"})
	}

	first, err := fx.svc.List(ctx, "u1", model.Root(), 0)
	require.NoError(t, err)
	assert.Len(t, first, service.PageSize)

	second, err := fx.svc.List(ctx, "u1", model.Root(), 1)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, "d20", second[0].Name)
}

func TestListPageBeyondIntRange(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := range 3 {
		fx.upload(t, "u1", types.UploadFileRequest{Name: fmt.Sprintf("d%d", i), Type: "folder"})
	}

	for _, page := range []int{service.ParsePage("4611686018427387904"), math.MaxInt, math.MaxInt / service.PageSize} {
		files, err := fx.svc.List(ctx, "u1", model.Root(), page)
		require.NoError(t, err, page)
		assert.NotNil(t, files, page)
		assert.Empty(t, files, page)
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 0, service.ParsePage(""))
	assert.Equal(t, 0, service.ParsePage("abc"))
	assert.Equal(t, 0, service.ParsePage("-1"))
	assert.Equal(t, 3, service.ParsePage("3"))
}

func TestParseSize(t *testing.T) {
	for _, s := range []string{"500", "250", "100"} {
		_, err := service.ParseSize(s)
		assert.NoError(t, err, s)
	}

	size, err := service.ParseSize("")
	require.NoError(t, err)
	assert.Zero(t, size)

	for _, s := range []string{"0", "300", "abc", "-100"} {
		_, err := service.ParseSize(s)
		assertKind(t, err, service.KindBadRequest, service.MsgInvalidSize)
	}
}

func TestThumbnailContent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := fx.upload(t, "u1", types.UploadFileRequest{Name: "p.png", Type: "image", Data: b64("original")})

	_, err := fx.svc.GetContent(ctx, "u1", f.ID, 250)
	assertKind(t, err, service.KindNotFound, "")

	require.NoError(t, fx.blobs.Put(ctx, blob.DerivedKey(f.LocalPath, 250), []byte("thumb")))

	content, err := fx.svc.GetContent(ctx, "u1", f.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, "thumb", string(content.Data))
	assert.Equal(t, "image/png", content.ContentType)
}

func receiveJob(t *testing.T, ch <-chan *message.Message) queue.ThumbnailJob {
	t.Helper()

	select {
	case msg := <-ch:
		msg.Ack()

		env, err := queue.ParseThumbnailRequested(msg)
		require.NoError(t, err)

		return env.Payload
	case <-time.After(5 * time.Second):
		t.Fatal("no thumbnail job published")

		return queue.ThumbnailJob{}
	}
}

func TestEnqueueOnlyForImages(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx.upload(t, "u1", types.UploadFileRequest{Name: "docs", Type: "folder"})
	fx.upload(t, "u1", types.UploadFileRequest{Name: "a.txt", Type: "file", Data: b64("a")})
	img := fx.upload(t, "u1", types.UploadFileRequest{Name: "p.png", Type: "image", Data: b64("img")})

	ch, err := fx.ps.Subscribe(ctx, queue.TopicThumbnailRequested)
	require.NoError(t, err)

	job := receiveJob(t, ch)
	assert.Equal(t, queue.ThumbnailJob{OwnerID: "u1", FileID: img.ID}, job)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra job: %s", extra.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                              { return nil }

func TestEnqueueFailureDoesNotFailUpload(t *testing.T) {
	store := newMemStore()
	svc := service.NewFileService(store, blob.NewLocalStore(afero.NewMemMapFs(), blobRoot), failingPublisher{})

	f, err := svc.Upload(context.Background(), "u1", &types.UploadFileRequest{Name: "p.png", Type: "image", Data: b64("img")})
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, 1, store.count())
}

func TestStats(t *testing.T) {
	fx := newFixture(t)

	fx.upload(t, "u1", types.UploadFileRequest{Name: "docs", Type: "folder"})
	fx.upload(t, "u1", types.UploadFileRequest{Name: "p.png", Type: "image", Data: b64("i")})
	fx.upload(t, "u1", types.UploadFileRequest{Name: "q.png", Type: "image", Data: b64("i")})
	fx.upload(t, "u2", types.UploadFileRequest{Name: "r.txt", Type: "file", Data: b64("i")})

	stats, err := fx.svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.FilesStats{Folders: 1, Images: 2, Total: 3}, *stats)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", service.ContentType("a.png", nil))
	assert.Equal(t, service.DefaultContentType, service.ContentType("noext", nil))
	assert.Equal(t, "application/pdf", service.ContentType("noext", []byte("%PDF-1.4\n")))
}
