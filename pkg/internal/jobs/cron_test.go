package jobs_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/jobs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// fakeIndex 按 ID 升序保存记录.
type fakeIndex struct {
	files []model.File
}

func (f *fakeIndex) CountByType(_ context.Context, ownerID string) (map[model.FileType]int64, error) {
	out := map[model.FileType]int64{}

	for _, file := range f.files {
		if ownerID == "" || file.OwnerID == ownerID {
			out[file.Type]++
		}
	}

	return out, nil
}

func (f *fakeIndex) ListByType(_ context.Context, t model.FileType, afterID string, limit int) ([]model.File, error) {
	out := []model.File{}

	for _, file := range f.files {
		if file.Type != t || file.ID <= afterID {
			continue
		}

		out = append(out, file)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []queue.ThumbnailJob
}

func (p *recordingPublisher) Publish(_ string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, msg := range msgs {
		env, err := queue.ParseThumbnailRequested(msg)
		if err != nil {
			return err
		}

		p.jobs = append(p.jobs, env.Payload)
	}

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestRefreshStats(t *testing.T) {
	index := &fakeIndex{files: []model.File{
		{ID: "a", OwnerID: "u1", Type: model.TypeFolder},
		{ID: "b", OwnerID: "u1", Type: model.TypeImage},
		{ID: "c", OwnerID: "u2", Type: model.TypeImage},
	}}

	require.NoError(t, jobs.RefreshStats(context.Background(), index))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues("folder")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues("file")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues("image")), 0)
}

func TestBackfillThumbnailsPagesAndSkipsDone(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewLocalStore(afero.NewMemMapFs(), "/tmp/files_manager")
	index := &fakeIndex{}

	// 150 张图片，偶数张已有缩略图
	for i := range 150 {
		key := fmt.Sprintf("blob%03d", i)
		index.files = append(index.files, model.File{
			ID:        fmt.Sprintf("f%03d", i),
			OwnerID:   "u1",
			Type:      model.TypeImage,
			LocalPath: key,
		})

		if i%2 == 0 {
			require.NoError(t, blobs.Put(ctx, blob.DerivedKey(key, 100), []byte("thumb")))
		}
	}

	index.files = append(index.files, model.File{ID: "z000", OwnerID: "u1", Type: model.TypeFile, LocalPath: "plain"})

	pub := &recordingPublisher{}

	n, err := jobs.BackfillThumbnails(ctx, jobs.Deps{Files: index, Blobs: blobs, Publisher: pub})
	require.NoError(t, err)
	assert.Equal(t, 75, n)
	require.Len(t, pub.jobs, 75)
	assert.Equal(t, queue.ThumbnailJob{OwnerID: "u1", FileID: "f001"}, pub.jobs[0])
	assert.Equal(t, queue.ThumbnailJob{OwnerID: "u1", FileID: "f149"}, pub.jobs[74])
}

func TestRegisterCronJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sched.Stop() })

	deps := jobs.Deps{
		Files:     &fakeIndex{},
		Blobs:     blob.NewLocalStore(afero.NewMemMapFs(), "/data"),
		Publisher: &recordingPublisher{},
	}

	cfg := &configs.SchedulerConfig{StatsRefreshCron: "* * * * *", ThumbnailBackfill: "0 * * * *"}
	require.NoError(t, jobs.RegisterCronJobs(context.Background(), sched, cfg, deps))

	infos := sched.GetJobInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, jobs.JobStatsRefresh, infos[0].Name)
	assert.Equal(t, jobs.JobThumbnailBackfill, infos[1].Name)

	assert.Error(t, jobs.RegisterCronJobs(context.Background(), sched, cfg, deps), "duplicate names")
	assert.Error(t, jobs.RegisterCronJobs(context.Background(), sched, cfg, jobs.Deps{}))
}
