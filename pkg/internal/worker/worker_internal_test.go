package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/queue"
)

type oneFile model.File

func (f oneFile) FindOwned(_ context.Context, id, ownerID string) (*model.File, error) {
	if id != f.ID || ownerID != f.OwnerID {
		return nil, model.ErrRecordNotFound
	}

	file := model.File(f)

	return &file, nil
}

func TestProcessKeepsWidthsWrittenBeforeEncodeFailure(t *testing.T) {
	ctx := context.Background()
	store := blob.NewLocalStore(afero.NewMemMapFs(), "/tmp/files_manager")

	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, image.NewNRGBA(image.Rect(0, 0, 600, 300))))

	key := blob.NewKey()
	require.NoError(t, store.Put(ctx, key, src.Bytes()))

	file := oneFile{ID: "img1", OwnerID: "u1", Name: "a.png", Type: model.TypeImage, LocalPath: key}

	orig := encodeImage
	t.Cleanup(func() { encodeImage = orig })

	encodeImage = func(w io.Writer, img image.Image, format imaging.Format, opts ...imaging.EncodeOption) error {
		if img.Bounds().Dx() == 250 {
			return errors.New("encoder broke")
		}

		return orig(w, img, format, opts...)
	}

	w := New(file, store, nil, Options{})
	err := w.Process(ctx, queue.ThumbnailJob{OwnerID: "u1", FileID: "img1"})
	require.ErrorIs(t, err, ErrThumbnailGenerationFailed)

	ok, err := store.Exists(ctx, blob.DerivedKey(key, 500))
	require.NoError(t, err)
	assert.True(t, ok, "500 is written before 250 fails")

	for _, width := range []int{250, 100} {
		ok, err := store.Exists(ctx, blob.DerivedKey(key, width))
		require.NoError(t, err)
		assert.False(t, ok, width)
	}
}
