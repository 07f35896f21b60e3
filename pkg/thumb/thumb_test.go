package thumb

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elfin-go/elfin/pkg/picture"
	"github.com/elfin-go/elfin/pkg/storage/memory"
	"github.com/elfin-go/elfin/pkg/volume"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newThumbVolume() *volume.Volume {
	return &volume.Volume{
		Alias:         "pics",
		Adapter:       memory.New(),
		TmbURL:        "/tmb/",
		DefaultAccess: volume.Access{Read: true, Write: true},
	}
}

func TestCanThumbnail(t *testing.T) {
	m := NewManager(picture.NewStdEditor())
	v := newThumbVolume()

	require.True(t, m.CanThumbnail(v, "photo.png"))
	require.True(t, m.CanThumbnail(v, "dir/photo.JPG"))
	require.False(t, m.CanThumbnail(v, "notes.txt"))
	require.False(t, m.CanThumbnail(v, ".tmb/photo_abc.png"), "cache entries are never thumbnailed")
	require.False(t, m.CanThumbnail(v, ".tmb"))

	noTmb := newThumbVolume()
	noTmb.TmbURL = ""
	require.False(t, m.CanThumbnail(noTmb, "photo.png"))

	noEditor := NewManager(nil)
	require.False(t, noEditor.CanThumbnail(v, "photo.png"))
}

func TestEnsure_GeneratesAndCaches(t *testing.T) {
	ctx := context.Background()
	m := NewManager(picture.NewStdEditor())
	v := newThumbVolume()

	require.NoError(t, v.Adapter.MakeDir(ctx, "album"))
	require.NoError(t, v.Adapter.WriteFile(ctx, "album/photo.png", bytes.NewReader(pngBytes(t, 400, 200))))

	cachePath, err := m.Ensure(ctx, v, "album/photo.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(cachePath, volume.TmbDir+"/album/"), "cache mirrors the source directory, got %q", cachePath)

	exists, err := v.Adapter.FileExists(ctx, cachePath)
	require.NoError(t, err)
	require.True(t, exists)

	// The cached bytes are a real downscaled image.
	r, err := v.Adapter.OpenRead(ctx, cachePath)
	require.NoError(t, err)
	defer r.Close()
	img, err := png.Decode(r)
	require.NoError(t, err)
	require.Equal(t, volume.DefaultTmbSize, img.Bounds().Dx())

	// Second call finds the cache and returns the same path.
	again, err := m.Ensure(ctx, v, "album/photo.png")
	require.NoError(t, err)
	require.Equal(t, cachePath, again)
}

func TestCachePath_ChangesWithMTime(t *testing.T) {
	ctx := context.Background()
	m := NewManager(picture.NewStdEditor())
	v := newThumbVolume()

	require.NoError(t, v.Adapter.WriteFile(ctx, "photo.png", bytes.NewReader(pngBytes(t, 100, 100))))
	first, err := m.CachePath(ctx, v, "photo.png")
	require.NoError(t, err)

	// Rewriting bumps the modification time and re-keys the cache.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, v.Adapter.WriteFile(ctx, "photo.png", bytes.NewReader(pngBytes(t, 100, 100))))
	second, err := m.CachePath(ctx, v, "photo.png")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestInvalidate_File(t *testing.T) {
	ctx := context.Background()
	m := NewManager(picture.NewStdEditor())
	v := newThumbVolume()

	require.NoError(t, v.Adapter.WriteFile(ctx, "photo.png", bytes.NewReader(pngBytes(t, 200, 200))))
	cachePath, err := m.Ensure(ctx, v, "photo.png")
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(ctx, v, "photo.png", false))

	exists, err := v.Adapter.FileExists(ctx, cachePath)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestInvalidate_DirectoryRemovesMirror(t *testing.T) {
	ctx := context.Background()
	m := NewManager(picture.NewStdEditor())
	v := newThumbVolume()

	require.NoError(t, v.Adapter.MakeDir(ctx, "album"))
	require.NoError(t, v.Adapter.WriteFile(ctx, "album/photo.png", bytes.NewReader(pngBytes(t, 200, 200))))
	_, err := m.Ensure(ctx, v, "album/photo.png")
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(ctx, v, "album", true))

	exists, err := v.Adapter.DirExists(ctx, volume.TmbDir+"/album")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestInvalidate_NoCacheIsNoOp(t *testing.T) {
	ctx := context.Background()
	m := NewManager(picture.NewStdEditor())
	v := newThumbVolume()

	require.NoError(t, v.Adapter.WriteFile(ctx, "photo.png", bytes.NewReader(pngBytes(t, 10, 10))))
	require.NoError(t, m.Invalidate(ctx, v, "photo.png", false))
	require.NoError(t, m.Invalidate(ctx, v, "never-existed.png", false))
}
