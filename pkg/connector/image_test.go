package connector_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elfin-go/elfin/pkg/connector"
	"github.com/elfin-go/elfin/pkg/volume"
)

func TestDim(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, nil)
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(testPNG(t, 320, 240))))

	resp := conn.Dispatch(ctx, &connector.Request{Cmd: "dim", Target: volume.Token(v, "photo.png")})
	dim, ok := resp.(*connector.DimResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
	require.Equal(t, "320x240", dim.Dim)
}

func TestDim_NonImageRejected(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, nil)
	require.NoError(t, adapter.WriteFile(ctx, "notes.txt", strings.NewReader("x")))

	resp := conn.Dispatch(ctx, &connector.Request{Cmd: "dim", Target: volume.Token(v, "notes.txt")})
	_, ok := resp.(connector.ErrorResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
}

func TestResize_Modes(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, nil)
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(testPNG(t, 200, 100))))
	target := volume.Token(v, "photo.png")

	assertDim := func(want string) {
		t.Helper()
		resp := conn.Dispatch(ctx, &connector.Request{Cmd: "dim", Target: target})
		dim, ok := resp.(*connector.DimResponse)
		require.True(t, ok, "got %T: %+v", resp, resp)
		require.Equal(t, want, dim.Dim)
	}

	resp := conn.Dispatch(ctx, &connector.Request{
		Cmd: "resize", Target: target, Mode: "resize", Width: 100, Height: 50,
	})
	_, ok := resp.(*connector.ChangedResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
	assertDim("100x50")

	resp = conn.Dispatch(ctx, &connector.Request{
		Cmd: "resize", Target: target, Mode: "crop", X: 10, Y: 10, Width: 40, Height: 20,
	})
	_, ok = resp.(*connector.ChangedResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
	assertDim("40x20")

	resp = conn.Dispatch(ctx, &connector.Request{
		Cmd: "resize", Target: target, Mode: "rotate", Degrees: 90,
	})
	_, ok = resp.(*connector.ChangedResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
	assertDim("20x40")
}

func TestResize_MissingGeometry(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, nil)
	original := testPNG(t, 80, 60)
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(original)))
	target := volume.Token(v, "photo.png")

	for _, mode := range []string{"resize", "crop"} {
		resp := conn.Dispatch(ctx, &connector.Request{Cmd: "resize", Target: target, Mode: mode})
		errResp, ok := resp.(connector.ErrorResponse)
		require.True(t, ok, "mode %q: got %T: %+v", mode, resp, resp)
		require.Equal(t, "errCmdParams", errResp.Error, "mode %q", mode)
	}

	// The image was not touched.
	resp := conn.Dispatch(ctx, &connector.Request{Cmd: "dim", Target: target})
	dim, ok := resp.(*connector.DimResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
	require.Equal(t, "80x60", dim.Dim)
}

func TestResize_UnknownMode(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, nil)
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(testPNG(t, 10, 10))))

	resp := conn.Dispatch(ctx, &connector.Request{
		Cmd: "resize", Target: volume.Token(v, "photo.png"), Mode: "stretch",
	})
	errResp, ok := resp.(connector.ErrorResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)
	require.Equal(t, "errUnknownCmd", errResp.Error)
}

func TestTmb_GeneratesThumbnails(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, func(v *volume.Volume) {
		v.TmbURL = "/tmb/"
	})
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(testPNG(t, 300, 300))))
	require.NoError(t, adapter.WriteFile(ctx, "notes.txt", strings.NewReader("x")))

	target := volume.Token(v, "photo.png")
	resp := conn.Dispatch(ctx, &connector.Request{Cmd: "tmb", Targets: []string{
		target,
		volume.Token(v, "notes.txt"),
	}})
	tmb, ok := resp.(*connector.TmbResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)

	// Only the image gets an entry; the text file is silently skipped.
	require.Len(t, tmb.Images, 1)
	thumbToken := tmb.Images[target]
	require.NotEmpty(t, thumbToken)

	// The returned token streams the cached image.
	stream, err := conn.OpenThumbnail(ctx, thumbToken)
	require.NoError(t, err)
	defer stream.Body.Close()
	require.Equal(t, "image/png", stream.Mime)
}

func TestRename_InvalidatesThumbnail(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, func(v *volume.Volume) {
		v.TmbURL = "/tmb/"
	})
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(testPNG(t, 300, 300))))

	cachePath, err := conn.Thumbs().Ensure(ctx, v, "photo.png")
	require.NoError(t, err)
	exists, err := adapter.FileExists(ctx, cachePath)
	require.NoError(t, err)
	require.True(t, exists)

	resp := conn.Dispatch(ctx, &connector.Request{
		Cmd: "rename", Target: volume.Token(v, "photo.png"), Name: "renamed.png",
	})
	_, ok := resp.(*connector.AddedRemovedResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)

	// The stale cache entry is gone with the old name.
	exists, err = adapter.FileExists(ctx, cachePath)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestResize_InvalidatesThumbnail(t *testing.T) {
	ctx := context.Background()
	conn, v, adapter := newTestConnector(t, func(v *volume.Volume) {
		v.TmbURL = "/tmb/"
	})
	require.NoError(t, adapter.WriteFile(ctx, "photo.png", bytes.NewReader(testPNG(t, 300, 300))))

	cachePath, err := conn.Thumbs().Ensure(ctx, v, "photo.png")
	require.NoError(t, err)

	resp := conn.Dispatch(ctx, &connector.Request{
		Cmd: "resize", Target: volume.Token(v, "photo.png"), Mode: "resize", Width: 50, Height: 50,
	})
	_, ok := resp.(*connector.ChangedResponse)
	require.True(t, ok, "got %T: %+v", resp, resp)

	exists, err := adapter.FileExists(ctx, cachePath)
	require.NoError(t, err)
	require.False(t, exists)
}
