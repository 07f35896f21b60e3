package local

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New(context.Background(), t.TempDir())
	require.NoError(t, err)
	return a
}

func TestNew_CreatesRoot(t *testing.T) {
	root := t.TempDir() + "/nested/storage"
	a, err := New(context.Background(), root)
	require.NoError(t, err)

	exists, err := a.DirExists(context.Background(), "")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDirLifecycle(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	exists, err := a.DirExists(ctx, "docs")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, a.MakeDir(ctx, "docs/sub"))

	exists, err = a.DirExists(ctx, "docs")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, a.RemoveDir(ctx, "docs"))
	exists, err = a.DirExists(ctx, "docs")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWriteAndReadFile(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	require.NoError(t, a.WriteFile(ctx, "docs/hello.txt", strings.NewReader("hello world")))

	exists, err := a.FileExists(ctx, "docs/hello.txt")
	require.NoError(t, err)
	require.True(t, exists)

	size, err := a.FileSize(ctx, "docs/hello.txt")
	require.NoError(t, err)
	require.Equal(t, int64(11), size)

	r, err := a.OpenRead(ctx, "docs/hello.txt")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestFileExists_DirectoryIsNotAFile(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)
	require.NoError(t, a.MakeDir(ctx, "docs"))

	exists, err := a.FileExists(ctx, "docs")
	require.NoError(t, err)
	require.False(t, exists)

	isDir, err := a.DirExists(ctx, "docs")
	require.NoError(t, err)
	require.True(t, isDir)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	require.NoError(t, a.MakeDir(ctx, "docs/sub"))
	require.NoError(t, a.WriteFile(ctx, "docs/a.txt", strings.NewReader("aaa")))
	require.NoError(t, a.WriteFile(ctx, "docs/.hidden", strings.NewReader("x")))

	infos, err := a.List(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, infos, 3)

	byName := map[string]int{}
	for i, info := range infos {
		byName[info.Name] = i
	}

	require.True(t, infos[byName["sub"]].Dir)
	require.False(t, infos[byName["a.txt"]].Dir)
	require.Equal(t, int64(3), infos[byName["a.txt"]].Size)
	require.True(t, infos[byName[".hidden"]].Hidden)
	require.False(t, infos[byName["a.txt"]].Hidden)
}

func TestCopy_File(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)
	require.NoError(t, a.WriteFile(ctx, "src.txt", strings.NewReader("payload")))

	require.NoError(t, a.Copy(ctx, "src.txt", "dst.txt", false))

	for _, p := range []string{"src.txt", "dst.txt"} {
		exists, err := a.FileExists(ctx, p)
		require.NoError(t, err)
		require.True(t, exists, p)
	}
}

func TestCopy_DirectoryRecursive(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)
	require.NoError(t, a.MakeDir(ctx, "src/nested"))
	require.NoError(t, a.WriteFile(ctx, "src/a.txt", strings.NewReader("a")))
	require.NoError(t, a.WriteFile(ctx, "src/nested/b.txt", strings.NewReader("b")))

	require.NoError(t, a.Copy(ctx, "src", "dst", true))

	for _, p := range []string{"dst/a.txt", "dst/nested/b.txt"} {
		exists, err := a.FileExists(ctx, p)
		require.NoError(t, err)
		require.True(t, exists, p)
	}
}

func TestMove_File(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)
	require.NoError(t, a.WriteFile(ctx, "old.txt", strings.NewReader("payload")))

	require.NoError(t, a.Move(ctx, "old.txt", "sub/new.txt", false))

	exists, err := a.FileExists(ctx, "old.txt")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = a.FileExists(ctx, "sub/new.txt")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRemoveFile_MissingIsNoError(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.RemoveFile(context.Background(), "never-existed.txt"))
}

func TestCancelledContextStopsIO(t *testing.T) {
	a := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, a.MakeDir(ctx, "docs"))
	_, err := a.List(ctx, "")
	require.Error(t, err)
}
