package fusefs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"testing"

	"github.com/Mine4x/unsafeOS/kernel/ramfs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// fuseAvailable skips tests that need a real mount when /dev/fuse is absent.
func fuseAvailable(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}
}

func testMount(t *testing.T) (string, *ramfs.FS) {
	t.Helper()
	fuseAvailable(t)

	fs := ramfs.New()
	mountpoint := filepath.Join(t.TempDir(), "mount")

	server, err := Mount(Options{Mountpoint: mountpoint, FS: fs})
	if err != nil {
		t.Skipf("skipping: mount failed: %v", err)
	}

	t.Cleanup(func() {
		if err := server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
	})

	return mountpoint, fs
}

func TestToErrno(t *testing.T) {
	fs := ramfs.New()
	if err := fs.Write("/file", []byte("x")); err != nil {
		t.Fatal(err)
	}

	_, errMissing := fs.Read("/missing")
	_, errDir := fs.Read("/")
	_, errList := fs.ListDir("/file")
	errParent := fs.Write("/file/x", nil)
	errExists := fs.CreateDir("/file")
	_, errOffset := fs.WriteAt("/file", nil, -1)
	errTooLarge := fs.Truncate("/file", ramfs.MaxFileSize+1)

	specs := []struct {
		err error
		exp syscall.Errno
	}{
		{nil, 0},
		{errMissing, syscall.ENOENT},
		{errDir, syscall.EISDIR},
		{errList, syscall.ENOTDIR},
		{errParent, syscall.ENOTDIR},
		{errExists, syscall.EEXIST},
		{errOffset, syscall.EINVAL},
		{errTooLarge, syscall.EFBIG},
		{os.ErrClosed, syscall.EIO},
	}

	for specIndex, spec := range specs {
		if got := toErrno(spec.err); got != spec.exp {
			t.Errorf("[spec %d] expected errno %v for %v; got %v", specIndex, spec.exp, spec.err, got)
		}
	}
}

func TestMkdirOverExistingNode(t *testing.T) {
	fs := ramfs.New()
	if err := fs.CreateDir("/docs"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("/docs/keep.txt", []byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("/file", []byte("x")); err != nil {
		t.Fatal(err)
	}

	root := &node{fs: fs, path: "/", logger: slog.New(slog.DiscardHandler)}
	for specIndex, name := range []string{"docs", "file"} {
		if _, errno := root.Mkdir(context.Background(), name, 0o755, &fuse.EntryOut{}); errno != syscall.EEXIST {
			t.Errorf("[spec %d] expected EEXIST for %q; got %v", specIndex, name, errno)
		}
	}

	if data, err := fs.Read("/docs/keep.txt"); err != nil || string(data) != "data" {
		t.Fatalf("expected the existing directory to be untouched; got %q, %v", data, err)
	}
}

func TestFillAttr(t *testing.T) {
	var attr fuse.Attr

	fillAttr(ramfs.Info{Name: "dir", Kind: ramfs.KindDirectory, Size: 3}, &attr)
	if attr.Mode != dirMode || attr.Size != 0 {
		t.Fatalf("unexpected directory attributes: %+v", attr)
	}

	fillAttr(ramfs.Info{Name: "file", Kind: ramfs.KindFile, Size: 1000}, &attr)
	if attr.Mode != fileMode || attr.Size != 1000 || attr.Blocks != 2 {
		t.Fatalf("unexpected file attributes: %+v", attr)
	}
}

func TestReadRange(t *testing.T) {
	data := []byte("hello")

	specs := []struct {
		off  int64
		size int
		exp  string
	}{
		{0, 5, "hello"},
		{0, 100, "hello"},
		{1, 3, "ell"},
		{4, 10, "o"},
		{5, 1, ""},
		{10, 1, ""},
		{-1, 1, ""},
	}

	for specIndex, spec := range specs {
		if got := string(readRange(data, spec.off, spec.size)); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestMountOptionsValidation(t *testing.T) {
	if _, err := Mount(Options{FS: ramfs.New()}); err == nil {
		t.Error("expected an error without a mountpoint")
	}
	if _, err := Mount(Options{Mountpoint: t.TempDir()}); err == nil {
		t.Error("expected an error without a filesystem")
	}
}

func TestMountReadKernelFiles(t *testing.T) {
	mountpoint, fs := testMount(t)

	if err := fs.CreateDirAll("/welcome"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("/welcome/hello.txt", []byte("hello")); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(mountpoint, "welcome", "hello.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected %q; got %q", "hello", got)
	}

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "welcome" || !entries[0].IsDir() {
		t.Fatalf("unexpected root entries: %v", entries)
	}
}

func TestMountHostWrites(t *testing.T) {
	mountpoint, fs := testMount(t)

	if err := os.Mkdir(filepath.Join(mountpoint, "docs"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mountpoint, "docs", "note.txt"), []byte("first version"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mountpoint, "docs", "note.txt"), []byte("v2"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := fs.Read("/docs/note.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v2" {
		t.Fatalf("expected the host write to replace the contents; got %q", data)
	}

	names, err := fs.ListDir("/docs")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"note.txt"}) {
		t.Fatalf("unexpected directory contents: %v", names)
	}

	if err := os.Mkdir(filepath.Join(mountpoint, "docs"), 0o755); !os.IsExist(err) {
		t.Fatalf("expected EEXIST for an existing directory; got %v", err)
	}
}
