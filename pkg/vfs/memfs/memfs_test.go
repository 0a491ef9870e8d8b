package memfs

import (
	"os"
	"testing"
)

func TestOpenCreateWriteReadRoundTrip(t *testing.T) {
	fs := New()
	f, err := fs.OpenFile("/a.txt", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := f.Seek(0, os.SEEK_SET); err != nil {
		t.Fatalf("seek: %v", err)
	}
	buf := make([]byte, 5)
	n, err := f.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("got %q, want %q", buf[:n], "hello")
	}
}

func TestOpenWithoutCreateOnMissingPathFails(t *testing.T) {
	fs := New()
	if _, err := fs.OpenFile("/missing.txt", os.O_RDONLY, 0); err != ErrFileNotFound {
		t.Fatalf("got %v, want ErrFileNotFound", err)
	}
}

func TestExclusiveCreateOnExistingPathFails(t *testing.T) {
	fs := New()
	if _, err := fs.OpenFile("/x.txt", os.O_CREATE, 0644); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := fs.OpenFile("/x.txt", os.O_CREATE|os.O_EXCL, 0644); err != ErrFileExists {
		t.Fatalf("got %v, want ErrFileExists", err)
	}
}

func TestTruncateClearsExistingData(t *testing.T) {
	fs := New()
	f, err := fs.OpenFile("/t.txt", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte("old contents")); err != nil {
		t.Fatalf("write: %v", err)
	}
	f2, err := fs.OpenFile("/t.txt", os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		t.Fatalf("reopen with trunc: %v", err)
	}
	info, err := f2.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size != 0 {
		t.Fatalf("size after truncate = %d, want 0", info.Size)
	}
}

func TestNestedPathAutoVivifiesParentDirectories(t *testing.T) {
	fs := New()
	f, err := fs.OpenFile("/bin/adder", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		t.Fatalf("open nested path: %v", err)
	}
	if _, err := f.Write([]byte("image")); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirInfo, err := fs.Stat("/bin")
	if err != nil {
		t.Fatalf("stat /bin: %v", err)
	}
	if !dirInfo.IsDir {
		t.Fatalf("/bin should be a directory")
	}

	fileInfo, err := fs.Stat("/bin/adder")
	if err != nil {
		t.Fatalf("stat /bin/adder: %v", err)
	}
	if fileInfo.IsDir {
		t.Fatalf("/bin/adder should not be a directory")
	}
	if fileInfo.Size != int64(len("image")) {
		t.Fatalf("size = %d, want %d", fileInfo.Size, len("image"))
	}
}

func TestOpeningADirectoryFails(t *testing.T) {
	fs := New()
	if _, err := fs.OpenFile("/dir/file", os.O_CREATE, 0644); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fs.OpenFile("/dir", os.O_RDONLY, 0); err != ErrIsDirectory {
		t.Fatalf("got %v, want ErrIsDirectory", err)
	}
}

func TestRootStatIsAlwaysADirectory(t *testing.T) {
	fs := New()
	info, err := fs.Stat("/")
	if err != nil {
		t.Fatalf("stat /: %v", err)
	}
	if !info.IsDir {
		t.Fatalf("/ should be a directory")
	}
}

func TestSeekWhenceVariants(t *testing.T) {
	fs := New()
	f, err := fs.OpenFile("/s.txt", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte("0123456789")); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		pos         int64
		whence      int
		want        int64
	}{
		{0, os.SEEK_SET, 0},
		{0, os.SEEK_END, 10},
		{3, os.SEEK_SET, 3},
		{2, os.SEEK_CUR, 5},
	}
	for _, c := range cases {
		got, err := f.Seek(c.pos, int(c.whence))
		if err != nil {
			t.Fatalf("seek(%d,%d): %v", c.pos, c.whence, err)
		}
		if got != c.want {
			t.Fatalf("seek(%d,%d) = %d, want %d", c.pos, c.whence, got, c.want)
		}
	}
}

func TestSharedNodeVisibleAcrossIndependentOpens(t *testing.T) {
	fs := New()
	w, err := fs.OpenFile("/shared.txt", os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := fs.OpenFile("/shared.txt", os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "payload" {
		t.Fatalf("got %q, want %q", buf[:n], "payload")
	}
}
