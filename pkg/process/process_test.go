package process

import (
	"bytes"
	"testing"

	"minikernel/pkg/addrspace"
	"minikernel/pkg/console"
	"minikernel/pkg/kerrno"
	"minikernel/pkg/kfs"
	"minikernel/pkg/vfs/memfs"
)

func newTestProc(t *testing.T) *Process {
	t.Helper()
	fs := kfs.New(memfs.New())
	con := console.New(bytes.NewReader(nil), &bytes.Buffer{})
	p, errno := CreateRunProgram("init", fs, con)
	if errno != 0 {
		t.Fatalf("CreateRunProgram: %v", errno)
	}
	t.Cleanup(func() { globalTable.Remove(p.Pid) })
	return p
}

func strp(s string) *string { return &s }

func TestOpenCloseLowestFD(t *testing.T) {
	p := newTestProc(t)
	path := "/a.txt"

	fd1, errno := p.Open(strp(path), O_RDWR|O_CREAT, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	if fd1 != 3 {
		t.Fatalf("expected first user fd to be 3, got %d", fd1)
	}
	if errno := p.Close(fd1); errno != 0 {
		t.Fatalf("close: %v", errno)
	}

	fd2, errno := p.Open(strp(path), O_RDWR, 0644)
	if errno != 0 {
		t.Fatalf("reopen: %v", errno)
	}
	if fd2 != fd1 {
		t.Fatalf("expected lowest-fd reuse: got %d, want %d", fd2, fd1)
	}
}

func TestCloseTwiceReturnsEBADF(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/a.txt"), O_RDWR|O_CREAT, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	if errno := p.Close(fd); errno != 0 {
		t.Fatalf("first close: %v", errno)
	}
	if errno := p.Close(fd); errno != kerrno.EBADF {
		t.Fatalf("second close: got %v, want %v", errno, kerrno.EBADF)
	}
}

func TestOpenEmptyPathIsInvalid(t *testing.T) {
	p := newTestProc(t)
	if _, errno := p.Open(strp(""), O_RDONLY, 0); errno != kerrno.EINVAL {
		t.Fatalf("expected EINVAL for empty path, got %v", errno)
	}
}

func TestWriteSeekReadRoundTrip(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/rt.txt"), O_RDWR|O_CREAT|O_TRUNC, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	payload := []byte("hello world")
	n, errno := p.Write(fd, payload)
	if errno != 0 || n != len(payload) {
		t.Fatalf("write: n=%d errno=%v", n, errno)
	}
	if _, errno := p.Lseek(fd, -int64(len(payload)), SEEK_CUR); errno != 0 {
		t.Fatalf("lseek: %v", errno)
	}
	readBack := make([]byte, len(payload))
	n, errno = p.Read(fd, readBack)
	if errno != 0 || n != len(payload) {
		t.Fatalf("read: n=%d errno=%v", n, errno)
	}
	if !bytes.Equal(readBack, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", readBack, payload)
	}
}

func TestSeekSemantics(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/seek.txt"), O_RDWR|O_CREAT|O_TRUNC, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	data := bytes.Repeat([]byte{'x'}, 26)
	if _, errno := p.Write(fd, data); errno != 0 {
		t.Fatalf("write: %v", errno)
	}

	cases := []struct {
		pos, whence int64
		want        int64
	}{
		{0, SEEK_SET, 0},
		{0, SEEK_END, 26},
		{10, SEEK_SET, 10},
		{5, SEEK_CUR, 15},
	}
	for _, c := range cases {
		got, errno := p.Lseek(fd, c.pos, int(c.whence))
		if errno != 0 {
			t.Fatalf("lseek(%d,%d): %v", c.pos, c.whence, errno)
		}
		if got != c.want {
			t.Fatalf("lseek(%d,%d) = %d, want %d", c.pos, c.whence, got, c.want)
		}
	}
}

func TestLseekNegativeOffsetRejected(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/neg.txt"), O_RDWR|O_CREAT, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	if _, errno := p.Lseek(fd, -1, SEEK_SET); errno != kerrno.EINVAL {
		t.Fatalf("expected EINVAL, got %v", errno)
	}
}

func TestDup2SelfIsNoop(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/dup.txt"), O_RDWR|O_CREAT, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	got, errno := p.Dup2(fd, fd)
	if errno != 0 || got != fd {
		t.Fatalf("dup2(fd,fd) = %d, %v; want %d, nil", got, errno, fd)
	}
}

func TestDup2Redirect(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/redirect.txt"), O_RDWR|O_CREAT|O_TRUNC, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	if _, errno := p.Dup2(fd, STDOUT); errno != 0 {
		t.Fatalf("dup2: %v", errno)
	}
	if _, errno := p.Write(STDOUT, []byte("hello\n")); errno != 0 {
		t.Fatalf("write via stdout: %v", errno)
	}
	p.Close(fd)
	p.Close(STDOUT)

	rfd, errno := p.Open(strp("/redirect.txt"), O_RDONLY, 0)
	if errno != 0 {
		t.Fatalf("reopen: %v", errno)
	}
	buf := make([]byte, 16)
	n, errno := p.Read(rfd, buf)
	if errno != 0 {
		t.Fatalf("read: %v", errno)
	}
	if string(buf[:n]) != "hello\n" {
		t.Fatalf("got %q, want %q", buf[:n], "hello\n")
	}
}

func TestForkSharesFileTableRefcount(t *testing.T) {
	p := newTestProc(t)
	fd, errno := p.Open(strp("/shared.txt"), O_RDWR|O_CREAT, 0644)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	of := p.FileTable.get(fd)
	before := of.refcount

	done := make(chan struct{})
	proceed := make(chan struct{})
	childPid, errno := p.Fork(func(child *Process) {
		if child.FileTable.get(fd) != of {
			t.Errorf("child does not share parent's open file at fd %d", fd)
		}
		close(done)
		<-proceed // keep the child's reference until the parent has checked
		child.Exit(0)
	})
	if errno != 0 {
		t.Fatalf("fork: %v", errno)
	}
	<-done

	of.mu.Lock()
	after := of.refcount
	of.mu.Unlock()
	close(proceed)
	if after != before+1 {
		t.Fatalf("refcount after fork = %d, want %d", after, before+1)
	}

	var status int
	if _, errno := p.Waitpid(childPid, &status, 0); errno != 0 {
		t.Fatalf("waitpid: %v", errno)
	}
}

func TestForkWaitExit(t *testing.T) {
	p := newTestProc(t)
	done := make(chan struct{})
	childPid, errno := p.Fork(func(child *Process) {
		close(done)
		child.Exit(7)
	})
	if errno != 0 {
		t.Fatalf("fork: %v", errno)
	}
	<-done

	var status int
	pid, errno := p.Waitpid(childPid, &status, 0)
	if errno != 0 {
		t.Fatalf("waitpid: %v", errno)
	}
	if pid != childPid {
		t.Fatalf("waitpid returned %d, want %d", pid, childPid)
	}
	if status != 7 {
		t.Fatalf("exit status = %d, want 7", status)
	}
}

func TestWaitpidBoundaryBehaviors(t *testing.T) {
	p := newTestProc(t)

	if _, errno := p.Waitpid(0, nil, 0); errno != kerrno.ESRCH {
		t.Fatalf("pid=0: got %v, want ESRCH", errno)
	}
	if _, errno := p.Waitpid(ProcMax+1, nil, 0); errno != kerrno.ESRCH {
		t.Fatalf("pid>ProcMax: got %v, want ESRCH", errno)
	}
	unused := 0
	for pid := 1; pid <= ProcMax; pid++ {
		if globalTable.Lookup(pid) == nil {
			unused = pid
			break
		}
	}
	if _, errno := p.Waitpid(unused, nil, 0); errno != kerrno.ESRCH {
		t.Fatalf("nonexistent pid: got %v, want ESRCH", errno)
	}

	done := make(chan struct{})
	childPid, _ := p.Fork(func(child *Process) {
		close(done)
		child.Exit(0)
	})
	<-done

	other := newTestProc(t)
	if _, errno := other.Waitpid(childPid, nil, 0); errno != kerrno.ECHILD {
		t.Fatalf("not a parent: got %v, want ECHILD", errno)
	}

	if _, errno := p.Waitpid(childPid, nil, 0); errno != 0 {
		t.Fatalf("first waitpid: %v", errno)
	}
	if _, errno := p.Waitpid(childPid, nil, 0); errno != kerrno.ESRCH {
		t.Fatalf("second waitpid on reaped child: got %v, want ESRCH", errno)
	}
}

func TestExecvArgvDelivery(t *testing.T) {
	p := newTestProc(t)

	gotArgv := make(chan []string, 1)
	addrspace.RegisterProgram("echo-argv-test", func(argv []string) int {
		gotArgv <- argv
		return 0
	})
	writeProgram(t, p, "/prog", "echo-argv-test")

	argv := []string{"/prog", "5", "10"}
	done := make(chan struct{})
	childPid, errno := p.Fork(func(child *Process) {
		defer close(done)
		if errno := child.Execv(strp("/prog"), &argv); errno != 0 {
			t.Errorf("execv: %v", errno)
		}
	})
	if errno != 0 {
		t.Fatalf("fork: %v", errno)
	}

	// done closes only after the child's goroutine ends, which is after
	// the program's entry point has run if execv succeeded.
	<-done
	select {
	case got := <-gotArgv:
		want := []string{"/prog", "5", "10"}
		if len(got) != len(want) {
			t.Fatalf("argc = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("argv[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	default:
		t.Fatalf("execv's program never ran")
	}

	var status int
	if _, errno := p.Waitpid(childPid, &status, 0); errno != 0 {
		t.Fatalf("waitpid: %v", errno)
	}
}

func TestExecvInvalidInputs(t *testing.T) {
	p := newTestProc(t)
	if errno := p.Execv(nil, &[]string{"x"}); errno != kerrno.EFAULT {
		t.Fatalf("nil program: got %v, want EFAULT", errno)
	}
	argv := []string{"x"}
	if errno := p.Execv(strp("/does/not/exist"), &argv); errno != kerrno.ENOENT {
		t.Fatalf("missing program: got %v, want ENOENT", errno)
	}
}

func writeProgram(t *testing.T, p *Process, path, name string) {
	t.Helper()
	fd, errno := p.Open(strp(path), O_WRONLY|O_CREAT|O_TRUNC, 0755)
	if errno != 0 {
		t.Fatalf("open program file: %v", errno)
	}
	if _, errno := p.Write(fd, addrspace.BuildImage(name)); errno != 0 {
		t.Fatalf("write program image: %v", errno)
	}
	if errno := p.Close(fd); errno != 0 {
		t.Fatalf("close program file: %v", errno)
	}
}
