// Command process-demo exercises the kernel's process and
// file-descriptor syscalls end to end against an in-memory filesystem
// and a real terminal console, the way a kernel's boot-time smoke test
// would.
package main

import (
	"fmt"
	"log"
	"os"

	"minikernel/pkg/addrspace"
	"minikernel/pkg/console"
	"minikernel/pkg/kerrno"
	"minikernel/pkg/kfs"
	"minikernel/pkg/process"
	"minikernel/pkg/vfs/memfs"
)

func must(errno kerrno.Errno, what string) {
	if errno != 0 {
		log.Fatalf("%s: %v", what, errno)
	}
}

func strp(s string) *string { return &s }

func main() {
	fmt.Println("=== minikernel process/fd demo ===")

	fs := kfs.New(memfs.New())
	con := console.New(os.Stdin, os.Stdout)

	init, errno := process.CreateRunProgram("init", fs, con)
	must(errno, "CreateRunProgram")
	fmt.Printf("init process: pid=%d\n", init.Getpid())

	fmt.Println("\n--- dup2 redirect ---")
	fd, errno := init.Open(strp("/greeting.txt"), process.O_RDWR|process.O_CREAT|process.O_TRUNC, 0644)
	must(errno, "open")
	_, errno = init.Dup2(fd, process.STDOUT)
	must(errno, "dup2")
	_, errno = init.Write(process.STDOUT, []byte("hello\n"))
	must(errno, "write via stdout")
	must(init.Close(fd), "close")
	must(init.Close(process.STDOUT), "close stdout")

	rfd, errno := init.Open(strp("/greeting.txt"), process.O_RDONLY, 0)
	must(errno, "reopen")
	buf := make([]byte, 32)
	n, errno := init.Read(rfd, buf)
	must(errno, "read")
	fmt.Printf("read back: %q\n", buf[:n])
	must(init.Close(rfd), "close")

	fmt.Println("\n--- seek semantics ---")
	sfd, errno := init.Open(strp("/seek.txt"), process.O_RDWR|process.O_CREAT|process.O_TRUNC, 0644)
	must(errno, "open")
	_, errno = init.Write(sfd, []byte("abcdefghijklmnopqrstuvwxyz"))
	must(errno, "write")
	for _, step := range []struct {
		pos, whence int64
	}{{0, process.SEEK_SET}, {0, process.SEEK_END}, {10, process.SEEK_SET}, {5, process.SEEK_CUR}} {
		off, errno := init.Lseek(sfd, step.pos, int(step.whence))
		must(errno, "lseek")
		fmt.Printf("lseek(%d, %d) -> %d\n", step.pos, step.whence, off)
	}
	must(init.Close(sfd), "close")

	fmt.Println("\n--- fork + inheritance + waitpid ---")
	ffd, errno := init.Open(strp("/fork.txt"), process.O_RDWR|process.O_CREAT|process.O_TRUNC, 0644)
	must(errno, "open")
	_, errno = init.Write(ffd, []byte("A"))
	must(errno, "write")

	done := make(chan struct{})
	childPid, errno := init.Fork(func(child *process.Process) {
		defer close(done)
		if _, errno := child.Write(ffd, []byte("B")); errno != 0 {
			log.Fatalf("child write: %v", errno)
		}
		child.Close(ffd)
		child.Exit(0)
	})
	must(errno, "fork")
	<-done

	must(init.Close(ffd), "close")
	var status int
	pid, errno := init.Waitpid(childPid, &status, 0)
	must(errno, "waitpid")
	fmt.Printf("reaped child %d with status %d\n", pid, status)

	rfd2, errno := init.Open(strp("/fork.txt"), process.O_RDONLY, 0)
	must(errno, "reopen")
	buf2 := make([]byte, 8)
	n2, errno := init.Read(rfd2, buf2)
	must(errno, "read")
	fmt.Printf("fork.txt contains: %q\n", buf2[:n2])

	fmt.Println("\n--- execv argv delivery ---")
	addrspace.RegisterProgram("adder", func(argv []string) int {
		fmt.Printf("adder running with argv=%v\n", argv)
		return 0
	})
	pfd, errno := init.Open(strp("/bin/adder"), process.O_WRONLY|process.O_CREAT|process.O_TRUNC, 0755)
	must(errno, "open program file")
	_, errno = init.Write(pfd, addrspace.BuildImage("adder"))
	must(errno, "write program image")
	must(init.Close(pfd), "close program file")

	execDone := make(chan struct{})
	argv := []string{"/bin/adder", "5", "10"}
	execPid, errno := init.Fork(func(child *process.Process) {
		defer close(execDone)
		if errno := child.Execv(strp("/bin/adder"), &argv); errno != 0 {
			log.Fatalf("execv: %v", errno)
		}
	})
	must(errno, "fork")
	<-execDone
	init.Waitpid(execPid, nil, 0)

	fmt.Println("\n=== demo complete ===")
}
