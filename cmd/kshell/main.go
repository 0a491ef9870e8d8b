// Command kshell is an interactive front end onto the kernel's
// process/file-descriptor syscalls, for manual exploration of the same
// surface cmd/process-demo exercises programmatically.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"minikernel/pkg/addrspace"
	"minikernel/pkg/console"
	"minikernel/pkg/kfs"
	"minikernel/pkg/process"
	"minikernel/pkg/vfs/memfs"
)

func init() {
	addrspace.RegisterProgram("noop", func(argv []string) int {
		fmt.Printf("noop: argv=%v\n", argv)
		return 0
	})
}

func main() {
	fs := kfs.New(memfs.New())
	con := console.New(os.Stdin, os.Stdout)
	cur, errno := process.CreateRunProgram("kshell", fs, con)
	if errno != 0 {
		fmt.Fprintf(os.Stderr, "boot failed: %v\n", errno)
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "kshell> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		dispatch(cur, fields)
	}
}

func dispatch(p *process.Process, fields []string) {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "getpid":
		fmt.Println(p.Getpid())

	case "open":
		if len(args) < 1 {
			fmt.Println("usage: open <path> [flags-octal]")
			return
		}
		flags := process.O_RDWR | process.O_CREAT
		if len(args) > 1 {
			if v, err := strconv.ParseInt(args[1], 8, 32); err == nil {
				flags = int(v)
			}
		}
		path := args[0]
		fd, errno := p.Open(&path, flags, 0644)
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Println("fd", fd)

	case "close":
		fd := atoi(args, 0)
		if errno := p.Close(fd); errno != 0 {
			fmt.Println("error:", errno)
		}

	case "read":
		fd := atoi(args, 0)
		n := 256
		if len(args) > 1 {
			n = atoi(args[1:], 0)
		}
		buf := make([]byte, n)
		got, errno := p.Read(fd, buf)
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Printf("%q\n", buf[:got])

	case "write":
		fd := atoi(args, 0)
		if len(args) < 2 {
			fmt.Println("usage: write <fd> <text>")
			return
		}
		text := strings.Join(args[1:], " ")
		n, errno := p.Write(fd, []byte(text))
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Println("wrote", n)

	case "lseek":
		if len(args) < 3 {
			fmt.Println("usage: lseek <fd> <pos> <set|cur|end>")
			return
		}
		fd := atoi(args, 0)
		pos, _ := strconv.ParseInt(args[1], 10, 64)
		whence := process.SEEK_SET
		switch args[2] {
		case "cur":
			whence = process.SEEK_CUR
		case "end":
			whence = process.SEEK_END
		}
		off, errno := p.Lseek(fd, pos, whence)
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Println(off)

	case "dup2":
		if len(args) < 2 {
			fmt.Println("usage: dup2 <oldfd> <newfd>")
			return
		}
		_, errno := p.Dup2(atoi(args, 0), atoi(args[1:], 0))
		if errno != 0 {
			fmt.Println("error:", errno)
		}

	case "chdir":
		if len(args) < 1 {
			fmt.Println("usage: chdir <path>")
			return
		}
		if errno := p.Chdir(&args[0]); errno != 0 {
			fmt.Println("error:", errno)
		}

	case "pwd":
		buf := make([]byte, process.PathMax)
		n, errno := p.Getcwd(buf)
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Println(string(buf[:n]))

	case "fork":
		childPid, errno := p.Fork(func(child *process.Process) {
			fmt.Printf("[child %d running, will exit 0]\n", child.Getpid())
			child.Exit(0)
		})
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Println("child pid", childPid)

	case "wait":
		pid := atoi(args, 0)
		var status int
		got, errno := p.Waitpid(pid, &status, 0)
		if errno != 0 {
			fmt.Println("error:", errno)
			return
		}
		fmt.Printf("reaped %d, status=%d\n", got, status)

	case "exit":
		fmt.Println("bye")
		os.Exit(0)

	default:
		fmt.Println("unknown command:", cmd)
	}
}

func atoi(args []string, i int) int {
	if i >= len(args) {
		return 0
	}
	n, _ := strconv.Atoi(args[i])
	return n
}
