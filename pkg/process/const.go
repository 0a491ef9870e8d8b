package process

// Fixed-size resource bounds surfaced to user mode.
const (
	ProcMax = 64             // highest valid PID; table has ProcMax+1 slots
	OpenMax = 32             // descriptors per process
	PathMax = 4096           // bytes, including the terminating NUL
	ArgMax  = 64 * 1024      // bytes, argv stack footprint (strings + pointer array)
)

// Reserved descriptors, bound by CreateRunProgram before any user open()
// can claim them.
const (
	STDIN = iota
	STDOUT
	STDERR
)

// open() flags. Values match conventional Unix numbering so a userland
// program linked against a real libc header would agree with this kernel.
const (
	O_RDONLY = 0x0
	O_WRONLY = 0x1
	O_RDWR   = 0x2
	O_ACCMODE = 0x3

	O_CREAT  = 0o100
	O_EXCL   = 0o200
	O_TRUNC  = 0o1000
	O_APPEND = 0o2000
)

// lseek() whence values.
const (
	SEEK_SET = 0
	SEEK_CUR = 1
	SEEK_END = 2
)

// waitpid() options. The spec supports none; any nonzero value is
// rejected, so this exists only to give INVALID-handling code something
// concrete to compare against.
const WaitOptionsNone = 0
