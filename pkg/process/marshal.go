package process

import (
	"minikernel/pkg/addrspace"
	"minikernel/pkg/kerrno"
)

// copyInPath mirrors the spec's copyinstr step for a single pathname:
// ptr standing for the user pointer (nil for a null pointer, which this
// collaborator-free implementation uses in place of a real bad-address
// fault), bounded by PathMax and rejecting the empty string.
func copyInPath(ptr *string) (string, kerrno.Errno) {
	if ptr == nil {
		return "", kerrno.EFAULT
	}
	s := *ptr
	if len(s)+1 > PathMax {
		return "", kerrno.ENAMETOOLONG
	}
	if s == "" {
		return "", kerrno.EINVAL
	}
	return s, 0
}

// copyInArgv mirrors execv's argument-vector copy-in: argv standing for
// the user pointer array (nil for a null pointer), bounded first by
// pointer-count (ArgMax/8) and then by the full marshalled footprint
// (string bytes rounded to 4 plus the pointer array), exactly the two
// checks §4.6 calls out.
func copyInArgv(argv *[]string) ([]string, kerrno.Errno) {
	if argv == nil {
		return nil, kerrno.EFAULT
	}
	args := *argv
	if len(args) > ArgMax/8 {
		return nil, kerrno.E2BIG
	}
	if addrspace.ArgvFootprint(args) > ArgMax {
		return nil, kerrno.E2BIG
	}
	return args, 0
}
