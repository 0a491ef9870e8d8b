package addrspace

import (
	"bytes"
	"strings"
)

// imageMagic prefixes every loadable image this kernel recognizes. Real
// ELF parsing is outside this subsystem's scope (see the address-space
// manager collaborator boundary); binaries installed into the VFS at
// boot carry this tiny flat header instead of a real ELF header, just
// enough to exercise execv's open/load/rollback paths end to end.
const imageMagic = "MKIMG1:"

// EntryPoint is the simulated entry function of a loaded program: the
// user-mode code the new address space would jump to after execv. It
// receives argc/argv the way a real entry stub would have unpacked them
// from the stack, and returns the value the program would eventually
// pass to _exit.
type EntryPoint func(argv []string) int

// BuildImage renders a loadable image for name. Storing this in a VFS
// file is what a test or bootstrap routine writes so that execv("/path")
// has something real to vfs_open and load.
func BuildImage(name string) []byte {
	return []byte(imageMagic + name + "\n")
}

// ParseImage extracts the program name from image bytes produced by
// BuildImage. It returns ok=false if data does not carry the magic
// header, mirroring an ELF loader's sanity check on the e_ident field.
func ParseImage(data []byte) (name string, ok bool) {
	if !bytes.HasPrefix(data, []byte(imageMagic)) {
		return "", false
	}
	rest := data[len(imageMagic):]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(string(rest)), true
}
