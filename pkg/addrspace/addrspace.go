// Package addrspace is a stand-in for the kernel's address-space manager:
// create/copy/destroy/activate, stack definition and argv push, and ELF
// loading. The real spec treats all of this as an external collaborator
// (out of scope for the process/file-descriptor subsystem); this package
// gives that collaborator a small, concrete, in-process implementation so
// fork and execv can be exercised end to end without a real MMU, page
// tables, or ELF parser.
package addrspace

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// stackSize is the simulated user stack's fixed size in bytes.
const stackSize = 64 * 1024

// AddressSpace is a per-process virtual-memory image. Addresses are plain
// indices into stack, growing down from len(stack) the way a real user
// stack grows down from its high-address base.
type AddressSpace struct {
	stack []byte
	sp    int
	entry EntryPoint
	prog  string
}

// Create returns a fresh, empty address space with an undefined entry
// point; callers must LoadELF before DefineStack is meaningful.
func Create() *AddressSpace {
	return &AddressSpace{
		stack: make([]byte, stackSize),
		sp:    stackSize,
	}
}

// Copy deep-copies src, the way fork's as_copy duplicates a parent's
// address space for its child. The child gets its own stack bytes; later
// mutation by either process is invisible to the other.
func Copy(src *AddressSpace) *AddressSpace {
	cp := &AddressSpace{
		stack: make([]byte, len(src.stack)),
		sp:    src.sp,
		entry: src.entry,
		prog:  src.prog,
	}
	copy(cp.stack, src.stack)
	return cp
}

// Destroy releases the address space. Go's GC reclaims the backing
// storage; Destroy exists so callers follow the same create/destroy
// discipline the real collaborator requires and so a destroyed space is
// unambiguously unusable.
func (a *AddressSpace) Destroy() {
	a.stack = nil
	a.sp = 0
	a.entry = nil
}

// Activate and Deactivate stand in for loading/unloading this address
// space's page tables into the running CPU. There is no hardware MMU
// here, so both are no-ops; they exist so call sites mirror the real
// as_activate()/as_deactivate() sequencing exactly (e.g. around fork's
// parent/child switch and execv's point of no return).
func (a *AddressSpace) Activate()   {}
func (a *AddressSpace) Deactivate() {}

// DefineStack (re)establishes the stack region and returns the simulated
// top-of-stack address a fresh program should start from.
func (a *AddressSpace) DefineStack() int {
	a.stack = make([]byte, stackSize)
	a.sp = stackSize
	return a.sp
}

// LoadELF parses a program image (see image.go) and installs its entry
// point into this address space. It plays the role of the real loader's
// ELF sanity check and segment mapping; a malformed image is reported the
// same way an invalid ELF header would be.
func (a *AddressSpace) LoadELF(data []byte) (EntryPoint, error) {
	name, ok := ParseImage(data)
	if !ok {
		return nil, errors.New("addrspace: not a recognized program image")
	}
	entry, ok := LookupProgram(name)
	if !ok {
		return nil, errors.Errorf("addrspace: no program registered as %q", name)
	}
	a.entry = entry
	a.prog = name
	return entry, nil
}

// Entry returns the currently loaded entry point, or nil if none.
func (a *AddressSpace) Entry() EntryPoint { return a.entry }

// pushBytes copies data onto the stack (growing down) and aligns the new
// stack pointer down to a multiple of align. It reports ok=false if the
// stack is exhausted.
func (a *AddressSpace) pushBytes(data []byte, align int) (addr int, ok bool) {
	a.sp -= len(data)
	if a.sp < 0 {
		return 0, false
	}
	copy(a.stack[a.sp:], data)
	addr = a.sp
	a.sp &^= (align - 1)
	return addr, true
}

// ArgvFootprint computes the total stack footprint (string bytes rounded
// to 4-byte boundaries, plus the pointer array including its null
// terminator) that PushArgv would need for args, without mutating the
// address space. Callers use this to reject oversized argv vectors before
// copying anything out, per the marshalling spec's pre-computed size check.
func ArgvFootprint(args []string) int {
	total := 0
	for _, s := range args {
		n := len(s) + 1 // string plus NUL terminator
		total += (n + 3) &^ 3
	}
	total += (len(args) + 1) * 8 // pointer array plus null terminator
	return total
}

// PushArgv marshals args onto the stack per the argv ABI: strings pushed
// high-to-low each 4-byte aligned, followed by a null-terminated pointer
// array 8-byte aligned for ABI entry. It returns argc, the user address of
// the pointer array, and the new (8-byte aligned) stack pointer.
func (a *AddressSpace) PushArgv(args []string) (argc, argvAddr, sp int, ok bool) {
	ptrs := make([]int, len(args)+1)
	for i := len(args) - 1; i >= 0; i-- {
		str := append([]byte(args[i]), 0)
		addr, pushed := a.pushBytes(str, 4)
		if !pushed {
			return 0, 0, 0, false
		}
		ptrs[i] = addr
	}
	ptrs[len(args)] = 0

	buf := make([]byte, len(ptrs)*8)
	for i, p := range ptrs {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(p))
	}
	arrAddr, pushed := a.pushBytes(buf, 8)
	if !pushed {
		return 0, 0, 0, false
	}
	return len(args), arrAddr, a.sp, true
}

// ReadArgv decodes the argv the way a libc _start stub would, by reading
// back the pointer array and strings PushArgv wrote. It exists so tests
// and the simulated program entry points can observe exactly what
// marshalling produced, proving the round trip.
func (a *AddressSpace) ReadArgv(argc, argvAddr int) []string {
	out := make([]string, argc)
	for i := 0; i < argc; i++ {
		off := argvAddr + i*8
		addr := int(binary.LittleEndian.Uint64(a.stack[off : off+8]))
		end := addr
		for end < len(a.stack) && a.stack[end] != 0 {
			end++
		}
		out[i] = string(a.stack[addr:end])
	}
	return out
}
