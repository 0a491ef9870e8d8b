package addrspace

import "sync"

// registry maps a program name (as it would appear resolved from a VFS
// path) to the entry point the loader installs after a successful
// LoadELF. Populated by RegisterProgram, consulted by (*AddressSpace).LoadELF.
var (
	registryMu sync.RWMutex
	registry   = map[string]EntryPoint{}
)

// RegisterProgram installs a program under name so that writing its image
// (BuildImage(name)) into the VFS and execv-ing that path will run entry.
func RegisterProgram(name string, entry EntryPoint) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = entry
}

// LookupProgram returns the entry point registered under name, if any.
func LookupProgram(name string) (EntryPoint, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	return e, ok
}
