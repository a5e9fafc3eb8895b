package feed

import "os"

// LoadUmask reads and caches the umask applied to written feeds. Call it
// while the process is still single threaded.
func LoadUmask() os.FileMode {
	return currentUmask()
}
