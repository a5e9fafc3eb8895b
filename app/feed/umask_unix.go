//go:build unix

package feed

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

var (
	umaskOnce sync.Once
	umask     os.FileMode
)

// currentUmask returns the process umask as read on first use. Reading it
// means setting it, so the mask is 0666 for a moment; call LoadUmask before
// starting goroutines that create files. Later umask changes are not seen.
func currentUmask() os.FileMode {
	umaskOnce.Do(func() {
		mask := unix.Umask(0o666)
		unix.Umask(mask)
		umask = os.FileMode(mask)
	})
	return umask
}
