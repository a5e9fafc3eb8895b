//go:build !unix

package feed

import "os"

func currentUmask() os.FileMode {
	return 0o022
}
