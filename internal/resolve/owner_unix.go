//go:build unix

package resolve

import (
	"io/fs"
	"syscall"
)

func fileOwner(info fs.FileInfo) (int, bool) {
	status, available := info.Sys().(*syscall.Stat_t)
	if !available {
		return 0, false
	}
	return int(status.Uid), true
}
