package organizer

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// isCrossDevice reports whether err is the EXDEV rename failure that
// happens when src and dst live on different filesystems/mounts.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

func copyAll(dst io.Writer, src io.Reader) (int64, error) {
	return io.Copy(dst, src)
}
