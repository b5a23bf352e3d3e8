//go:build unix

package flytrap

import "golang.org/x/sys/unix"

// kernelRelease returns the kernel release from uname(2), or "" on failure.
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
