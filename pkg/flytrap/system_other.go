//go:build !unix

package flytrap

func kernelRelease() string {
	return ""
}
