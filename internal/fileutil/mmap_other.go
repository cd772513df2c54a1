//go:build !unix

package fileutil

import (
	"errors"
	"os"
)

var errNoMmap = errors.New("mmap unsupported on this platform")

func mapReadOnly(*os.File, int64) ([]byte, error) {
	return nil, errNoMmap
}

func unmap([]byte) error {
	return nil
}
