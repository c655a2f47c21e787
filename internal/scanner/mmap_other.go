//go:build !unix

package scanner

import (
	"errors"
	"os"
)

func mapFile(*os.File, int64) ([]byte, func(), error) {
	return nil, nil, errors.New("scanner: memory mapping not supported on this platform")
}
