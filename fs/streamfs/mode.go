package streamfs

import (
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
)

// ModeFor translates open flags into an fopen mode string.
//
//	access    no CREAT  CREAT|TRUNC  CREAT|APPEND  CREAT
//	O_RDONLY  r         r            r             r
//	O_WRONLY  w         w            a             error
//	O_RDWR    r+        w+           a+            error
//
// TRUNC takes precedence over APPEND. O_EXCL on a truncating write mode adds
// 'x'. Combinations without a mode string return a CodeInvalidFlags error
// wrapping EINVAL.
func ModeFor(flags int) (string, error) {
	creat := flags&core.O_CREAT != 0
	trunc := flags&core.O_TRUNC != 0
	appnd := flags&core.O_APPEND != 0
	excl := flags&core.O_EXCL != 0

	var mode string
	switch core.AccessMode(flags) {
	case core.O_RDONLY:
		return "r", nil
	case core.O_WRONLY:
		switch {
		case !creat:
			mode = "w"
		case trunc:
			mode = "w"
		case appnd:
			return "a", nil
		default:
			return "", invalidFlags(flags)
		}
	case core.O_RDWR:
		switch {
		case !creat:
			return "r+", nil
		case trunc:
			mode = "w+"
		case appnd:
			return "a+", nil
		default:
			return "", invalidFlags(flags)
		}
	default:
		return "", invalidFlags(flags)
	}

	if creat && excl {
		mode += "x"
	}
	return mode, nil
}

func invalidFlags(flags int) error {
	return errors.WithContext(
		errors.Wrapf(unix.EINVAL, errors.CodeInvalidFlags, "no stream mode for open flags %#o", flags),
		"flags", flags,
	)
}
