package stdio

import (
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
)

// ParseMode converts an fopen style mode string into open flags.
//
//	"r"  O_RDONLY
//	"r+" O_RDWR
//	"w"  O_WRONLY|O_CREAT|O_TRUNC
//	"w+" O_RDWR|O_CREAT|O_TRUNC
//	"a"  O_WRONLY|O_CREAT|O_APPEND
//	"a+" O_RDWR|O_CREAT|O_APPEND
//
// A 'b' anywhere after the first character is accepted and ignored. An 'x'
// after a "w" mode adds O_EXCL.
func ParseMode(mode string) (int, error) {
	if mode == "" {
		return 0, invalidMode(mode)
	}

	var flags int
	switch mode[0] {
	case 'r':
		flags = core.O_RDONLY
	case 'w':
		flags = core.O_WRONLY | core.O_CREAT | core.O_TRUNC
	case 'a':
		flags = core.O_WRONLY | core.O_CREAT | core.O_APPEND
	default:
		return 0, invalidMode(mode)
	}

	plus := false
	for _, c := range mode[1:] {
		switch c {
		case '+':
			if plus {
				return 0, invalidMode(mode)
			}
			plus = true
		case 'b':
		case 'x':
			if mode[0] != 'w' {
				return 0, invalidMode(mode)
			}
			flags |= core.O_EXCL
		default:
			return 0, invalidMode(mode)
		}
	}

	if plus {
		flags = flags&^core.O_ACCMODE | core.O_RDWR
	}
	return flags, nil
}

func invalidMode(mode string) error {
	return errors.WithContext(
		errors.Wrapf(unix.EINVAL, errors.CodeInvalidFlags, "invalid stream mode %q", mode),
		"mode", mode,
	)
}
