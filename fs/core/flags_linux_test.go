//go:build linux

package core_test

import (
	"testing"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestFlags_MatchHost(t *testing.T) {
	assert.Equal(t, unix.O_RDONLY, core.O_RDONLY)
	assert.Equal(t, unix.O_WRONLY, core.O_WRONLY)
	assert.Equal(t, unix.O_RDWR, core.O_RDWR)
	assert.Equal(t, unix.O_CREAT, core.O_CREAT)
	assert.Equal(t, unix.O_EXCL, core.O_EXCL)
	assert.Equal(t, unix.O_TRUNC, core.O_TRUNC)
	assert.Equal(t, unix.O_APPEND, core.O_APPEND)
}
