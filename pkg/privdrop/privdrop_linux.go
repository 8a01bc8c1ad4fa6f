//go:build linux

// Package privdrop gives up root once the input devices are open.
package privdrop

import (
	"errors"
	"fmt"
	"golang.org/x/sys/unix"
	"os/user"
	"strconv"
)

var ErrStillRoot = errors.New("still running as root after dropping privileges")

// Drop switches to username and disables core dumps. It does nothing when not running
// as root.
func Drop(username string) error {
	if unix.Geteuid() != 0 {
		return disableCoreDumps()
	}

	u, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("lookup user %q: %w", username, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("parse uid %q: %w", u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("parse gid %q: %w", u.Gid, err)
	}

	if err := unix.Setgroups([]int{gid}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := unix.Setresgid(gid, gid, gid); err != nil {
		return fmt.Errorf("setresgid: %w", err)
	}
	if err := unix.Setresuid(uid, uid, uid); err != nil {
		return fmt.Errorf("setresuid: %w", err)
	}

	if unix.Geteuid() == 0 || unix.Getegid() == 0 {
		return ErrStillRoot
	}

	return disableCoreDumps()
}

func disableCoreDumps() error {
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0}); err != nil {
		return fmt.Errorf("setrlimit core: %w", err)
	}
	return nil
}
