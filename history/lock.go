// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package history

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

var (
	osOpenFile = os.OpenFile
	unixFlock  = unix.Flock
)

func noopRelease() {}

// Lock acquires an advisory lock that serializes access to the history file
// at the specified path. Writers should acquire an exclusive lock and
// readers a shared lock. The lock is held on a separate "<path>.lock" file
// because the history file is replaced atomically. The returned function
// releases the lock.
//
// A reader that cannot create the lock file opens an existing one read-only.
// If there is no lock file, no writer has ever held the lock and a no-op
// release function is returned without locking.
func Lock(path string, exclusive bool) (release func(), err error) {
	lockPath := path + ".lock"

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}

	lockFile, err := osOpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil && !exclusive {
		lockFile, err = osOpenFile(lockPath, os.O_RDONLY, 0)
		if xerrors.Is(err, os.ErrNotExist) {
			return noopRelease, nil
		}
	}
	if err != nil {
		return nil, xerrors.Errorf("cannot open lock file: %w", err)
	}

	if err := unixFlock(int(lockFile.Fd()), how); err != nil {
		lockFile.Close()
		return nil, xerrors.Errorf("cannot obtain lock: %w", err)
	}

	return func() {
		unixFlock(int(lockFile.Fd()), unix.LOCK_UN)
		lockFile.Close()
	}, nil
}
