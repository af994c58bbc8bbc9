package stream

import (
	"os"

	"golang.org/x/sys/unix"
)

// acquireLock takes an advisory, exclusive, non-blocking lock on path
// for the duration the file is open for writing. The lock
// is released by closing the file descriptor it was taken against.
func acquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrLockConflict
		}
		return nil, err
	}
	return &Lock{release: func() error {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return f.Close()
	}}, nil
}

// fileIsLocked probes path's advisory lock without holding it open for
// writing: it takes and immediately releases a non-blocking shared
// lock, reporting true if that fails (meaning another process holds an
// exclusive lock).
func fileIsLocked(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return true, nil
		}
		return false, err
	}
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return false, nil
}
