//go:build unix

// Package flock provides cross-platform advisory file locking.
package flock

import "syscall"

// Exclusive acquires an exclusive lock on the file descriptor, blocking until
// the lock is available.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

// TryExclusive acquires an exclusive non-blocking lock on the file
// descriptor. Returns an error if another process holds the lock.
func TryExclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases the lock on the file descriptor.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
