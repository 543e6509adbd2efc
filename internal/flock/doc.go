// Package flock provides cross-platform advisory file locking.
//
// The pool file is a single shared resource that several CLI processes may
// rewrite concurrently. Advisory locks on a sidecar lock file serialize those
// rewrites across processes the same way the pool's writer mutex does within
// one process.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    return err
//	}
//	defer flock.Unlock(file.Fd())
package flock
