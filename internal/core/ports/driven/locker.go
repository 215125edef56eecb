package driven

// Lock names guarding the two mutable stores. A sync must not run
// concurrently with another sync; a promote or restore must not run
// concurrently with another promote or restore.
const (
	StagingLock    = "staging"
	ProductionLock = "production"
)

// Locker provides advisory, fail-fast locks around store mutation.
type Locker interface {
	// Acquire takes the named lock, returning a release function.
	// Returns domain.ErrLockHeld if the lock is already taken.
	Acquire(name string) (release func() error, err error)
}
