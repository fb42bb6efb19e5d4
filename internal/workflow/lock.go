package workflow

import (
	"fmt"

	"github.com/gofrs/flock"

	"woodway/internal/services"
)

// acquireLock takes the single-process lock that sits next to the queue
// database. Holding it guarantees no other woodway process is mutating the
// same queue, which is what lets Run reset stuck processing rows at startup.
func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire process lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: another woodway process is already running (lock %s held)", services.ErrValidation, path)
	}
	return lock, nil
}
