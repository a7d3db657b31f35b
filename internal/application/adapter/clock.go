// Package adapter declares the ports the use cases depend on.
package adapter

import "time"

// Clock supplies the current time. Use cases and repositories read time through
// it so tests can pin the clock.
type Clock interface {
	Now() time.Time
}
