// Package state holds the search and detail state containers and the root
// aggregate that composes them.
//
// Each container owns its slice of state exclusively. Mutations happen only
// through pure transition functions applied under the container's lock; the
// network call itself runs outside the lock, so observers can see the loading
// phase while a fetch is in flight.
package state

// Status tracks the lifecycle of a container's most recent fetch.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}
