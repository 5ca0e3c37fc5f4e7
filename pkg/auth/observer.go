package auth

import "sync"

// StateObserver is one restartable subscription to the auth state. Each call
// to ObserveState registers a fresh observer; Stop unregisters it exactly
// once. Deliveries coalesce: a slow consumer sees the latest state, not every
// intermediate one.
type StateObserver struct {
	id      uint64
	manager *Manager
	states  chan *User

	stopOnce sync.Once
}

// States delivers the auth state: the current user, or nil when signed out.
// Closed by Stop.
func (o *StateObserver) States() <-chan *User {
	return o.states
}

// Stop unregisters the observer and closes States. Idempotent.
func (o *StateObserver) Stop() {
	o.stopOnce.Do(func() {
		o.manager.dropObserver(o.id)
	})
}

// publish delivers a state latest-wins. Called with the manager's observer
// lock held, so it is never concurrent with close.
func (o *StateObserver) publish(state *User) {
	for {
		select {
		case o.states <- state:
			return
		default:
			select {
			case <-o.states:
			default:
			}
		}
	}
}
