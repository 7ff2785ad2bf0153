package broker

import (
	"github.com/gigamon-dev/SubspaceServer-sub008/logging"
)

// Callback is the shape every subscriber to a named callback must have.
// Arguments are passed positionally; callers and subscribers agree on the
// signature out of band, by the callback name.
type Callback func(args ...any)

type callbackSubscriber struct {
	id     uintptr
	handle Callback
}

type callbackList struct {
	name        string
	subscribers []callbackSubscriber
}

// RegisterCallback appends handler to the ordered subscriber list for name.
// Registering the same function value again is a no-op (idempotent), matched
// by the function's entry-point identity.
func (b *Broker) RegisterCallback(name string, handler Callback) {
	id := funcIdentity(handler)

	b.cbMu.Lock()
	defer b.cbMu.Unlock()

	list, ok := b.callbacks[name]
	if !ok {
		list = &callbackList{name: name}
		b.callbacks[name] = list
	}
	for _, sub := range list.subscribers {
		if sub.id == id {
			return
		}
	}
	list.subscribers = append(list.subscribers, callbackSubscriber{id: id, handle: handler})
}

// UnregisterCallback removes handler from name's subscriber list, if present.
func (b *Broker) UnregisterCallback(name string, handler Callback) {
	id := funcIdentity(handler)

	b.cbMu.Lock()
	defer b.cbMu.Unlock()

	list, ok := b.callbacks[name]
	if !ok {
		return
	}
	for i, sub := range list.subscribers {
		if sub.id == id {
			list.subscribers = append(list.subscribers[:i], list.subscribers[i+1:]...)
			return
		}
	}
}

// FireCallback invokes every subscriber of name, in registration order, on
// the caller's goroutine. Subscribers may register or unregister during the
// call without corrupting the in-flight dispatch, since dispatch iterates a
// snapshot taken under lock. A panicking handler is recovered and logged;
// it never suppresses the handlers after it. Fire does not bubble to a
// parent broker — the publisher picks the scope.
func (b *Broker) FireCallback(name string, args ...any) {
	b.cbMu.RLock()
	list, ok := b.callbacks[name]
	var snapshot []callbackSubscriber
	if ok {
		snapshot = make([]callbackSubscriber, len(list.subscribers))
		copy(snapshot, list.subscribers)
	}
	b.cbMu.RUnlock()
	if !ok {
		return
	}

	failures := 0
	for _, sub := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil {
					failures++
					logging.Errorf(nil, "broker[%s]: callback %q handler panicked: %v", b.name, name, r)
				}
			}()
			sub.handle(args...)
		}()
	}
	b.metrics.CallbackFired(name, len(snapshot), failures)
}
