package nm

import (
	"errors"
	"time"

	"github.com/yllada/vpn-supervisor/common"
)

// Activator drives activation and deactivation of the managed connection.
// Both operations are fire-and-forget: the caller's completion callback
// fires exactly once, on every path, and activation failures after the
// request was issued are logged rather than surfaced.
type Activator struct {
	client Client
	loop   *Loop
	// retryDelay is how long to wait before the single re-resolution
	// attempt; tests inject zero.
	retryDelay time.Duration
}

// NewActivator builds an Activator over the given client and loop.
func NewActivator(client Client, loop *Loop) *Activator {
	return &Activator{
		client:     client,
		loop:       loop,
		retryDelay: common.ActivateRetryDelay,
	}
}

// SetRetryDelay overrides the resolve-retry delay, for configuration.
func (a *Activator) SetRetryDelay(delay time.Duration) {
	a.retryDelay = delay
}

// callOnce guards a completion callback so the retry path can never fire
// it twice. All paths run on the loop goroutine, so a plain flag is
// enough.
func callOnce(done Result) Result {
	called := false
	return func(err error) {
		if called {
			return
		}
		called = true
		if done != nil {
			done(err)
		}
	}
}

// Activate resolves uuid and requests asynchronous activation.
//
// NetworkManager sometimes cannot resolve a connection immediately after
// its add completed, even though its own logging says the connection
// exists. That lookup failure is treated as transient: the resolution is
// re-entered through the loop exactly once after a short delay. This is a
// workaround for a propagation race, not a guaranteed fix.
// TODO: find the Settings signal that marks the connection as visible and
// sync on that instead of a timed retry.
func (a *Activator) Activate(uuid string, done Result) {
	a.activate(uuid, callOnce(done), true)
}

func (a *Activator) activate(uuid string, done Result, mayRetry bool) {
	conn, err := a.client.GetConnectionByUUID(uuid)
	if err != nil {
		if mayRetry && errors.Is(err, common.ErrConnectionNotResolved) {
			common.LogWarn("Connection %s not resolved yet, retrying in %v", uuid, a.retryDelay)
			a.loop.ScheduleAfter(a.retryDelay, func() {
				a.activate(uuid, done, false)
			})
			return
		}
		common.LogError("Cannot activate connection %s: %v", uuid, err)
		done(err)
		return
	}

	common.LogInfo("Activating connection %s", uuid)
	a.client.ActivateConnection(conn, func(err error) {
		// Activation is best-effort once issued; failures are logged,
		// not re-raised.
		if err != nil {
			common.LogError("Activation of %s failed: %v", uuid, err)
		} else {
			common.LogDebug("Activation of %s requested", uuid)
		}
		done(nil)
	})
}

// Deactivate tears down the connection identified by uuid, but only when
// it is still the system's primary active connection. A mismatched or
// missing primary is a logged no-op, never an error: deactivating an
// unrelated connection would be worse than doing nothing.
func (a *Activator) Deactivate(uuid string, done Result) {
	done = callOnce(done)

	primary, err := a.client.PrimaryConnection()
	if err != nil {
		common.LogError("Cannot read primary connection: %v", err)
		done(err)
		return
	}
	if primary == nil {
		common.LogInfo("No active connection to deactivate")
		done(nil)
		return
	}
	if primary.UUID != uuid {
		common.LogInfo("Primary connection %s is not %s, leaving it alone", primary.UUID, uuid)
		done(nil)
		return
	}

	common.LogInfo("Deactivating connection %s", uuid)
	a.client.DeactivateConnection(primary, func(err error) {
		if err != nil {
			common.LogError("Deactivation of %s failed: %v", uuid, err)
		}
		done(nil)
	})
}
