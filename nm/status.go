package nm

import (
	"github.com/yllada/vpn-supervisor/common"
)

// StatusObserver normalizes the manager's VPN state reporting into a
// single (VpnState, StateReason) stream: asynchronous state change
// signals plus a synchronous polling path.
type StatusObserver struct {
	client Client
}

// NewStatusObserver builds a StatusObserver over the given client.
func NewStatusObserver(client Client) *StatusObserver {
	return &StatusObserver{client: client}
}

// Subscribe registers handler for VPN state change notifications and
// synchronously reports an initial state, so there is never a window in
// which no state has been observed. The initial state is the raw state
// of the active VPN connection if exactly one exists, Disconnected
// otherwise.
func (o *StatusObserver) Subscribe(handler func(state VpnState, reason StateReason)) error {
	if err := o.client.SubscribeVpnState(handler); err != nil {
		return err
	}

	active, err := o.client.ActiveConnections()
	if err != nil {
		return err
	}
	for _, a := range active {
		if a.Vpn {
			common.LogDebug("Id: %s VpnState: %s", a.ID, a.State)
			handler(a.State, ReasonNone)
			return nil
		}
	}
	handler(StateDisconnected, ReasonNone)
	return nil
}

// Poll reports the identity and state of the current VPN connection: the
// primary connection's UUID and state when the primary is VPN-typed, an
// empty UUID and Unknown state otherwise.
//
// When more than one VPN connection is active, Poll reports Unknown and
// logs a warning instead of picking one: that situation was caused
// outside this client and cannot be resolved safely here.
func (o *StatusObserver) Poll() (string, VpnState, error) {
	active, err := o.client.ActiveConnections()
	if err != nil {
		return "", StateUnknown, err
	}

	vpns := 0
	for _, a := range active {
		if a.Vpn {
			vpns++
		}
	}
	if vpns > 1 {
		common.LogWarn("More than one VPN connection active")
		return "", StateUnknown, nil
	}

	primary, err := o.client.PrimaryConnection()
	if err != nil {
		return "", StateUnknown, err
	}
	if primary == nil || !primary.Vpn {
		return "", StateUnknown, nil
	}
	return primary.UUID, primary.State, nil
}
