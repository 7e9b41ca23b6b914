package nm

import "github.com/godbus/dbus/v5"

// VpnState represents the state of a VPN connection as reported by
// NetworkManager. States are transient: they are relayed to observers,
// never stored.
type VpnState int

const (
	// StateUnknown indicates the state could not be determined.
	StateUnknown VpnState = iota
	// StateDisconnected indicates no active VPN connection.
	StateDisconnected
	// StateConnecting indicates a connection is being established.
	StateConnecting
	// StateConnected indicates an active, established connection.
	StateConnected
	// StateDisconnecting indicates the connection is being torn down.
	StateDisconnecting
	// StateFailed indicates the connection failed.
	StateFailed
)

// String returns a human-readable representation of the VPN state.
func (s VpnState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting..."
	case StateConnected:
		return "Connected"
	case StateDisconnecting:
		return "Disconnecting..."
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// StateReason qualifies a VPN state change. Values follow NetworkManager's
// VpnConnectionStateReason enumeration.
type StateReason uint32

const (
	ReasonUnknown StateReason = iota
	ReasonNone
	ReasonUserDisconnected
	ReasonDeviceDisconnected
	ReasonServiceStopped
	ReasonIPConfigInvalid
	ReasonConnectTimeout
	ReasonServiceStartTimeout
	ReasonServiceStartFailed
	ReasonNoSecrets
	ReasonLoginFailed
	ReasonConnectionRemoved
)

// String returns a human-readable representation of the state reason.
func (r StateReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUserDisconnected:
		return "user disconnected"
	case ReasonDeviceDisconnected:
		return "device disconnected"
	case ReasonServiceStopped:
		return "service stopped"
	case ReasonIPConfigInvalid:
		return "invalid IP configuration"
	case ReasonConnectTimeout:
		return "connect timeout"
	case ReasonServiceStartTimeout:
		return "service start timeout"
	case ReasonServiceStartFailed:
		return "service start failed"
	case ReasonNoSecrets:
		return "no secrets"
	case ReasonLoginFailed:
		return "login failed"
	case ReasonConnectionRemoved:
		return "connection removed"
	default:
		return "unknown"
	}
}

// Raw VPN connection states from the
// org.freedesktop.NetworkManager.VPN.Connection interface.
const (
	nmVpnStateUnknown     uint32 = 0
	nmVpnStatePrepare     uint32 = 1
	nmVpnStateNeedAuth    uint32 = 2
	nmVpnStateConnect     uint32 = 3
	nmVpnStateIPConfigGet uint32 = 4
	nmVpnStateActivated   uint32 = 5
	nmVpnStateFailed      uint32 = 6
	nmVpnStateDisconnect  uint32 = 7
)

// vpnStateFromRaw normalizes a raw NetworkManager VPN connection state.
func vpnStateFromRaw(raw uint32) VpnState {
	switch raw {
	case nmVpnStatePrepare, nmVpnStateNeedAuth, nmVpnStateConnect, nmVpnStateIPConfigGet:
		return StateConnecting
	case nmVpnStateActivated:
		return StateConnected
	case nmVpnStateFailed:
		return StateFailed
	case nmVpnStateDisconnect:
		return StateDisconnected
	default:
		return StateUnknown
	}
}

// Raw active connection states from the
// org.freedesktop.NetworkManager.Connection.Active interface.
const (
	nmActiveStateUnknown      uint32 = 0
	nmActiveStateActivating   uint32 = 1
	nmActiveStateActivated    uint32 = 2
	nmActiveStateDeactivating uint32 = 3
	nmActiveStateDeactivated  uint32 = 4
)

// vpnStateFromActive normalizes a raw active connection state.
func vpnStateFromActive(raw uint32) VpnState {
	switch raw {
	case nmActiveStateActivating:
		return StateConnecting
	case nmActiveStateActivated:
		return StateConnected
	case nmActiveStateDeactivating:
		return StateDisconnecting
	case nmActiveStateDeactivated:
		return StateDisconnected
	default:
		return StateUnknown
	}
}

// ConnectionSettings mirrors NetworkManager's nested settings layout
// (a{sa{sv}} on the wire). The "vpn" group's "data" entry is a
// map[string]string of plugin-specific keys.
type ConnectionSettings map[string]map[string]interface{}

// UUID returns the connection UUID recorded in the settings, if any.
func (cs ConnectionSettings) UUID() string {
	conn, ok := cs["connection"]
	if !ok {
		return ""
	}
	uuid, _ := conn["uuid"].(string)
	return uuid
}

// VpnData returns the plugin-specific key/value data of the "vpn" group.
func (cs ConnectionSettings) VpnData() map[string]string {
	vpn, ok := cs["vpn"]
	if !ok {
		return nil
	}
	data, _ := vpn["data"].(map[string]string)
	return data
}

// Connection is a handle to a connection object owned by NetworkManager.
// The supervisor creates, updates, activates, and deactivates it by
// reference; settings are only inspected to extract certificate and key
// paths for diagnostic read-back.
type Connection struct {
	// Path is the D-Bus object path of the stored connection. Empty for
	// connections that have not been registered yet.
	Path dbus.ObjectPath
	// UUID identifies the connection within NetworkManager.
	UUID string
	// Settings carries the connection's full settings tree.
	Settings ConnectionSettings
}

// ActiveConnection describes one entry of NetworkManager's active
// connection list.
type ActiveConnection struct {
	Path dbus.ObjectPath
	UUID string
	ID   string
	// Vpn reports whether this active connection is VPN-typed.
	Vpn bool
	// State is the normalized VPN state of the connection.
	State VpnState
	// Reason qualifies the last state change.
	Reason StateReason
}
