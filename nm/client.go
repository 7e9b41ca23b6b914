package nm

// AddResult reports completion of an asynchronous add operation, carrying
// the UUID NetworkManager assigned to the new connection.
type AddResult func(uuid string, err error)

// Result reports completion of an asynchronous lifecycle operation.
type Result func(err error)

// Client abstracts the external connection manager. The production
// implementation talks to NetworkManager over D-Bus; tests substitute a
// fake.
//
// Asynchronous methods deliver their completion callback on the event
// loop. Back-to-back lifecycle operations on the same connection are not
// serialized here; callers must not overlap them.
type Client interface {
	// GetConnectionByUUID resolves a stored connection by UUID. Returns
	// common.ErrConnectionNotResolved when the manager does not know it.
	GetConnectionByUUID(uuid string) (*Connection, error)

	// AddConnection registers conn as a new connection object. persist
	// controls whether the manager saves it to disk.
	AddConnection(conn *Connection, persist bool, done AddResult)

	// UpdateConnection replaces old's settings in-place with the
	// settings of updated and commits the change. The connection keeps
	// its identifier.
	UpdateConnection(old, updated *Connection, persist bool, done Result)

	// ActivateConnection requests asynchronous activation of conn.
	ActivateConnection(conn *Connection, done Result)

	// DeactivateConnection requests asynchronous deactivation of an
	// active connection.
	DeactivateConnection(active *ActiveConnection, done Result)

	// ActiveConnections enumerates the currently active connections.
	ActiveConnections() ([]*ActiveConnection, error)

	// PrimaryConnection returns the connection the manager treats as the
	// system's default active network path, or nil if there is none.
	PrimaryConnection() (*ActiveConnection, error)

	// SubscribeVpnState delivers VPN state change notifications from the
	// manager's signal bus to handler, on the event loop.
	SubscribeVpnState(handler func(state VpnState, reason StateReason)) error
}
