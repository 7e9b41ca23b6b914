package nm

import (
	"github.com/yllada/vpn-supervisor/common"
)

// Reconciler decides whether a freshly imported connection updates the
// previously provisioned connection in place or is registered as new.
// The persisted UUID always names the one connection this client manages.
type Reconciler struct {
	client Client
	store  common.UUIDStore
}

// NewReconciler builds a Reconciler over the given manager client and
// UUID store.
func NewReconciler(client Client, store common.UUIDStore) *Reconciler {
	return &Reconciler{client: client, store: store}
}

// Save writes the imported connection to the manager.
//
// If a UUID is stored and still resolves to a connection object, that
// object's settings are replaced with the new connection's settings and
// committed; the identifier does not change. Otherwise — no UUID stored,
// or the stored one no longer resolves — the connection is added as a new
// object and its manager-assigned UUID persisted, overwriting any stale
// value.
//
// done fires exactly once with the outcome of the commit or add. Manager
// rejections are surfaced verbatim; nothing is retried here.
func (r *Reconciler) Save(conn *Connection, done Result) {
	uuid, ok, err := r.store.UUID()
	if err != nil {
		// A broken store read only costs us the update path.
		common.LogWarn("Could not read stored connection UUID: %v", err)
		ok = false
	}

	if ok && uuid != "" {
		if old, err := r.client.GetConnectionByUUID(uuid); err == nil {
			common.LogInfo("Updating existing connection with new configuration")
			r.client.UpdateConnection(old, conn, true, func(err error) {
				if err != nil {
					common.LogError("Update of connection %s failed: %v", uuid, err)
				} else {
					common.LogDebug("Connection updated for uuid: %s", uuid)
				}
				done(err)
			})
			return
		}
		common.LogDebug("Stored connection %s no longer resolves, adding as new", uuid)
	}

	common.LogInfo("Adding new connection")
	r.client.AddConnection(conn, true, func(newUUID string, err error) {
		if err != nil {
			common.LogError("Add connection failed: %v", err)
			done(err)
			return
		}
		if err := r.store.SetUUID(newUUID); err != nil {
			common.LogError("Connection added but UUID could not be persisted: %v", err)
			done(err)
			return
		}
		common.LogInfo("Connection added for uuid: %s", newUUID)
		done(nil)
	})
}
