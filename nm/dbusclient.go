package nm

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/vpn-supervisor/common"
)

// D-Bus names of the NetworkManager service.
const (
	nmService             = "org.freedesktop.NetworkManager"
	nmInterface           = "org.freedesktop.NetworkManager"
	nmSettingsInterface   = "org.freedesktop.NetworkManager.Settings"
	nmConnectionInterface = "org.freedesktop.NetworkManager.Settings.Connection"
	nmActiveInterface     = "org.freedesktop.NetworkManager.Connection.Active"
	nmVpnInterface        = "org.freedesktop.NetworkManager.VPN.Connection"
)

const (
	nmObjectPath   = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmSettingsPath = dbus.ObjectPath("/org/freedesktop/NetworkManager/Settings")
)

// DBusClient implements Client against NetworkManager on the system bus.
// Completion callbacks are delivered on the supplied event loop.
type DBusClient struct {
	conn *dbus.Conn
	loop *Loop
}

// NewDBusClient connects to the system bus.
func NewDBusClient(loop *Loop) (*DBusClient, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, common.WrapError(err, "failed to connect to system bus")
	}
	return &DBusClient{conn: conn, loop: loop}, nil
}

// Close releases the bus connection.
func (c *DBusClient) Close() error {
	return c.conn.Close()
}

// GetConnectionByUUID resolves a stored connection by UUID.
func (c *DBusClient) GetConnectionByUUID(uuid string) (*Connection, error) {
	var path dbus.ObjectPath
	err := c.conn.Object(nmService, nmSettingsPath).
		Call(nmSettingsInterface+".GetConnectionByUuid", 0, uuid).
		Store(&path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrConnectionNotResolved, uuid)
	}

	settings, err := c.readSettings(path)
	if err != nil {
		return nil, err
	}
	return &Connection{Path: path, UUID: settings.UUID(), Settings: settings}, nil
}

// AddConnection registers conn as a new connection object. The new
// object's settings are read back so the callback carries the UUID
// NetworkManager actually assigned.
func (c *DBusClient) AddConnection(conn *Connection, persist bool, done AddResult) {
	method := nmSettingsInterface + ".AddConnection"
	if !persist {
		method = nmSettingsInterface + ".AddConnectionUnsaved"
	}

	go func() {
		var path dbus.ObjectPath
		err := c.conn.Object(nmService, nmSettingsPath).
			Call(method, 0, variantSettings(conn.Settings)).
			Store(&path)
		if err != nil {
			c.complete(func() { done("", fmt.Errorf("%w: %v", common.ErrManagerRejected, err)) })
			return
		}

		settings, err := c.readSettings(path)
		if err != nil {
			c.complete(func() { done("", err) })
			return
		}
		c.complete(func() { done(settings.UUID(), nil) })
	}()
}

// UpdateConnection replaces old's settings with those of updated and
// commits. The stored connection keeps its UUID.
func (c *DBusClient) UpdateConnection(old, updated *Connection, persist bool, done Result) {
	method := nmConnectionInterface + ".Update"
	if !persist {
		method = nmConnectionInterface + ".UpdateUnsaved"
	}

	merged := cloneSettings(updated.Settings)
	if _, ok := merged["connection"]; !ok {
		merged["connection"] = map[string]interface{}{}
	}
	merged["connection"]["uuid"] = old.UUID

	go func() {
		err := c.conn.Object(nmService, old.Path).
			Call(method, 0, variantSettings(merged)).Err
		if err != nil {
			err = fmt.Errorf("%w: %v", common.ErrManagerRejected, err)
		}
		c.complete(func() { done(err) })
	}()
}

// ActivateConnection requests asynchronous activation, letting
// NetworkManager pick the device and specific object.
func (c *DBusClient) ActivateConnection(conn *Connection, done Result) {
	go func() {
		var active dbus.ObjectPath
		err := c.conn.Object(nmService, nmObjectPath).
			Call(nmInterface+".ActivateConnection", 0,
				conn.Path, dbus.ObjectPath("/"), dbus.ObjectPath("/")).
			Store(&active)
		if err != nil {
			err = fmt.Errorf("%w: %v", common.ErrManagerRejected, err)
		}
		c.complete(func() { done(err) })
	}()
}

// DeactivateConnection requests asynchronous deactivation.
func (c *DBusClient) DeactivateConnection(active *ActiveConnection, done Result) {
	go func() {
		err := c.conn.Object(nmService, nmObjectPath).
			Call(nmInterface+".DeactivateConnection", 0, active.Path).Err
		if err != nil {
			err = fmt.Errorf("%w: %v", common.ErrManagerRejected, err)
		}
		c.complete(func() { done(err) })
	}()
}

// ActiveConnections enumerates the currently active connections via
// synchronous property reads.
func (c *DBusClient) ActiveConnections() ([]*ActiveConnection, error) {
	v, err := c.conn.Object(nmService, nmObjectPath).
		GetProperty(nmInterface + ".ActiveConnections")
	if err != nil {
		return nil, common.WrapError(err, "failed to read active connections")
	}

	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T for ActiveConnections", v.Value())
	}

	active := make([]*ActiveConnection, 0, len(paths))
	for _, path := range paths {
		a, err := c.activeConnection(path)
		if err != nil {
			common.LogDebug("Skipping active connection %s: %v", path, err)
			continue
		}
		active = append(active, a)
	}
	return active, nil
}

// PrimaryConnection returns the system's primary active connection, or
// nil when there is none.
func (c *DBusClient) PrimaryConnection() (*ActiveConnection, error) {
	v, err := c.conn.Object(nmService, nmObjectPath).
		GetProperty(nmInterface + ".PrimaryConnection")
	if err != nil {
		return nil, common.WrapError(err, "failed to read primary connection")
	}

	path, ok := v.Value().(dbus.ObjectPath)
	if !ok || path == "/" || path == "" {
		return nil, nil
	}
	return c.activeConnection(path)
}

// SubscribeVpnState subscribes to VpnStateChanged signals scoped to the
// VPN connection interface and relays them onto the event loop.
func (c *DBusClient) SubscribeVpnState(handler func(state VpnState, reason StateReason)) error {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchInterface(nmVpnInterface),
		dbus.WithMatchMember("VpnStateChanged"),
	); err != nil {
		return common.WrapError(err, "failed to subscribe to VPN state signals")
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)

	go func() {
		for sig := range ch {
			if !strings.HasSuffix(sig.Name, ".VpnStateChanged") || len(sig.Body) < 2 {
				continue
			}
			rawState, okState := sig.Body[0].(uint32)
			rawReason, okReason := sig.Body[1].(uint32)
			if !okState || !okReason {
				continue
			}
			c.loop.Schedule(func() {
				handler(vpnStateFromRaw(rawState), StateReason(rawReason))
			})
		}
	}()
	return nil
}

// activeConnection reads the properties of one active connection object.
func (c *DBusClient) activeConnection(path dbus.ObjectPath) (*ActiveConnection, error) {
	obj := c.conn.Object(nmService, path)

	id, err := stringProp(obj, nmActiveInterface+".Id")
	if err != nil {
		return nil, err
	}
	uuid, err := stringProp(obj, nmActiveInterface+".Uuid")
	if err != nil {
		return nil, err
	}

	vpnV, err := obj.GetProperty(nmActiveInterface + ".Vpn")
	if err != nil {
		return nil, common.WrapError(err, "failed to read Vpn property")
	}
	isVpn, _ := vpnV.Value().(bool)

	a := &ActiveConnection{Path: path, UUID: uuid, ID: id, Vpn: isVpn, Reason: ReasonNone}

	if isVpn {
		raw, err := uint32Prop(obj, nmVpnInterface+".VpnState")
		if err != nil {
			return nil, err
		}
		a.State = vpnStateFromRaw(raw)
	} else {
		raw, err := uint32Prop(obj, nmActiveInterface+".State")
		if err != nil {
			return nil, err
		}
		a.State = vpnStateFromActive(raw)
	}
	return a, nil
}

// readSettings fetches the full settings tree of a stored connection.
func (c *DBusClient) readSettings(path dbus.ObjectPath) (ConnectionSettings, error) {
	var raw map[string]map[string]dbus.Variant
	err := c.conn.Object(nmService, path).
		Call(nmConnectionInterface+".GetSettings", 0).
		Store(&raw)
	if err != nil {
		return nil, common.WrapError(err, "failed to read connection settings")
	}
	return settingsFromVariant(raw), nil
}

// complete posts a completion callback onto the event loop.
func (c *DBusClient) complete(fn func()) {
	c.loop.Schedule(fn)
}

func stringProp(obj dbus.BusObject, name string) (string, error) {
	v, err := obj.GetProperty(name)
	if err != nil {
		return "", common.WrapError(err, "failed to read "+name)
	}
	s, _ := v.Value().(string)
	return s, nil
}

func uint32Prop(obj dbus.BusObject, name string) (uint32, error) {
	v, err := obj.GetProperty(name)
	if err != nil {
		return 0, common.WrapError(err, "failed to read "+name)
	}
	u, _ := v.Value().(uint32)
	return u, nil
}

// variantSettings converts settings to the wire representation.
func variantSettings(cs ConnectionSettings) map[string]map[string]dbus.Variant {
	out := make(map[string]map[string]dbus.Variant, len(cs))
	for group, kv := range cs {
		m := make(map[string]dbus.Variant, len(kv))
		for k, v := range kv {
			m[k] = dbus.MakeVariant(v)
		}
		out[group] = m
	}
	return out
}

// settingsFromVariant converts the wire representation back to settings.
func settingsFromVariant(raw map[string]map[string]dbus.Variant) ConnectionSettings {
	out := make(ConnectionSettings, len(raw))
	for group, kv := range raw {
		m := make(map[string]interface{}, len(kv))
		for k, v := range kv {
			m[k] = v.Value()
		}
		out[group] = m
	}
	return out
}

// cloneSettings makes a shallow-per-group copy so callers can adjust a
// settings tree without mutating the source.
func cloneSettings(cs ConnectionSettings) ConnectionSettings {
	out := make(ConnectionSettings, len(cs))
	for group, kv := range cs {
		m := make(map[string]interface{}, len(kv))
		for k, v := range kv {
			m[k] = v
		}
		out[group] = m
	}
	return out
}
