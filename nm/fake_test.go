package nm

import (
	"fmt"
	"testing"
	"time"

	"github.com/yllada/vpn-supervisor/common"
)

// fakeStore is an in-memory common.UUIDStore.
type fakeStore struct {
	uuid     string
	has      bool
	getErr   error
	setErr   error
	setCalls []string
}

func (s *fakeStore) UUID() (string, bool, error) {
	return s.uuid, s.has, s.getErr
}

func (s *fakeStore) SetUUID(uuid string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.uuid = uuid
	s.has = true
	s.setCalls = append(s.setCalls, uuid)
	return nil
}

// fakeClient is an in-memory Client. Completion callbacks are posted
// onto the loop like the D-Bus client does.
type fakeClient struct {
	loop *Loop

	connections     map[string]*Connection
	resolveFailures map[string]int // transient NotFound count per uuid

	active  []*ActiveConnection
	primary *ActiveConnection

	addErr        error
	updateErr     error
	activateErr   error
	deactivateErr error
	subscribeErr  error

	added       []*Connection
	updated     []*Connection
	activated   []string
	deactivated []string

	handler func(VpnState, StateReason)
}

func newFakeClient(loop *Loop) *fakeClient {
	return &fakeClient{
		loop:            loop,
		connections:     make(map[string]*Connection),
		resolveFailures: make(map[string]int),
	}
}

func (c *fakeClient) GetConnectionByUUID(uuid string) (*Connection, error) {
	if c.resolveFailures[uuid] > 0 {
		c.resolveFailures[uuid]--
		return nil, fmt.Errorf("%w: %s", common.ErrConnectionNotResolved, uuid)
	}
	if conn, ok := c.connections[uuid]; ok {
		return conn, nil
	}
	return nil, fmt.Errorf("%w: %s", common.ErrConnectionNotResolved, uuid)
}

func (c *fakeClient) AddConnection(conn *Connection, persist bool, done AddResult) {
	c.added = append(c.added, conn)
	c.loop.Schedule(func() {
		if c.addErr != nil {
			done("", c.addErr)
			return
		}
		c.connections[conn.UUID] = conn
		done(conn.UUID, nil)
	})
}

func (c *fakeClient) UpdateConnection(old, updated *Connection, persist bool, done Result) {
	c.updated = append(c.updated, updated)
	c.loop.Schedule(func() { done(c.updateErr) })
}

func (c *fakeClient) ActivateConnection(conn *Connection, done Result) {
	c.activated = append(c.activated, conn.UUID)
	c.loop.Schedule(func() { done(c.activateErr) })
}

func (c *fakeClient) DeactivateConnection(active *ActiveConnection, done Result) {
	c.deactivated = append(c.deactivated, active.UUID)
	c.loop.Schedule(func() { done(c.deactivateErr) })
}

func (c *fakeClient) ActiveConnections() ([]*ActiveConnection, error) {
	return c.active, nil
}

func (c *fakeClient) PrimaryConnection() (*ActiveConnection, error) {
	return c.primary, nil
}

func (c *fakeClient) SubscribeVpnState(handler func(VpnState, StateReason)) error {
	if c.subscribeErr != nil {
		return c.subscribeErr
	}
	c.handler = handler
	return nil
}

// runLoop drives a loop until the test body calls stop. A watchdog fails
// the test instead of hanging it if stop never fires.
func runLoop(t *testing.T, loop *Loop, fn func(stop func())) {
	t.Helper()

	watchdog := time.AfterFunc(5*time.Second, func() {
		t.Error("event loop did not stop within timeout")
		loop.Stop()
	})
	defer watchdog.Stop()

	loop.Schedule(func() { fn(loop.Stop) })
	loop.Run()
}

// testConnection builds a minimal imported connection.
func testConnection(uuid string) *Connection {
	return &Connection{
		UUID: uuid,
		Settings: ConnectionSettings{
			"connection": {"id": "test", "uuid": uuid, "type": common.ConnectionTypeVPN},
			"vpn": {
				"service-type": "org.freedesktop.NetworkManager.openvpn",
				"data":         map[string]string{"remote": "vpn.example.org:1194"},
			},
		},
	}
}
