package nm

import (
	"github.com/yllada/vpn-supervisor/common"
)

// Supervisor bundles the lifecycle components around one event loop and
// one manager client. It owns the import → reconcile → activate flow for
// the single managed connection.
type Supervisor struct {
	Loop       *Loop
	Client     Client
	Importer   *Importer
	Reconciler *Reconciler
	Activator  *Activator
	Observer   *StatusObserver
}

// NewSupervisor wires a Supervisor against NetworkManager on the system
// bus, persisting the managed connection UUID in store.
func NewSupervisor(store common.UUIDStore) (*Supervisor, error) {
	loop := NewLoop()
	client, err := NewDBusClient(loop)
	if err != nil {
		return nil, err
	}
	return newSupervisor(client, loop, store)
}

func newSupervisor(client Client, loop *Loop, store common.UUIDStore) (*Supervisor, error) {
	importer, err := NewImporter()
	if err != nil {
		return nil, err
	}
	return &Supervisor{
		Loop:       loop,
		Client:     client,
		Importer:   importer,
		Reconciler: NewReconciler(client, store),
		Activator:  NewActivator(client, loop),
		Observer:   NewStatusObserver(client),
	}, nil
}

// RunAction runs a single asynchronous action to completion: the loop is
// started, the action issued, and the loop stopped from the action's
// completion callback. This is the batch mode for one-shot invocations;
// the loop is consumed by it, so a Supervisor used this way performs one
// lifecycle operation per process.
func (s *Supervisor) RunAction(action func(done func())) {
	common.LogDebug("Running action with batch loop")
	s.Loop.Schedule(func() {
		action(func() { s.Loop.Stop() })
	})
	s.Loop.Run()
}

// SaveConnection imports the profile document and reconciles the result
// with the previously stored connection, blocking until the commit or
// add completes.
func (s *Supervisor) SaveConnection(config, privateKey, certificate string) error {
	conn, err := s.Importer.ImportProfile(config, privateKey, certificate)
	if err != nil {
		return err
	}

	var opErr error
	s.RunAction(func(done func()) {
		s.Reconciler.Save(conn, func(err error) {
			opErr = err
			done()
		})
	})
	return opErr
}

// ActivateConnection activates the connection identified by uuid,
// blocking until the activation request has been issued (or resolution
// failed terminally).
func (s *Supervisor) ActivateConnection(uuid string) error {
	var opErr error
	s.RunAction(func(done func()) {
		s.Activator.Activate(uuid, func(err error) {
			opErr = err
			done()
		})
	})
	return opErr
}

// DeactivateConnection deactivates the connection identified by uuid if
// it is still the primary active connection, blocking until done.
func (s *Supervisor) DeactivateConnection(uuid string) error {
	var opErr error
	s.RunAction(func(done func()) {
		s.Activator.Deactivate(uuid, func(err error) {
			opErr = err
			done()
		})
	})
	return opErr
}
