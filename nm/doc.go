// Package nm is the control layer between this client and
// NetworkManager. It manages the lifecycle of the single VPN connection
// the client provisions: importing a profile document, reconciling it
// with the previously stored connection, activating and deactivating it,
// and observing asynchronous state transitions.
//
// # Architecture
//
// The package is organized around a few focused types:
//
//   - Client: abstraction over NetworkManager (D-Bus implementation in
//     DBusClient, fakes in tests)
//   - Importer: temp-file import boundary turning a profile document
//     plus credentials into a manager-native connection
//   - Reconciler: update-in-place versus register-as-new decision for a
//     freshly imported connection
//   - Activator: activation/deactivation with the documented
//     resolve-retry workaround
//   - StatusObserver: signal subscription and polling, normalized into
//     one (VpnState, StateReason) stream
//   - Supervisor: wires all of the above around one event loop
//
// # Concurrency
//
// Everything runs cooperatively on a single event loop (Loop). All
// completion callbacks from asynchronous manager operations are
// delivered on the loop goroutine; callbacks must never block it.
// Lifecycle operations issued back-to-back for the same connection are
// not serialized here — callers must not overlap them. Once issued, an
// operation always runs to completion and fires its callback exactly
// once; there is no cancellation.
//
// # Batch mode
//
// One-shot invocations (the CLI) use Supervisor.RunAction: an isolated
// loop is started for a single action and stopped from that action's
// completion callback.
package nm
