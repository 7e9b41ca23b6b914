package nm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/yllada/vpn-supervisor/common"
)

func TestReconcilerAddsWhenNoUUIDStored(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	store := &fakeStore{}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("new-uuid"), func(err error) {
			opErr = err
			stop()
		})
	})

	if opErr != nil {
		t.Fatalf("Save failed: %v", opErr)
	}
	if len(client.added) != 1 {
		t.Fatalf("Expected 1 add, got %d", len(client.added))
	}
	if len(client.updated) != 0 {
		t.Errorf("Expected no updates, got %d", len(client.updated))
	}
	if store.uuid != "new-uuid" {
		t.Errorf("Expected persisted UUID 'new-uuid', got %q", store.uuid)
	}
}

func TestReconcilerUpdatesWhenStoredUUIDResolves(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	client.connections["stored"] = testConnection("stored")
	store := &fakeStore{uuid: "stored", has: true}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("imported"), func(err error) {
			opErr = err
			stop()
		})
	})

	if opErr != nil {
		t.Fatalf("Save failed: %v", opErr)
	}
	if len(client.updated) != 1 {
		t.Fatalf("Expected 1 update, got %d", len(client.updated))
	}
	if len(client.added) != 0 {
		t.Errorf("Expected no adds, got %d", len(client.added))
	}
	if store.uuid != "stored" {
		t.Errorf("Update must not change the stored UUID, got %q", store.uuid)
	}
	if len(store.setCalls) != 0 {
		t.Errorf("Update must not rewrite the store, got %d writes", len(store.setCalls))
	}
}

func TestReconcilerAddsWhenStoredUUIDIsStale(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	store := &fakeStore{uuid: "gone", has: true}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("fresh"), func(err error) {
			opErr = err
			stop()
		})
	})

	if opErr != nil {
		t.Fatalf("Save failed: %v", opErr)
	}
	if len(client.added) != 1 {
		t.Fatalf("Expected 1 add for stale UUID, got %d", len(client.added))
	}
	if store.uuid != "fresh" {
		t.Errorf("Stale UUID should be overwritten, got %q", store.uuid)
	}
}

func TestReconcilerTreatsStoreReadErrorAsAbsent(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	store := &fakeStore{getErr: errors.New("db locked")}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("fresh"), func(err error) {
			opErr = err
			stop()
		})
	})

	if opErr != nil {
		t.Fatalf("Save failed: %v", opErr)
	}
	if len(client.added) != 1 {
		t.Fatalf("Expected fallback to add, got %d adds", len(client.added))
	}
}

func TestReconcilerSurfacesAddRejection(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	client.addErr = fmt.Errorf("%w: invalid setting", common.ErrManagerRejected)
	store := &fakeStore{}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("fresh"), func(err error) {
			opErr = err
			stop()
		})
	})

	if !errors.Is(opErr, common.ErrManagerRejected) {
		t.Fatalf("Expected ErrManagerRejected, got %v", opErr)
	}
	if store.has {
		t.Error("Rejected add must not persist a UUID")
	}
}

func TestReconcilerSurfacesUpdateRejection(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	client.connections["stored"] = testConnection("stored")
	client.updateErr = fmt.Errorf("%w: invalid setting", common.ErrManagerRejected)
	store := &fakeStore{uuid: "stored", has: true}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("imported"), func(err error) {
			opErr = err
			stop()
		})
	})

	if !errors.Is(opErr, common.ErrManagerRejected) {
		t.Fatalf("Expected ErrManagerRejected, got %v", opErr)
	}
}

func TestReconcilerSurfacesPersistFailure(t *testing.T) {
	loop := NewLoop()
	client := newFakeClient(loop)
	store := &fakeStore{setErr: errors.New("disk full")}
	rec := NewReconciler(client, store)

	var opErr error
	runLoop(t, loop, func(stop func()) {
		rec.Save(testConnection("fresh"), func(err error) {
			opErr = err
			stop()
		})
	})

	if opErr == nil {
		t.Fatal("Expected persist failure to surface")
	}
}
