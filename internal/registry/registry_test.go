package registry

import (
	"context"
	"testing"
)

func noopOnAction(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func TestRegisterOnActionAndLookup(t *testing.T) {
	reg := New()
	if err := reg.RegisterOnAction("BootNotification", noopOnAction, false, false); err != nil {
		t.Fatalf("RegisterOnAction: %v", err)
	}

	entry, ok := reg.Lookup("BootNotification")
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if entry.OnAction == nil {
		t.Error("expected OnAction handler to be set")
	}
	if entry.SkipSchemaValidation {
		t.Error("expected SkipSchemaValidation false")
	}
}

func TestRegisterDuplicateOnActionRejected(t *testing.T) {
	reg := New()
	if err := reg.RegisterOnAction("Heartbeat", noopOnAction, false, false); err != nil {
		t.Fatalf("first RegisterOnAction: %v", err)
	}
	if err := reg.RegisterOnAction("Heartbeat", noopOnAction, false, false); err == nil {
		t.Fatal("expected error on duplicate on_action registration")
	}
}

func TestRegisterOnAndAfterActionSameAction(t *testing.T) {
	reg := New()
	afterCalled := false
	after := func(ctx context.Context, args map[string]interface{}) { afterCalled = true }

	if err := reg.RegisterOnAction("Heartbeat", noopOnAction, false, false); err != nil {
		t.Fatalf("RegisterOnAction: %v", err)
	}
	if err := reg.RegisterAfterAction("Heartbeat", after); err != nil {
		t.Fatalf("RegisterAfterAction: %v", err)
	}

	entry, ok := reg.Lookup("Heartbeat")
	if !ok {
		t.Fatal("expected entry")
	}
	if entry.OnAction == nil || entry.AfterAction == nil {
		t.Fatal("expected both handlers set")
	}
	entry.AfterAction(context.Background(), nil)
	if !afterCalled {
		t.Error("expected after handler to run")
	}
}

func TestFreezeRejectsFurtherRegistration(t *testing.T) {
	reg := New()
	reg.Freeze()
	if !reg.Frozen() {
		t.Fatal("expected Frozen() true")
	}
	if err := reg.RegisterOnAction("Heartbeat", noopOnAction, false, false); err == nil {
		t.Fatal("expected error registering after freeze")
	}
	if err := reg.RegisterAfterAction("Heartbeat", func(context.Context, map[string]interface{}) {}); err == nil {
		t.Fatal("expected error registering after_action after freeze")
	}
}

func TestLookupMiss(t *testing.T) {
	reg := New()
	if _, ok := reg.Lookup("Nonsense"); ok {
		t.Fatal("expected miss for unregistered action")
	}
}

func TestCallUniqueIDRequiredFlagCarried(t *testing.T) {
	reg := New()
	if err := reg.RegisterOnAction("RemoteStartTransaction", noopOnAction, true, true); err != nil {
		t.Fatalf("RegisterOnAction: %v", err)
	}
	entry, _ := reg.Lookup("RemoteStartTransaction")
	if !entry.SkipSchemaValidation {
		t.Error("expected SkipSchemaValidation true")
	}
	if !entry.CallUniqueIDRequired {
		t.Error("expected CallUniqueIDRequired true")
	}
}
