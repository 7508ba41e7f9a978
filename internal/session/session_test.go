package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ruslanhut/ocpp-engine/internal/ocpp"
	"github.com/ruslanhut/ocpp-engine/internal/ocpp/v16"
	"github.com/ruslanhut/ocpp-engine/internal/registry"
)

// fakeTransport is an in-memory transport.Transport double: test code
// writes frames onto inbound for the session's Serve loop to read, and
// drains outbound for whatever the session wrote back.
type fakeTransport struct {
	inbound  chan []byte
	outbound chan []byte
	closed   chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound:  make(chan []byte, 8),
		outbound: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (f *fakeTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data := <-f.inbound:
		return data, nil
	case <-f.closed:
		return nil, &closedErr{}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Send(ctx context.Context, data []byte) error {
	select {
	case f.outbound <- data:
		return nil
	default:
		return nil
	}
}

func (f *fakeTransport) Close() error {
	close(f.closed)
	return nil
}

type closedErr struct{}

func (*closedErr) Error() string { return "fake transport closed" }

func (f *fakeTransport) expectOutbound(t *testing.T, timeout time.Duration) []interface{} {
	t.Helper()
	select {
	case data := <-f.outbound:
		var arr []interface{}
		if err := json.Unmarshal(data, &arr); err != nil {
			t.Fatalf("unmarshal outbound frame: %v (data=%s)", err, data)
		}
		return arr
	case <-time.After(timeout):
		t.Fatal("timed out waiting for outbound frame")
		return nil
	}
}

func newTestSession(t *testing.T, tr *fakeTransport, reg *registry.Registry) *Session {
	t.Helper()
	reg.Freeze()
	return New(tr, reg, v16.NewSchemaRegistry(), v16.IsKnownAction, WithResponseTimeout(200*time.Millisecond))
}

// Scenario 1: BootNotification happy path.
func TestBootNotificationHappyPath(t *testing.T) {
	reg := registry.New()
	err := reg.RegisterOnAction(string(v16.ActionBootNotification), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if args["charge_point_vendor"] != "VendorX" || args["charge_point_model"] != "SingleSocketCharger" {
			t.Fatalf("unexpected handler args: %#v", args)
		}
		return map[string]interface{}{
			"status":       "Accepted",
			"current_time": "2013-02-01T20:53:32.486Z",
			"interval":     300,
		}, nil
	}, false, false)
	if err != nil {
		t.Fatalf("RegisterOnAction: %v", err)
	}

	tr := newFakeTransport()
	sess := newTestSession(t, tr, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	tr.inbound <- []byte(`[2,"19223201","BootNotification",{"chargePointVendor":"VendorX","chargePointModel":"SingleSocketCharger"}]`)

	arr := tr.expectOutbound(t, time.Second)
	if int(arr[0].(float64)) != int(ocpp.MessageTypeCallResult) {
		t.Fatalf("expected CallResult, got %v", arr)
	}
	if arr[1] != "19223201" {
		t.Fatalf("unexpected unique id: %v", arr[1])
	}
	payload := arr[2].(map[string]interface{})
	if payload["status"] != "Accepted" || payload["interval"] != float64(300) {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

// Scenario 2: unknown action, known in version, no handler registered.
func TestUnknownActionKnownInVersion(t *testing.T) {
	reg := registry.New()
	tr := newFakeTransport()
	sess := newTestSession(t, tr, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	tr.inbound <- []byte(`[2,"u-1","ChangeAvailability",{"connectorId":1,"type":"Operative"}]`)

	arr := tr.expectOutbound(t, time.Second)
	if int(arr[0].(float64)) != int(ocpp.MessageTypeCallError) {
		t.Fatalf("expected CallError, got %v", arr)
	}
	if arr[2] != string(ocpp.ErrorNotImplemented) {
		t.Fatalf("expected NotImplemented, got %v", arr[2])
	}
}

// Scenario 3: unknown action, not in version at all.
func TestUnknownActionNotInVersion(t *testing.T) {
	reg := registry.New()
	tr := newFakeTransport()
	sess := newTestSession(t, tr, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	tr.inbound <- []byte(`[2,"u-2","Nonsense",{}]`)

	arr := tr.expectOutbound(t, time.Second)
	if int(arr[0].(float64)) != int(ocpp.MessageTypeCallError) {
		t.Fatalf("expected CallError, got %v", arr)
	}
	if arr[2] != string(ocpp.ErrorNotSupported) {
		t.Fatalf("expected NotSupported, got %v", arr[2])
	}
}

// Scenario 4: schema-required field missing.
func TestSchemaRequiredMissing(t *testing.T) {
	reg := registry.New()
	err := reg.RegisterOnAction(string(v16.ActionBootNotification), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		t.Fatal("handler must not be invoked when validation fails")
		return nil, nil
	}, false, false)
	if err != nil {
		t.Fatalf("RegisterOnAction: %v", err)
	}

	tr := newFakeTransport()
	sess := newTestSession(t, tr, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	tr.inbound <- []byte(`[2,"u-3","BootNotification",{"chargePointVendor":"X"}]`)

	arr := tr.expectOutbound(t, time.Second)
	if int(arr[0].(float64)) != int(ocpp.MessageTypeCallError) {
		t.Fatalf("expected CallError, got %v", arr)
	}
	if arr[2] != string(ocpp.ErrorProtocolError) {
		t.Fatalf("expected ProtocolError, got %v", arr[2])
	}
}

// Scenario 5: outbound Call times out when no response arrives.
func TestOutboundCallTimeout(t *testing.T) {
	reg := registry.New()
	tr := newFakeTransport()
	reg.Freeze()
	sess := New(tr, reg, v16.NewSchemaRegistry(), v16.IsKnownAction)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	start := time.Now()
	_, err := sess.Call(context.Background(), string(v16.ActionHeartbeat), nil, 100*time.Millisecond)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if _, ok := err.(*ocpp.TimeoutError); !ok {
		t.Fatalf("expected *ocpp.TimeoutError, got %T (%v)", err, err)
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("returned before timeout elapsed: %v", elapsed)
	}
	if elapsed > 150*time.Millisecond {
		t.Fatalf("returned too long after timeout: %v", elapsed)
	}
}

// Scenario 6: an unsolicited CallResult with no pending outbound Call is
// discarded and the session keeps running.
func TestUnsolicitedResponseDiscarded(t *testing.T) {
	reg := registry.New()
	err := reg.RegisterOnAction(string(v16.ActionHeartbeat), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"current_time": "2013-02-01T20:53:32.486Z"}, nil
	}, false, false)
	if err != nil {
		t.Fatalf("RegisterOnAction: %v", err)
	}

	tr := newFakeTransport()
	sess := newTestSession(t, tr, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	tr.inbound <- []byte(`[3,"unknown-id",{}]`)

	// drain whatever the session might (incorrectly) have sent; it
	// should send nothing in response to an unsolicited CallResult.
	select {
	case data := <-tr.outbound:
		t.Fatalf("expected no outbound frame for unsolicited response, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}

	// Session must still be alive and able to serve a subsequent Call.
	tr.inbound <- []byte(`[2,"u-4","Heartbeat",{}]`)
	arr := tr.expectOutbound(t, time.Second)
	if int(arr[0].(float64)) != int(ocpp.MessageTypeCallResult) {
		t.Fatalf("expected session to keep serving after unsolicited response, got %v", arr)
	}
}

// Correlation: Call returns exactly the payload of the CallResult whose
// unique id matches the one it wrote.
func TestCallCorrelation(t *testing.T) {
	reg := registry.New()
	tr := newFakeTransport()
	reg.Freeze()
	sess := New(tr, reg, v16.NewSchemaRegistry(), v16.IsKnownAction, WithIDGenerator(func() string { return "fixed-id" }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	go func() {
		arr := tr.expectOutbound(t, time.Second)
		if arr[1] != "fixed-id" {
			t.Errorf("expected fixed-id, got %v", arr[1])
		}
		tr.inbound <- []byte(`[3,"fixed-id",{"currentTime":"2013-02-01T20:53:32.486Z"}]`)
	}()

	result, err := sess.Call(context.Background(), string(v16.ActionHeartbeat), nil, time.Second)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result["current_time"] != "2013-02-01T20:53:32.486Z" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

// CallError reception in the default suppress mode returns (nil, nil).
func TestCallErrorSuppressedByDefault(t *testing.T) {
	reg := registry.New()
	tr := newFakeTransport()
	reg.Freeze()
	sess := New(tr, reg, v16.NewSchemaRegistry(), v16.IsKnownAction, WithIDGenerator(func() string { return "fixed-id" }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	go func() {
		tr.expectOutbound(t, time.Second)
		tr.inbound <- []byte(`[4,"fixed-id","NotSupported","nope",{}]`)
	}()

	result, err := sess.Call(context.Background(), string(v16.ActionHeartbeat), nil, time.Second)
	if err != nil {
		t.Fatalf("expected suppressed CallError to yield nil error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %#v", result)
	}
}
