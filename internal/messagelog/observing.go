package messagelog

import (
	"context"

	"github.com/ruslanhut/ocpp-engine/internal/ocpp"
	"github.com/ruslanhut/ocpp-engine/internal/transport"
)

// ObservingTransport wraps a transport.Transport, reporting every frame that
// crosses it to an Observer. The session engine only ever sees the plain
// transport.Transport interface, so it stays unaware that persistence is
// happening at all.
type ObservingTransport struct {
	transport.Transport
	StationID string
	Observer  Observer
}

// NewObservingTransport returns a transport that logs every frame sent or
// received through inner to observer after delegating to it; a frame whose
// Send or Recv fails is not reported.
func NewObservingTransport(inner transport.Transport, stationID string, observer Observer) *ObservingTransport {
	return &ObservingTransport{Transport: inner, StationID: stationID, Observer: observer}
}

func (t *ObservingTransport) Recv(ctx context.Context) ([]byte, error) {
	data, err := t.Transport.Recv(ctx)
	if err != nil {
		return nil, err
	}
	t.observe(ctx, DirectionInbound, data)
	return data, nil
}

func (t *ObservingTransport) Send(ctx context.Context, data []byte) error {
	if err := t.Transport.Send(ctx, data); err != nil {
		return err
	}
	t.observe(ctx, DirectionOutbound, data)
	return nil
}

func (t *ObservingTransport) observe(ctx context.Context, direction Direction, data []byte) {
	entry := Entry{
		StationID:   t.StationID,
		Direction:   direction,
		RawMessage:  data,
		MessageType: "unknown",
	}
	if msg, err := ocpp.Decode(data); err == nil {
		switch m := msg.(type) {
		case *ocpp.Call:
			entry.MessageType = "Call"
			entry.Action = m.Action
			entry.UniqueID = m.UniqueID
		case *ocpp.CallResult:
			entry.MessageType = "CallResult"
			entry.UniqueID = m.UniqueID
		case *ocpp.CallError:
			entry.MessageType = "CallError"
			entry.UniqueID = m.UniqueID
		}
	}
	t.Observer.Observe(ctx, entry)
}
