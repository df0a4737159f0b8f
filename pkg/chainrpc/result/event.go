package result

import (
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// PhaseKind is the block execution phase an event was emitted in.
type PhaseKind byte

// Execution phases.
const (
	ApplyExtrinsic PhaseKind = iota
	Finalization
	Initialization
)

type (
	// Phase is an event record phase, Extrinsic is the extrinsic index for
	// ApplyExtrinsic.
	Phase struct {
		Kind      PhaseKind
		Extrinsic uint32
	}

	// Event is a decoded runtime event record.
	Event struct {
		Phase  Phase
		Pallet string
		Method string
		Fields []scale.NamedValue
		Topics []util.Uint256
	}
)

// Field returns the named event field.
func (e *Event) Field(name string) (any, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Is checks the event pallet and method.
func (e *Event) Is(pallet, method string) bool {
	return e.Pallet == pallet && e.Method == method
}

// String implements the fmt.Stringer interface.
func (e *Event) String() string {
	return e.Pallet + "." + e.Method
}

// DecodeEvents decodes the System.Events storage value.
func DecodeEvents(md *metadata.Metadata, raw []byte) ([]Event, error) {
	entry, err := md.StorageEntry("System", "Events")
	if err != nil {
		return nil, err
	}
	v, err := md.Types.DecodeBytes(entry.Value, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	records, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("events: unexpected %T", v)
	}
	res := make([]Event, 0, len(records))
	for i, rec := range records {
		ev, err := eventFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		res = append(res, ev)
	}
	return res, nil
}

// ExtrinsicEvents filters events emitted by the extrinsic with the given
// index.
func ExtrinsicEvents(events []Event, index int) []Event {
	var res []Event
	for _, ev := range events {
		if ev.Phase.Kind == ApplyExtrinsic && int(ev.Phase.Extrinsic) == index {
			res = append(res, ev)
		}
	}
	return res
}

func eventFromRecord(rec any) (Event, error) {
	var ev Event
	c, ok := rec.(*scale.Composite)
	if !ok {
		return ev, fmt.Errorf("unexpected record %T", rec)
	}
	phase, _ := c.Get("phase")
	pv, ok := phase.(*scale.Variant)
	if !ok {
		return ev, fmt.Errorf("unexpected phase %T", phase)
	}
	ev.Phase.Kind = PhaseKind(pv.Index)
	if ev.Phase.Kind == ApplyExtrinsic {
		idx, ok := pv.Value().(uint32)
		if !ok {
			return ev, fmt.Errorf("unexpected extrinsic index %T", pv.Value())
		}
		ev.Phase.Extrinsic = idx
	}
	event, _ := c.Get("event")
	outer, ok := event.(*scale.Variant)
	if !ok {
		return ev, fmt.Errorf("unexpected event %T", event)
	}
	ev.Pallet = outer.Name
	inner, ok := outer.Value().(*scale.Variant)
	if !ok {
		return ev, fmt.Errorf("%s: unexpected event %T", outer.Name, outer.Value())
	}
	ev.Method = inner.Name
	ev.Fields = inner.Fields
	topics, _ := c.Get("topics")
	if ts, ok := topics.([]any); ok {
		for _, t := range ts {
			b, ok := t.([]byte)
			if !ok {
				return ev, fmt.Errorf("unexpected topic %T", t)
			}
			h, err := util.Uint256DecodeBytesBE(b)
			if err != nil {
				return ev, fmt.Errorf("topic: %w", err)
			}
			ev.Topics = append(ev.Topics, h)
		}
	}
	return ev, nil
}
