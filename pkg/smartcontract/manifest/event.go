package manifest

import (
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

type (
	// Event describes a contract event.
	Event struct {
		Args  []EventArg `json:"args"`
		Docs  []string   `json:"docs"`
		Label string     `json:"label"`
	}

	// EventArg is an event field, indexed fields are also published as
	// topics.
	EventArg struct {
		Docs    []string `json:"docs"`
		Indexed bool     `json:"indexed"`
		Label   string   `json:"label"`
		Type    TypeSpec `json:"type"`
	}
)

// Event returns the event with the given label, nil if there is none.
func (m *Manifest) Event(label string) *Event {
	for i := range m.Spec.Events {
		if m.Spec.Events[i].Label == label {
			return &m.Spec.Events[i]
		}
	}
	return nil
}

// DecodeEvent decodes the data of a Contracts.ContractEmitted event. ink! v4
// prefixes event data with the index of the event in the metadata events list.
func (m *Manifest) DecodeEvent(data []byte) (*Event, []scale.NamedValue, error) {
	if len(data) == 0 {
		return nil, nil, &DecodeError{What: "event", Err: fmt.Errorf("no data")}
	}
	idx := int(data[0])
	if idx >= len(m.Spec.Events) {
		return nil, nil, &DecodeError{What: "event", Err: fmt.Errorf("unknown event index %d", idx)}
	}
	ev := &m.Spec.Events[idx]
	r := io.NewBinReaderFromBuf(data[1:])
	fields := make([]scale.NamedValue, len(ev.Args))
	for i, a := range ev.Args {
		v, err := m.Types.Decode(a.Type.Type, r)
		if err != nil {
			return nil, nil, &DecodeError{What: "event " + ev.Label + " field " + a.Label, Err: err}
		}
		fields[i] = scale.NamedValue{Name: a.Label, Value: v}
	}
	if r.Len() != 0 {
		return nil, nil, &DecodeError{What: "event " + ev.Label, Err: &io.TrailingBytesError{Left: r.Len()}}
	}
	return ev, fields, nil
}
