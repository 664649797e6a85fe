package deck

import (
	"fmt"

	"github.com/sergev/sony9pin/devices"
)

// Identity is the device type code with its make and model, when known
type Identity struct {
	Code  uint16
	Make  string
	Model string
}

func (id Identity) String() string {
	s := fmt.Sprintf("device_type=0x%04x", id.Code)
	if id.Make != "" {
		s += fmt.Sprintf(", device_make=%q", id.Make)
	}
	if id.Model != "" {
		s += fmt.Sprintf(", device_model=%q", id.Model)
	}
	return s
}

// Resolve looks the code up among the fixed well-known identities first,
// then in the table. An unknown code is not an error.
func Resolve(code uint16, table *devices.Table) Identity {
	id := Identity{Code: code}

	entry, ok := devices.WellKnown(code)
	if !ok {
		entry, ok = table.Lookup(code)
	}
	if ok {
		id.Make = entry.Make
		id.Model = entry.Model()
	}
	return id
}
