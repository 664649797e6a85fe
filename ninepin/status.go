package ninepin

// Status holds the flags decoded from a status sense reply
type Status struct {
	CassetteOut     bool
	ServoRefMissing bool
	Local           bool
	Standby         bool
	Stop            bool
	Eject           bool
	Rewind          bool
	Forward         bool
	Record          bool
	Play            bool
	ServoLock       bool
	TSOMode         bool // time sense offset
	Shuttle         bool
	Jog             bool
	Var             bool
	Direction       bool
	Still           bool
	CueUp           bool
	LampStill       bool
	LampFwd         bool
	LampRev         bool
	NearEOT         bool
	EOT             bool
	CFLock          bool
	ServoAlarm      bool
	SystemAlarm     bool
	RecordInhibit   bool
}

// StatusBit locates one flag in the status reply
type StatusBit struct {
	Name  string
	Byte  int
	Mask  byte
	field func(*Status) *bool
}

// StatusBits lists every decoded flag in reply order
var StatusBits = []StatusBit{
	{"cassette_out", 0, 0x20, func(s *Status) *bool { return &s.CassetteOut }},
	{"servo_ref_missing", 0, 0x04, func(s *Status) *bool { return &s.ServoRefMissing }},
	{"local", 0, 0x01, func(s *Status) *bool { return &s.Local }},
	{"standby", 1, 0x80, func(s *Status) *bool { return &s.Standby }},
	{"stop", 1, 0x20, func(s *Status) *bool { return &s.Stop }},
	{"eject", 1, 0x10, func(s *Status) *bool { return &s.Eject }},
	{"rewind", 1, 0x08, func(s *Status) *bool { return &s.Rewind }},
	{"forward", 1, 0x04, func(s *Status) *bool { return &s.Forward }},
	{"record", 1, 0x02, func(s *Status) *bool { return &s.Record }},
	{"play", 1, 0x01, func(s *Status) *bool { return &s.Play }},
	{"servo_lock", 2, 0x80, func(s *Status) *bool { return &s.ServoLock }},
	{"tso_mode", 2, 0x40, func(s *Status) *bool { return &s.TSOMode }},
	{"shuttle", 2, 0x20, func(s *Status) *bool { return &s.Shuttle }},
	{"jog", 2, 0x10, func(s *Status) *bool { return &s.Jog }},
	{"var", 2, 0x08, func(s *Status) *bool { return &s.Var }},
	{"direction", 2, 0x04, func(s *Status) *bool { return &s.Direction }},
	{"still", 2, 0x02, func(s *Status) *bool { return &s.Still }},
	{"cue_up", 2, 0x01, func(s *Status) *bool { return &s.CueUp }},
	{"lamp_still", 4, 0x40, func(s *Status) *bool { return &s.LampStill }},
	{"lamp_fwd", 4, 0x20, func(s *Status) *bool { return &s.LampFwd }},
	{"lamp_rev", 4, 0x10, func(s *Status) *bool { return &s.LampRev }},
	{"near_eot", 8, 0x20, func(s *Status) *bool { return &s.NearEOT }},
	{"eot", 8, 0x10, func(s *Status) *bool { return &s.EOT }},
	{"cf_lock", 8, 0x08, func(s *Status) *bool { return &s.CFLock }},
	{"svo_alarm", 8, 0x04, func(s *Status) *bool { return &s.ServoAlarm }},
	{"sys_alarm", 8, 0x02, func(s *Status) *bool { return &s.SystemAlarm }},
	{"rec_inhib", 8, 0x01, func(s *Status) *bool { return &s.RecordInhibit }},
}

// StatusField is a named flag value
type StatusField struct {
	Name  string
	Value bool
}

// DecodeStatus maps the status sense payload to named flags.
// Bits without a mapping are ignored.
func DecodeStatus(data []byte) (Status, error) {
	var st Status
	if len(data) < StatusFrameSize {
		return st, shortFrame("decode status", len(data), StatusFrameSize)
	}
	for _, bit := range StatusBits {
		*bit.field(&st) = data[bit.Byte]&bit.Mask != 0
	}
	return st, nil
}

// Fields returns all flags in reply order
func (s Status) Fields() []StatusField {
	fields := make([]StatusField, len(StatusBits))
	for i, bit := range StatusBits {
		fields[i] = StatusField{Name: bit.Name, Value: *bit.field(&s)}
	}
	return fields
}
