package devices

import "sort"

// Device type codes reported by Blackmagic HyperDeck Studio Mini
const (
	BLACKMAGIC_HYPERDECK_STUDIO_MINI_NTSC = 0xf0e0
	BLACKMAGIC_HYPERDECK_STUDIO_MINI_PAL  = 0xf1e0
	BLACKMAGIC_HYPERDECK_STUDIO_MINI_24P  = 0xf2e0
)

var wellKnown = map[uint16]Entry{}

// Register adds a fixed device identity, consulted before the table
func Register(code uint16, vendor string, models ...string) {
	wellKnown[code] = Entry{Code: code, Make: vendor, Models: models}
}

// WellKnown returns a registered fixed identity
func WellKnown(code uint16) (Entry, bool) {
	e, ok := wellKnown[code]
	return e, ok
}

// WellKnownEntries returns the registered fixed identities sorted by code
func WellKnownEntries() []Entry {
	list := make([]Entry, 0, len(wellKnown))
	for _, e := range wellKnown {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func init() {
	Register(BLACKMAGIC_HYPERDECK_STUDIO_MINI_NTSC, "Blackmagic", "Hyperdeck Studio Mini, NTSC")
	Register(BLACKMAGIC_HYPERDECK_STUDIO_MINI_PAL, "Blackmagic", "Hyperdeck Studio Mini, PAL")
	Register(BLACKMAGIC_HYPERDECK_STUDIO_MINI_24P, "Blackmagic", "Hyperdeck Studio Mini, 24P")
}
