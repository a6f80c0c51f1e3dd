package transit

import "tidbyt.dev/transitnetwork/model"

// Mode is the internal, closed classification of a route, derived from
// its raw route_type code by ModeForRouteType. Downstream RAPTOR search
// and FilteredPatterns filter on Mode, never on the raw route_type.
type Mode int

const (
	ModeRail Mode = iota
	ModeBus
	ModeSubway
	ModeTram
	ModeFerry
	ModeCableCar
	ModeGondola
	ModeFunicular
	ModeAir
	modeCount
)

func (m Mode) String() string {
	switch m {
	case ModeRail:
		return "RAIL"
	case ModeBus:
		return "BUS"
	case ModeSubway:
		return "SUBWAY"
	case ModeTram:
		return "TRAM"
	case ModeFerry:
		return "FERRY"
	case ModeCableCar:
		return "CABLE_CAR"
	case ModeGondola:
		return "GONDOLA"
	case ModeFunicular:
		return "FUNICULAR"
	case ModeAir:
		return "AIR"
	default:
		return "UNKNOWN"
	}
}

// ModeSet is a bitset over Mode, used by FilteredPatterns. It fits
// comfortably in a uint16 since the Mode enum is small and closed.
type ModeSet uint16

func NewModeSet(modes ...Mode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s = s.Add(m)
	}
	return s
}

func (s ModeSet) Add(m Mode) ModeSet     { return s | (1 << uint(m)) }
func (s ModeSet) Contains(m Mode) bool    { return s&(1<<uint(m)) != 0 }
func AllModes() ModeSet {
	var s ModeSet
	for m := Mode(0); m < modeCount; m++ {
		s = s.Add(m)
	}
	return s
}

// ModeForRouteType maps a feed's raw route_type onto the closed Mode
// enum. This is the "single total mapping (range table + fallthrough
// switch)" design note: extended-range ids are classified by numeric
// band, classic ids by exact value, and TAXI is rejected rather than
// mapped.
//
// ok is false only for RouteTypeTaxi; every other input maps
// successfully, and codes outside every band below map to ModeBus.
func ModeForRouteType(rt model.RouteType) (mode Mode, ok bool) {
	switch {
	case rt == model.RouteTypeTaxi:
		return 0, false

	// Classic GTFS route types (0-12).
	case rt == model.RouteTypeTram:
		return ModeTram, true
	case rt == model.RouteTypeSubway:
		return ModeSubway, true
	case rt == model.RouteTypeRail:
		return ModeRail, true
	case rt == model.RouteTypeBus:
		return ModeBus, true
	case rt == model.RouteTypeFerry:
		return ModeFerry, true
	case rt == model.RouteTypeCable:
		return ModeCableCar, true
	case rt == model.RouteTypeAerial:
		return ModeGondola, true
	case rt == model.RouteTypeFunicular:
		return ModeFunicular, true
	case rt == model.RouteTypeTrolleybus:
		return ModeBus, true
	case rt == model.RouteTypeMonorail:
		return ModeSubway, true

	// Extended (Google "hierarchical" proposal) ranges, banded by
	// hundreds/thousands.
	case rt >= 100 && rt < 200:
		return ModeRail, true
	case rt >= 200 && rt < 300:
		return ModeBus, true // coach
	case rt >= 300 && rt < 500:
		return ModeRail, true // suburban/urban rail
	case rt >= 500 && rt < 700:
		return ModeSubway, true // metro/underground
	case rt >= 700 && rt < 900:
		return ModeBus, true
	case rt >= 900 && rt < 1000:
		return ModeTram, true
	case rt >= 1000 && rt < 1100:
		return ModeAir, true
	case rt >= 1100 && rt < 1200:
		return ModeFerry, true
	case rt >= 1200 && rt < 1300:
		return ModeCableCar, true // aerial/suspended cable car
	case rt >= 1300 && rt < 1400:
		return ModeGondola, true
	case rt >= 1400 && rt < 1500:
		return ModeFunicular, true

	default:
		// Unknown band: default to bus rather than reject, since
		// the feed has already told us this is a transit route
		// (just with a code outside the documented domain).
		return ModeBus, true
	}
}
