package itinerary

import "github.com/parigo/parigo/pkg/util"

type modeRule struct {
	CommercialMode string
	Allowed        bool
}

// modeRules is matched on the folded commercial mode, first match wins,
// no match means not allowed. Tram and TER stay denied even though they
// are rail modes.
var modeRules = []modeRule{
	{"metro", true},
	{"bus", true},
	{"rer", true},
	{"rapid transit", true},
	{"rapidtransit", true},
	{"local train", true},
	{"localtrain", true},
	{"rail shuttle", true},
	{"railshuttle", true},
	{"regional rail", true},
	{"regionalrail", true},
	{"tramway", false},
	{"tram", false},
	{"ter", false},
	{"transilien", false},
}

func modeAllowed(commercialMode string) bool {
	folded := util.NormalizeText(commercialMode)

	for _, rule := range modeRules {
		if rule.CommercialMode == folded {
			return rule.Allowed
		}
	}

	return false
}
