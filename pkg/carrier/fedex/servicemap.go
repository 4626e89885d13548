package fedex

import (
	"github.com/shiplink/fedexgate/pkg/carrier"
)

// serviceTypeMap is the forward mapping from internal service codes to FedEx
// service strings. Every code used in a request must appear here; a code
// without an entry fails locally before any network call.
//
// Several internal codes intentionally collapse onto one FedEx string
// (RE is sold as regional economy but ships as INTERNATIONAL_ECONOMY, and
// REF likewise as INTERNATIONAL_ECONOMY_FREIGHT), which is why the reverse
// map below cannot be bijective.
var serviceTypeMap = map[carrier.ServiceType]string{
	carrier.ServiceInternationalPriority:        "INTERNATIONAL_PRIORITY",
	carrier.ServiceInternationalPriorityExpress: "INTERNATIONAL_PRIORITY_EXPRESS",
	carrier.ServiceInternationalEconomy:         "INTERNATIONAL_ECONOMY",
	carrier.ServiceRegionalEconomy:              "INTERNATIONAL_ECONOMY",
	carrier.ServicePriorityOvernight:            "PRIORITY_OVERNIGHT",
	carrier.ServiceInternationalConnectPlus:     "INTERNATIONAL_CONNECT_PLUS",
	carrier.ServiceInternationalPriorityFreight: "INTERNATIONAL_PRIORITY_FREIGHT",
	carrier.ServiceInternationalEconomyFreight:  "INTERNATIONAL_ECONOMY_FREIGHT",
	carrier.ServiceRegionalEconomyFreight:       "INTERNATIONAL_ECONOMY_FREIGHT",
	carrier.ServiceGround:                       "FEDEX_GROUND",
	carrier.ServiceReturns:                      "INTERNATIONAL_PRIORITY",
}

// reverseServiceMap resolves a FedEx service string back to an internal
// code. The mapping is best-effort: where forward entries collapse the
// canonical code wins, and service strings FedEx returns that were never
// forward-mapped stay unresolved — the rate parser then passes the carrier
// string through verbatim rather than failing closed.
var reverseServiceMap = map[string]carrier.ServiceType{
	"INTERNATIONAL_PRIORITY":         carrier.ServiceInternationalPriority,
	"INTERNATIONAL_PRIORITY_EXPRESS": carrier.ServiceInternationalPriorityExpress,
	"INTERNATIONAL_ECONOMY":          carrier.ServiceInternationalEconomy,
	"PRIORITY_OVERNIGHT":             carrier.ServicePriorityOvernight,
	"INTERNATIONAL_CONNECT_PLUS":     carrier.ServiceInternationalConnectPlus,
	"INTERNATIONAL_PRIORITY_FREIGHT": carrier.ServiceInternationalPriorityFreight,
	"INTERNATIONAL_ECONOMY_FREIGHT":  carrier.ServiceInternationalEconomyFreight,
	"FEDEX_GROUND":                   carrier.ServiceGround,
}

// freightServices is the set of freight-class codes that require the
// shipment-level totalWeight field.
var freightServices = map[carrier.ServiceType]bool{
	carrier.ServiceInternationalPriorityFreight: true,
	carrier.ServiceInternationalEconomyFreight:  true,
	carrier.ServiceRegionalEconomyFreight:       true,
}

// carrierService resolves an internal code to its FedEx string.
func carrierService(code carrier.ServiceType) (string, bool) {
	s, ok := serviceTypeMap[code]
	return s, ok
}

// internalService reverse-maps a FedEx string. When the string has no
// reverse entry it is returned verbatim as the service code.
func internalService(fedexService string) carrier.ServiceType {
	if code, ok := reverseServiceMap[fedexService]; ok {
		return code
	}
	return carrier.ServiceType(fedexService)
}

// isFreight reports whether the code is a freight-class service.
func isFreight(code carrier.ServiceType) bool {
	return freightServices[code]
}

// SupportedServices returns all forward-mapped internal codes.
func SupportedServices() []carrier.ServiceType {
	out := make([]carrier.ServiceType, 0, len(serviceTypeMap))
	for code := range serviceTypeMap {
		out = append(out, code)
	}
	return out
}
