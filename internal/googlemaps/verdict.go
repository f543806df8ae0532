package googlemaps

// deliverySignal is one provider signal's judgment of an address.
type deliverySignal int

const (
	// signalUnknown means the signal is absent or ambiguous; fall through
	// to the next signal.
	signalUnknown deliverySignal = iota
	signalDeliverable
	signalNotDeliverable
)

// dpvSignal reads the carrier-specific USPS DPV confirmation.
// "Y" confirmed, "D" confirmed with drop, "S" confirmed at street level —
// all deliverable. "N" is not deliverable. Anything else (or no uspsData
// at all, as for international addresses) is ambiguous.
func dpvSignal(u *uspsData) deliverySignal {
	if u == nil {
		return signalUnknown
	}
	switch u.DPVConfirmation {
	case "Y", "D", "S":
		return signalDeliverable
	case "N":
		return signalNotDeliverable
	default:
		return signalUnknown
	}
}

// verdictSignal reads the generic geocoding verdict: the address must be
// complete and validated at some granularity finer than OTHER. SUB_PREMISE
// (apartment/unit) counts as deliverable.
func verdictSignal(v *verdict) deliverySignal {
	if v == nil {
		return signalUnknown
	}
	if v.AddressComplete && v.ValidationGranularity != "OTHER" {
		return signalDeliverable
	}
	return signalNotDeliverable
}

// isDeliverable combines the two signals: the carrier-specific DPV
// confirmation wins when unambiguous, the geocoding verdict is the
// fallback. The precedence is inferred from observed API behavior, not
// documented by the vendor.
func isDeliverable(r *validateResult) bool {
	switch dpvSignal(r.USPSData) {
	case signalDeliverable:
		return true
	case signalNotDeliverable:
		return false
	}
	return verdictSignal(r.Verdict) == signalDeliverable
}
