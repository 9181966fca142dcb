// Package entitlement decides whether a membership lookup grants access.
// Resolution picks the relevant membership record out of an identity lookup;
// classification maps that record (or its absence) to a decision through an
// explicit, ordered table. Data-shape anomalies never produce errors here,
// only denial reasons.
package entitlement

// Reason names why a verification was denied. Clients display different
// remediation messages per reason, so declined and former patrons must stay
// distinguishable from the generic unknown-status bucket.
type Reason string

const (
	ReasonNoMembership         Reason = "no_membership"
	ReasonWrongCampaign        Reason = "wrong_campaign"
	ReasonDeclinedPayment      Reason = "declined_payment"
	ReasonFormerPatron         Reason = "former_patron"
	ReasonUnknownPatronStatus  Reason = "unknown_patron_status"
	ReasonAmountBelowThreshold Reason = "amount_below_threshold"
)

// Decision is the terminal output of a verification. It is request-scoped:
// nothing about it outlives the call that produced it.
type Decision struct {
	// Entitled reports whether the credential holder has an active,
	// sufficiently funded membership.
	Entitled bool

	// AmountCents is the resolved pledge amount. Set only when Entitled.
	AmountCents int64

	// Reason names the denial. Empty when Entitled.
	Reason Reason

	// RawStatus carries the unrecognized patron_status value for diagnostics
	// when Reason is ReasonUnknownPatronStatus.
	RawStatus string
}

// Tag returns a stable label for metrics and logs.
func (d Decision) Tag() string {
	if d.Entitled {
		return "entitled"
	}
	return string(d.Reason)
}
