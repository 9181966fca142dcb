package entitlement

import "github.com/pixlverify/server/internal/patreon"

// Classify maps a resolution to a decision by walking a fixed-order table;
// the first matching row wins:
//
//  1. no memberships at all             -> NoMembership
//  2. memberships, none for campaign    -> WrongCampaign
//  3. patron_status missing             -> UnknownPatronStatus
//  4. patron_status "declined_patron"   -> DeclinedPayment
//  5. patron_status "former_patron"     -> FormerPatron
//  6. any other non-active status       -> UnknownPatronStatus (raw value kept)
//  7. active, amount below the floor    -> AmountBelowThreshold
//  8. active, amount at or above floor  -> Entitled(amount)
//
// The threshold is a monetary floor rather than a tier enum because the
// upstream tier model is a continuous cents amount. A missing amount on an
// active membership counts as zero.
func Classify(res Resolution, minimumAmountCents int64) Decision {
	switch res.Absence {
	case AbsenceNoMembership:
		return Decision{Reason: ReasonNoMembership}
	case AbsenceWrongCampaign:
		return Decision{Reason: ReasonWrongCampaign}
	}

	record := res.Record

	if record.PatronStatus == nil {
		return Decision{Reason: ReasonUnknownPatronStatus}
	}

	switch status := *record.PatronStatus; status {
	case patreon.StatusDeclinedPatron:
		return Decision{Reason: ReasonDeclinedPayment}
	case patreon.StatusFormerPatron:
		return Decision{Reason: ReasonFormerPatron}
	case patreon.StatusActivePatron:
		// fall through to the amount floor below
	default:
		return Decision{Reason: ReasonUnknownPatronStatus, RawStatus: status}
	}

	var amount int64
	if record.EntitledAmountCents != nil {
		amount = *record.EntitledAmountCents
	}
	if amount < minimumAmountCents {
		return Decision{Reason: ReasonAmountBelowThreshold}
	}

	return Decision{Entitled: true, AmountCents: amount}
}
