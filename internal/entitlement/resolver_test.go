package entitlement

import (
	"testing"

	"github.com/pixlverify/server/internal/patreon"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func member(id, campaignID string, status *string, amount *int64) patreon.Member {
	return patreon.Member{
		RecordID:            id,
		CampaignID:          campaignID,
		PatronStatus:        status,
		EntitledAmountCents: amount,
	}
}

func TestResolveEmptySet(t *testing.T) {
	res := Resolve(nil, "42")

	if res.Absence != AbsenceNoMembership {
		t.Errorf("expected AbsenceNoMembership, got %v", res.Absence)
	}
	if res.Record != nil {
		t.Errorf("expected nil record, got %+v", res.Record)
	}
}

func TestResolveNoCampaignMatch(t *testing.T) {
	members := []patreon.Member{
		member("m1", "99", strPtr(patreon.StatusActivePatron), int64Ptr(500)),
		member("m2", "77", strPtr(patreon.StatusActivePatron), int64Ptr(500)),
	}

	res := Resolve(members, "42")

	if res.Absence != AbsenceWrongCampaign {
		t.Errorf("expected AbsenceWrongCampaign, got %v", res.Absence)
	}
}

// Records without a campaign link cannot be matched, but their presence still
// means memberships existed, so absence resolves to wrong campaign rather
// than no membership.
func TestResolveUnlinkedRecordsExcluded(t *testing.T) {
	members := []patreon.Member{
		member("m1", "", strPtr(patreon.StatusActivePatron), int64Ptr(500)),
	}

	res := Resolve(members, "42")

	if res.Absence != AbsenceWrongCampaign {
		t.Errorf("expected AbsenceWrongCampaign for unlinked-only set, got %v", res.Absence)
	}
}

func TestResolveSingleMatch(t *testing.T) {
	members := []patreon.Member{
		member("m1", "99", strPtr(patreon.StatusFormerPatron), nil),
		member("m2", "42", strPtr(patreon.StatusActivePatron), int64Ptr(999)),
	}

	res := Resolve(members, "42")

	if res.Absence != AbsenceNone {
		t.Fatalf("expected a resolved record, got absence %v", res.Absence)
	}
	if res.Record.RecordID != "m2" {
		t.Errorf("expected record m2, got %s", res.Record.RecordID)
	}
	if res.Duplicates != 0 {
		t.Errorf("expected no duplicates, got %d", res.Duplicates)
	}
}

func TestResolveDuplicatesFirstWins(t *testing.T) {
	members := []patreon.Member{
		member("m1", "42", strPtr(patreon.StatusActivePatron), int64Ptr(999)),
		member("m2", "42", strPtr(patreon.StatusFormerPatron), int64Ptr(100)),
		member("m3", "42", strPtr(patreon.StatusDeclinedPatron), nil),
	}

	res := Resolve(members, "42")

	if res.Record == nil || res.Record.RecordID != "m1" {
		t.Fatalf("expected first record m1 to win, got %+v", res.Record)
	}
	if res.Duplicates != 2 {
		t.Errorf("expected 2 duplicates, got %d", res.Duplicates)
	}
}

// Duplicates never change the resolved record versus having exactly one.
func TestResolveDeterministicUnderDuplication(t *testing.T) {
	single := []patreon.Member{
		member("m1", "42", strPtr(patreon.StatusActivePatron), int64Ptr(999)),
	}
	duplicated := append(single,
		member("m2", "42", strPtr(patreon.StatusActivePatron), int64Ptr(100)),
	)

	resSingle := Resolve(single, "42")
	resDup := Resolve(duplicated, "42")

	if resSingle.Record.RecordID != resDup.Record.RecordID {
		t.Errorf("duplication changed the resolved record: %s vs %s",
			resSingle.Record.RecordID, resDup.Record.RecordID)
	}
	if *resSingle.Record.EntitledAmountCents != *resDup.Record.EntitledAmountCents {
		t.Errorf("duplication changed the resolved amount")
	}
}
