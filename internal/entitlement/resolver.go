package entitlement

import "github.com/pixlverify/server/internal/patreon"

// Absence distinguishes why no membership record could be resolved.
type Absence int

const (
	// AbsenceNone means a record was resolved.
	AbsenceNone Absence = iota
	// AbsenceNoMembership means the lookup returned no membership records at all.
	AbsenceNoMembership
	// AbsenceWrongCampaign means memberships existed but none belonged to the
	// configured campaign.
	AbsenceWrongCampaign
)

// Resolution is the outcome of scanning a membership lookup for the
// configured campaign.
type Resolution struct {
	// Record is the resolved membership, nil when Absence is set.
	Record *patreon.Member

	// Absence explains a nil Record.
	Absence Absence

	// Duplicates counts campaign matches beyond the first. Duplicates are an
	// observability signal, never an error, and never change Record.
	Duplicates int
}

// Resolve scans members in response order for records belonging to
// campaignID. Records without a campaign link cannot be matched and are
// skipped. The first match wins deterministically; extra matches are only
// counted. Malformed or absent status/amount fields pass through untouched;
// judging their meaning is the classifier's job.
func Resolve(members []patreon.Member, campaignID string) Resolution {
	if len(members) == 0 {
		return Resolution{Absence: AbsenceNoMembership}
	}

	var match *patreon.Member
	duplicates := 0
	for i := range members {
		if members[i].CampaignID == "" || members[i].CampaignID != campaignID {
			continue
		}
		if match == nil {
			match = &members[i]
			continue
		}
		duplicates++
	}

	if match == nil {
		return Resolution{Absence: AbsenceWrongCampaign}
	}

	return Resolution{Record: match, Duplicates: duplicates}
}
