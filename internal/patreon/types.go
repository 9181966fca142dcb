package patreon

// Patron status values returned by the Patreon API. Any other value (or a
// missing status) is treated as unknown by the entitlement classifier.
const (
	StatusActivePatron   = "active_patron"
	StatusDeclinedPatron = "declined_patron"
	StatusFormerPatron   = "former_patron"
)

// IdentityResponse is the JSON:API document returned by the identity endpoint
// when membership includes are requested. The interesting payload lives in
// Included: one "member" resource per campaign the user has a relationship
// with. The shape has changed across API revisions, so every field the
// verifier depends on is optional here and normalized via Members.
type IdentityResponse struct {
	Data     Resource   `json:"data"`
	Included []Resource `json:"included"`
}

// MemberListResponse is the document returned by the campaign members endpoint.
type MemberListResponse struct {
	Data []Resource `json:"data"`
}

// Resource is a JSON:API resource object, decoded only as deeply as the
// verifier needs.
type Resource struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Attributes    MemberAttributes `json:"attributes"`
	Relationships Relationships    `json:"relationships"`
}

// MemberAttributes carries the member fields requested via fields[member].
// Both are pointers: older campaigns and gifted memberships omit them.
type MemberAttributes struct {
	PatronStatus                 *string `json:"patron_status"`
	CurrentlyEntitledAmountCents *int64  `json:"currently_entitled_amount_cents"`
}

// Relationships holds the linked resources of a member record.
type Relationships struct {
	Campaign *Relationship `json:"campaign"`
}

// Relationship is a JSON:API relationship object.
type Relationship struct {
	Data *ResourceIdentifier `json:"data"`
}

// ResourceIdentifier references a linked resource by type and id.
type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Member is the normalized projection of an upstream member resource.
// CampaignID is empty when the record carries no campaign link; such records
// cannot be matched to a configured campaign.
type Member struct {
	RecordID            string
	PatronStatus        *string
	EntitledAmountCents *int64
	CampaignID          string
}

// Members extracts normalized membership records from the included set, in
// response order. Non-member resources (campaigns, tiers) are skipped.
func (r *IdentityResponse) Members() []Member {
	var members []Member
	for _, res := range r.Included {
		if res.Type != "member" {
			continue
		}
		members = append(members, newMember(res, ""))
	}
	return members
}

// Members extracts normalized membership records from a campaign member
// listing. Rows from this endpoint belong to the requested campaign even when
// the relationship is not expanded, so impliedCampaignID fills the gap.
func (r *MemberListResponse) Members(impliedCampaignID string) []Member {
	var members []Member
	for _, res := range r.Data {
		if res.Type != "member" {
			continue
		}
		members = append(members, newMember(res, impliedCampaignID))
	}
	return members
}

func newMember(res Resource, impliedCampaignID string) Member {
	m := Member{
		RecordID:            res.ID,
		PatronStatus:        res.Attributes.PatronStatus,
		EntitledAmountCents: res.Attributes.CurrentlyEntitledAmountCents,
		CampaignID:          impliedCampaignID,
	}
	if rel := res.Relationships.Campaign; rel != nil && rel.Data != nil && rel.Data.ID != "" {
		m.CampaignID = rel.Data.ID
	}
	return m
}
