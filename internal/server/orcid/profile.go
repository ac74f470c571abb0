package orcid

import "strings"

// Record is the subset of an ORCID v3.0 record the application reads.
type Record struct {
	Person struct {
		Name *struct {
			GivenNames *valueField `json:"given-names"`
			FamilyName *valueField `json:"family-name"`
		} `json:"name"`
		Emails struct {
			Email []struct {
				Email   string `json:"email"`
				Primary bool   `json:"primary"`
			} `json:"email"`
		} `json:"emails"`
	} `json:"person"`
	ActivitiesSummary struct {
		Employments struct {
			AffiliationGroup []struct {
				Summaries []struct {
					EmploymentSummary struct {
						Organization struct {
							Name string `json:"name"`
						} `json:"organization"`
					} `json:"employment-summary"`
				} `json:"summaries"`
			} `json:"affiliation-group"`
		} `json:"employments"`
	} `json:"activities-summary"`
}

type valueField struct {
	Value string `json:"value"`
}

type Profile struct {
	Name        string
	Email       *string
	Institution *string
}

const unknownUser = "Unknown User"

// ExtractProfile derives the display name, preferred email and current
// institution from a record.
func ExtractProfile(rec *Record) Profile {
	var p Profile

	var given, family string
	if n := rec.Person.Name; n != nil {
		if n.GivenNames != nil {
			given = n.GivenNames.Value
		}
		if n.FamilyName != nil {
			family = n.FamilyName.Value
		}
	}
	p.Name = strings.TrimSpace(given + " " + family)
	if p.Name == "" {
		p.Name = unknownUser
	}

	emails := rec.Person.Emails.Email
	for i := range emails {
		if emails[i].Primary {
			p.Email = &emails[i].Email
			break
		}
	}
	if p.Email == nil && len(emails) > 0 {
		p.Email = &emails[0].Email
	}

	groups := rec.ActivitiesSummary.Employments.AffiliationGroup
	if len(groups) > 0 && len(groups[0].Summaries) > 0 {
		if name := groups[0].Summaries[0].EmploymentSummary.Organization.Name; name != "" {
			p.Institution = &name
		}
	}

	return p
}
