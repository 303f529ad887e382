package rdm

import (
	"encoding/json"
	"strings"
)

// RecordData is the body of POST /records and PUT /records/{id}
type RecordData struct {
	Metadata RecordMetadata `json:"metadata"`
}

// RecordMetadata holds the fields rdmctl can set from flags
type RecordMetadata struct {
	Title           string        `json:"title" validate:"required"`
	Description     string        `json:"description,omitempty"`
	Creators        []Creator     `json:"creators,omitempty" validate:"dive"`
	ResourceType    *ResourceType `json:"resource_type,omitempty"`
	PublicationDate string        `json:"publication_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Creator wraps a person or organisation
type Creator struct {
	PersonOrOrg PersonOrOrg `json:"person_or_org"`
}

// PersonOrOrg identifies a creator
type PersonOrOrg struct {
	Type       string `json:"type" validate:"oneof=personal organizational"`
	Name       string `json:"name" validate:"required"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

// ResourceType references a resource type vocabulary entry
type ResourceType struct {
	ID string `json:"id" validate:"required"`
}

// ParseCreator accepts "Family, Given" for a person or a bare name for an
// organisation.
func ParseCreator(s string) Creator {
	s = strings.TrimSpace(s)
	family, given, found := strings.Cut(s, ",")
	if !found {
		return Creator{PersonOrOrg: PersonOrOrg{Type: "organizational", Name: s}}
	}

	family = strings.TrimSpace(family)
	given = strings.TrimSpace(given)
	return Creator{PersonOrOrg: PersonOrOrg{
		Type:       "personal",
		Name:       family + ", " + given,
		GivenName:  given,
		FamilyName: family,
	}}
}

// Validate checks the document with the resolver's validator
func (d RecordData) Validate(r *Resolver) error {
	if err := r.validate.Struct(d); err != nil {
		return validationFailure(err)
	}
	return nil
}

// JSON encodes the document
func (d RecordData) JSON() (json.RawMessage, error) {
	return json.Marshal(d)
}
