// Package ontology builds the immutable Ontology Model from a parsed ERD.
//
// Entities become classes, non-key fields become datatype properties and
// relationship edges become object properties:
//
//	SOCIAL_MEDIA_PROFILE          -> class SocialMediaProfile
//	date date_of_birth            -> datatype property dateOfBirth (xsd:date)
//	PERSON ||--o{ ORGANISATION : member_of
//	                              -> object property memberOf, Person -> Organisation
//
// # Property Identity
//
// A property is identified by its transformed name and its range. When two
// classes declare the same source field with the same type, the builder
// merges them into one property whose domain lists both classes and records
// the merge in Model.Merges. Otherwise same-named properties stay distinct
// entries, each scoped to its own domain.
//
// # Universal Domain
//
// Fields configured as universal produce a property whose domain is the
// Universal sentinel (owl:Thing). Such a property applies to every class.
//
// A Model never changes after Build or Assemble returns. Accessors hand out
// copies, so a Model can be shared by any number of readers.
package ontology
