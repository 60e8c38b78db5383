package qbosync

import (
	"strings"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

// CanonicalUSA is the single token every United States spelling
// normalizes to before construction or comparison.
const CanonicalUSA = "USA"

// NormalizeCountry collapses the common United States spellings into
// CanonicalUSA. Other countries pass through trimmed. Idempotent.
func NormalizeCountry(country string) string {
	trimmed := strings.TrimSpace(country)
	switch strings.ToUpper(trimmed) {
	case "US", "USA", "U.S.", "U.S.A.", "UNITED STATES", "UNITED STATES OF AMERICA":
		return CanonicalUSA
	}
	return trimmed
}

// MatchAddress structurally compares a local address against a remote
// billing address, case-insensitive and trimmed. The local address is
// complete by the time this runs; Line2 and Country are the optional
// fields and act as wildcards when absent locally.
func MatchAddress(local models.AddressRecord, remote *qbo.Address) bool {
	if remote == nil {
		return false
	}
	if !fieldEqual(local.Line1, remote.Line1) {
		return false
	}
	if strings.TrimSpace(local.Line2) != "" && !fieldEqual(local.Line2, remote.Line2) {
		return false
	}
	if !fieldEqual(local.City, remote.City) {
		return false
	}
	if !fieldEqual(local.State, remote.CountrySubDivisionCode) {
		return false
	}
	if !fieldEqual(local.PostalCode, remote.PostalCode) {
		return false
	}
	if strings.TrimSpace(local.Country) != "" &&
		!fieldEqual(NormalizeCountry(local.Country), NormalizeCountry(remote.Country)) {
		return false
	}
	return true
}

func fieldEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
