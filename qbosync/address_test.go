package qbosync_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
	"bitbucket.org/mmdatafocus/qbo_connector/qbosync"
)

func TestNormalizeCountryVariants(t *testing.T) {
	variants := []string{"USA", "US", "U.S.", "U.S.A.", "United States", "united states of america", " US "}
	for _, v := range variants {
		if got := qbosync.NormalizeCountry(v); got != qbosync.CanonicalUSA {
			t.Errorf("NormalizeCountry(%q) = %q, want %q", v, got, qbosync.CanonicalUSA)
		}
	}
}

func TestNormalizeCountryIdempotent(t *testing.T) {
	once := qbosync.NormalizeCountry("United States")
	twice := qbosync.NormalizeCountry(once)
	if once != twice {
		t.Fatalf("not idempotent: %q then %q", once, twice)
	}
}

func TestNormalizeCountryOtherCountriesPassThrough(t *testing.T) {
	if got := qbosync.NormalizeCountry(" Canada "); got != "Canada" {
		t.Errorf("NormalizeCountry(Canada) = %q", got)
	}
}

func localAddress() models.AddressRecord {
	return models.AddressRecord{
		Line1:      "1 Market St",
		City:       "San Francisco",
		State:      "CA",
		PostalCode: "94105",
		Country:    "United States",
	}
}

func remoteAddress() *qbo.Address {
	return &qbo.Address{
		Line1:                  "1 market st",
		City:                   " San Francisco ",
		CountrySubDivisionCode: "ca",
		PostalCode:             "94105",
		Country:                "USA",
	}
}

func TestMatchAddressTrimmedCaseInsensitive(t *testing.T) {
	if !qbosync.MatchAddress(localAddress(), remoteAddress()) {
		t.Fatal("expected addresses to match")
	}
}

func TestMatchAddressFieldMismatch(t *testing.T) {
	remote := remoteAddress()
	remote.PostalCode = "94110"
	if qbosync.MatchAddress(localAddress(), remote) {
		t.Fatal("expected postal code mismatch to fail")
	}
}

func TestMatchAddressLine2WildcardWhenAbsentLocally(t *testing.T) {
	remote := remoteAddress()
	remote.Line2 = "Suite 500"
	if !qbosync.MatchAddress(localAddress(), remote) {
		t.Fatal("empty local Line2 should not constrain the match")
	}

	local := localAddress()
	local.Line2 = "Suite 400"
	if qbosync.MatchAddress(local, remote) {
		t.Fatal("present local Line2 must match the remote value")
	}
}

func TestMatchAddressCountryNormalizedBeforeCompare(t *testing.T) {
	local := localAddress()
	local.Country = "U.S.A."
	remote := remoteAddress()
	remote.Country = "United States"
	if !qbosync.MatchAddress(local, remote) {
		t.Fatal("country spellings of the US must compare equal")
	}
}

func TestMatchAddressNilRemote(t *testing.T) {
	if qbosync.MatchAddress(localAddress(), nil) {
		t.Fatal("nil remote address can never match")
	}
}
