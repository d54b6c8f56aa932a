package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/entity"
	"github.com/covera-app/covera/internal/llm"
)

var today = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local)

func sp(s string) *string { return &s }

func amt(s string) *llm.Amount {
	a := llm.Amount(s)
	return &a
}

func insurance(policies ...llm.PolicyFields) llm.ExtractedFields {
	return llm.ExtractedFields{
		Kind:      constants.KindInsurance,
		Insurance: &llm.InsuranceFields{Policies: policies},
	}
}

func TestNormalize_PolicyRoundTrip(t *testing.T) {
	p := NormalizeAt(insurance(llm.PolicyFields{
		Type:          sp("COMMERCIAL GENERAL LIABILITY"),
		CoverageLimit: amt("1000000"),
	}), constants.KindInsurance, today)

	require.NotNil(t, p.Vendor)
	require.Len(t, p.Vendor.Policies, 1)
	got := p.Vendor.Policies[0]
	assert.Equal(t, constants.PolicyGeneralLiability, got.Type)
	require.NotNil(t, got.CoverageLimit)
	assert.Equal(t, int64(1000000), *got.CoverageLimit)
}

func TestNormalize_PolicyTypes(t *testing.T) {
	tests := map[string]string{
		"WORKERS COMPENSATION":  constants.PolicyWorkersCompensation,
		"AUTOMOBILE LIABILITY":  constants.PolicyAutoLiability,
		"UMBRELLA LIAB":         constants.PolicyUmbrellaLiability,
		"EXCESS LIAB":           constants.PolicyExcessLiability,
		"  general   liability": constants.PolicyGeneralLiability,
		"Inland Marine":         "Inland Marine",
	}
	for in, want := range tests {
		p := NormalizeAt(insurance(llm.PolicyFields{Type: sp(in)}), constants.KindInsurance, today)
		assert.Equal(t, want, p.Vendor.Policies[0].Type, in)
	}
}

func TestNormalize_EarliestExpiryWins(t *testing.T) {
	p := NormalizeAt(insurance(
		llm.PolicyFields{Type: sp("GL"), ExpiryDate: sp("2027-03-01")},
		llm.PolicyFields{Type: sp("Auto"), ExpiryDate: nil},
		llm.PolicyFields{Type: sp("WC"), ExpiryDate: sp("2026-11-15")},
		llm.PolicyFields{Type: sp("Umbrella"), ExpiryDate: sp("2028-01-01")},
	), constants.KindInsurance, today)

	require.NotNil(t, p.Vendor.InsuranceExpiry)
	assert.Equal(t, "2026-11-15", *p.Vendor.InsuranceExpiry)
	assert.Equal(t, constants.StatusCompliant, p.Vendor.Status)
	assert.Equal(t, constants.StatusNonCompliant, p.Vendor.Policies[1].Status)
}

func TestNormalize_AllPolicyDatesNull(t *testing.T) {
	raw := insurance(
		llm.PolicyFields{Type: sp("GL")},
		llm.PolicyFields{Type: sp("WC"), ExpiryDate: sp("12/31/2030")},
	)
	raw.Insurance.ExpirationDate = sp("2030-12-31")

	p := NormalizeAt(raw, constants.KindInsurance, today)
	assert.Nil(t, p.Vendor.InsuranceExpiry)
	assert.Equal(t, constants.StatusNonCompliant, p.Vendor.Status)
}

func TestNormalize_ExpiredSubPolicyDrivesVendor(t *testing.T) {
	p := NormalizeAt(insurance(
		llm.PolicyFields{Type: sp("WORKERS COMPENSATION"), ExpiryDate: sp("2024-01-01")},
		llm.PolicyFields{Type: sp("COMMERCIAL GENERAL LIABILITY"), ExpiryDate: sp("2030-01-01")},
	), constants.KindInsurance, today)

	require.NotNil(t, p.Vendor.InsuranceExpiry)
	assert.Equal(t, "2024-01-01", *p.Vendor.InsuranceExpiry)
	assert.Equal(t, constants.StatusNonCompliant, p.Vendor.Status)
	assert.Equal(t, constants.StatusNonCompliant, p.Vendor.Policies[0].Status)
	assert.Equal(t, constants.StatusCompliant, p.Vendor.Policies[1].Status)

	v := &entity.Vendor{Name: "Acme", InsuranceExpiry: sp("2031-01-01")}
	MergeVendor(v, p.Vendor, today)
	assert.Equal(t, "2024-01-01", *v.InsuranceExpiry)
	assert.Equal(t, constants.StatusNonCompliant, v.Status)
	assert.Len(t, v.InsurancePolicies, 2)
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := insurance(
		llm.PolicyFields{Type: sp("cgl"), CoverageLimit: amt("$2,000,000.00"), ExpiryDate: sp("2025-06-20"), Carrier: sp(" Hartford ")},
		llm.PolicyFields{Type: sp("cyber"), CoverageLimit: amt("not stated")},
	)
	raw.Insurance.InsuredName = sp("Acme Plumbing LLC")

	first, err := json.Marshal(NormalizeAt(raw, constants.KindInsurance, today))
	require.NoError(t, err)
	second, err := json.Marshal(NormalizeAt(raw, constants.KindInsurance, today))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	n := New(compliance.NewEngine(func() time.Time { return today }))
	third, err := json.Marshal(n.Normalize(raw, constants.KindInsurance))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))
}

func TestNormalize_MissingSectionIsAllNull(t *testing.T) {
	p := NormalizeAt(llm.ExtractedFields{Kind: constants.KindInsurance}, constants.KindInsurance, today)
	require.NotNil(t, p.Vendor)
	assert.Empty(t, p.Vendor.Policies)
	assert.NotNil(t, p.Vendor.Policies)
	assert.Nil(t, p.Vendor.InsuranceExpiry)
	assert.Equal(t, constants.StatusNonCompliant, p.Vendor.Status)

	c := NormalizeAt(llm.ExtractedFields{Kind: constants.KindContract}, constants.KindContract, today)
	require.NotNil(t, c.Contract)
	assert.Nil(t, c.Contract.ContractType)
	assert.Nil(t, c.Contract.Value)
	assert.Equal(t, constants.StatusNonCompliant, c.Contract.Status)
}

func TestNormalize_Contract(t *testing.T) {
	raw := llm.ExtractedFields{
		Kind: constants.KindContract,
		Contract: &llm.ContractFields{
			ContractType: sp("Janitorial Services Contract"),
			StartDate:    sp("2025-01-01"),
			EndDate:      sp("2025-07-15"),
			Value:        amt("$48,500.00"),
			Parties: []llm.PartyFields{
				{Name: sp("Acme LLC"), Role: sp("Vendor")},
				{Name: nil, Role: sp("Witness")},
			},
		},
	}
	p := NormalizeAt(raw, constants.KindContract, today)
	c := p.Contract
	require.NotNil(t, c)
	assert.Equal(t, constants.ContractOther, *c.ContractType)
	require.NotNil(t, c.Value)
	assert.InDelta(t, 48500.0, *c.Value, 0.001)
	assert.Len(t, c.Parties, 1)
	// 44 days out: inside the 60-day contract window
	assert.Equal(t, constants.StatusAtRisk, c.Status)

	raw.Contract.ContractType = sp("MSA")
	assert.Equal(t, constants.ContractMasterServices, *NormalizeAt(raw, constants.KindContract, today).Contract.ContractType)
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1000000", fp(1000000)},
		{"$1,000,000.00", fp(1000000)},
		{"USD 2,500.75", fp(2500.75)},
		{"-$300", fp(-300)},
		{"", nil},
		{"n/a", nil},
		{"1.000.000", nil},
	}
	for _, tt := range tests {
		got := ParseCurrency(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.InDelta(t, *tt.want, *got, 0.0001, tt.in)
	}
}

func fp(f float64) *float64 { return &f }

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want *int64
	}{
		{"$1,000,000", ip(1000000)},
		{"2500.6", ip(2501)},
		{"-$300", ip(-300)},
		{"$99,999,999,999,999,999,999", nil},
		{"-99999999999999999999", nil},
		{"none", nil},
	}
	for _, tt := range tests {
		got := ParseLimit(amt(tt.in))
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.Equal(t, *tt.want, *got, tt.in)
	}
}

func TestNormalize_OversizedLimitIsDropped(t *testing.T) {
	p := NormalizeAt(insurance(llm.PolicyFields{
		Type:          sp("UMBRELLA LIAB"),
		CoverageLimit: amt("$99,999,999,999,999,999,999"),
	}), constants.KindInsurance, today)
	require.Len(t, p.Vendor.Policies, 1)
	assert.Nil(t, p.Vendor.Policies[0].CoverageLimit)
}

func ip(n int64) *int64 { return &n }

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0", FormatCurrency(0))
	assert.Equal(t, "$999", FormatCurrency(999))
	assert.Equal(t, "$1,000", FormatCurrency(1000))
	assert.Equal(t, "$1,234.50", FormatCurrency(1234.5))
	assert.Equal(t, "$1,000,000.05", FormatCurrency(1000000.05))
	assert.Equal(t, "-$12,345", FormatCurrency(-12345))
}

func TestParseISODate(t *testing.T) {
	assert.Equal(t, "2025-02-28", *ParseISODate(sp(" 2025-02-28 ")))
	for _, bad := range []string{"02/28/2025", "2025-2-28", "2025-02-30", "2025-02-28T00:00:00Z", "Feb 28 2025", ""} {
		assert.Nil(t, ParseISODate(sp(bad)), bad)
	}
	assert.Nil(t, ParseISODate(nil))
}

func TestMergeContract_KeepsExistingOnNull(t *testing.T) {
	c := &entity.Contract{
		Title:        "Cleaning",
		ContractType: constants.ContractServiceAgreement,
		EndDate:      sp("2030-01-01"),
		Value:        "$10,000",
	}
	MergeContract(c, &ContractPatch{Value: fp(12000.5), EndDate: nil}, today)

	assert.Equal(t, constants.ContractServiceAgreement, c.ContractType)
	assert.Equal(t, "2030-01-01", *c.EndDate)
	assert.Equal(t, "$12,000.50", c.Value)
	assert.Equal(t, constants.StatusCompliant, c.Status)
}

func TestMergeVendor_NoPoliciesLeavesExpiry(t *testing.T) {
	v := &entity.Vendor{InsuranceExpiry: sp("2025-06-10")}
	MergeVendor(v, &VendorPatch{Policies: []entity.InsurancePolicy{}, InsuredName: sp("Beta Co")}, today)

	assert.Equal(t, "2025-06-10", *v.InsuranceExpiry)
	assert.Equal(t, "Beta Co", v.Name)
	assert.Equal(t, constants.StatusAtRisk, v.Status)
}

func TestNew_NilEngineUsesSystemClock(t *testing.T) {
	n := New(nil)
	assert.WithinDuration(t, time.Now(), n.Today(), time.Minute)

	fixed := New(compliance.NewEngine(func() time.Time { return today }))
	assert.Equal(t, today, fixed.Today())
}
