package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/entity"
)

var today = time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)

type vendorList []*entity.Vendor

func (l vendorList) List(context.Context, string) ([]*entity.Vendor, error) { return l, nil }

type contractList struct {
	cs  []*entity.Contract
	err error
}

func (l contractList) List(context.Context, string) ([]*entity.Contract, error) { return l.cs, l.err }

func sp(s string) *string { return &s }

func fixture() (vendorList, contractList) {
	vendors := vendorList{
		{ID: "v1", Name: "Acme", InsuranceExpiry: sp("2024-01-01"), InsurancePolicies: []entity.InsurancePolicy{
			{Type: constants.PolicyWorkersCompensation, ExpiryDate: sp("2024-01-01")},
			{Type: constants.PolicyGeneralLiability, ExpiryDate: sp("2030-01-01")},
		}},
		{ID: "v2", Name: "Beta", InsuranceExpiry: sp("2025-06-11")},
		{ID: "v3", Name: "Gamma", InsuranceExpiry: sp("2027-01-01")},
		{ID: "v4", Name: "Delta"},
	}
	contracts := contractList{cs: []*entity.Contract{
		{ID: "c1", Title: "Lease", EndDate: sp("2025-07-16"), VendorID: "v3"},
		{ID: "c2", Title: "MSA", EndDate: sp("2028-01-01")},
	}}
	return vendors, contracts
}

func newService(v VendorLister, c ContractLister) *Service {
	return NewService(v, c, compliance.NewEngine(func() time.Time { return today }), nil)
}

func TestSummary(t *testing.T) {
	v, c := fixture()
	sum, err := newService(v, c).Summary(context.Background(), "org1")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", sum.AsOf)
	assert.Equal(t, Counts{Total: 4, Compliant: 1, AtRisk: 1, NonCompliant: 2}, sum.Vendors)
	assert.Equal(t, Counts{Total: 2, Compliant: 1, NonCompliant: 1}, sum.Policies)
	assert.Equal(t, Counts{Total: 2, Compliant: 1, AtRisk: 1}, sum.Contracts)
	assert.InDelta(t, 25.0, sum.Vendors.ComplianceRate(), 0.001)
	assert.Zero(t, Counts{}.ComplianceRate())
}

func TestAlerts_SortedByUrgency(t *testing.T) {
	v, c := fixture()
	alerts, err := newService(v, c).Alerts(context.Background(), "org1")
	require.NoError(t, err)

	type row struct {
		kind AlertKind
		name string
		days *int
	}
	got := make([]row, 0, len(alerts))
	for _, a := range alerts {
		got = append(got, row{a.Kind, a.Name, a.DaysUntil})
	}
	require.Len(t, got, 5)
	// non-compliant: missing date first, then most overdue
	assert.Equal(t, AlertVendor, got[0].kind)
	assert.Equal(t, "Delta", got[0].name)
	assert.Nil(t, got[0].days)
	assert.Equal(t, "Acme", got[1].name)
	assert.Equal(t, -517, *got[1].days)
	assert.Equal(t, "Acme", got[2].name)
	// at-risk: fewest days left first
	assert.Equal(t, "Beta", got[3].name)
	assert.Equal(t, 10, *got[3].days)
	assert.Equal(t, AlertContract, got[4].kind)
	assert.Equal(t, 45, *got[4].days)
}

func TestLoad_PropagatesErrors(t *testing.T) {
	v, _ := fixture()
	boom := errors.New("store down")
	_, err := newService(v, contractList{err: boom}).Summary(context.Background(), "org1")
	assert.ErrorIs(t, err, boom)
}
