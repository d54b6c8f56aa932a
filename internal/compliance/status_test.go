package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/entity"
)

var fixedToday = time.Date(2025, time.June, 1, 15, 30, 0, 0, time.Local)

func ymd(t time.Time, days int) *string {
	s := t.AddDate(0, 0, days).Format(time.DateOnly)
	return &s
}

func strptr(s string) *string { return &s }

func TestClassify_InvalidInputIsNonCompliant(t *testing.T) {
	cases := []*string{nil, strptr(""), strptr("Invalid Date"), strptr("not-a-date"), strptr("2025-13-45"), strptr("06/01/2025")}
	for _, c := range cases {
		for _, threshold := range []int{0, 30, 60} {
			assert.Equal(t, constants.StatusNonCompliant, Classify(c, threshold, fixedToday))
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		want   constants.ComplianceStatus
	}{
		{"yesterday", -1, constants.StatusNonCompliant},
		{"today", 0, constants.StatusAtRisk},
		{"threshold day", 30, constants.StatusAtRisk},
		{"day after threshold", 31, constants.StatusCompliant},
		{"far future", 400, constants.StatusCompliant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(ymd(fixedToday, tt.offset), 30, fixedToday))
		})
	}
}

func TestClassify_ThresholdSensitivity(t *testing.T) {
	d := ymd(fixedToday, 45)
	assert.Equal(t, constants.StatusCompliant, Classify(d, constants.InsuranceThresholdDays, fixedToday))
	assert.Equal(t, constants.StatusAtRisk, Classify(d, constants.ContractThresholdDays, fixedToday))
}

func TestClassify_AcceptsTimestamps(t *testing.T) {
	ts := fixedToday.AddDate(0, 0, 10).Format(time.RFC3339)
	assert.Equal(t, constants.StatusAtRisk, Classify(&ts, 30, fixedToday))
}

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2025, time.June, 1, 23, 59, 0, 0, time.Local)
	early := time.Date(2025, time.June, 1, 0, 0, 1, 0, time.Local)
	for _, now := range []time.Time{late, early} {
		days, ok := DaysUntil("2025-06-02", now)
		assert.True(t, ok)
		assert.Equal(t, 1, days)
	}
}

func TestDaysUntil_AcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	now := time.Date(2025, time.March, 8, 12, 0, 0, 0, loc)
	days, ok := DaysUntil("2025-03-10", now)
	assert.True(t, ok)
	assert.Equal(t, 2, days)

	now = time.Date(2025, time.November, 1, 12, 0, 0, 0, loc)
	days, ok = DaysUntil("2025-11-03", now)
	assert.True(t, ok)
	assert.Equal(t, 2, days)
}

func TestEngine_RefreshVendor(t *testing.T) {
	e := NewEngine(func() time.Time { return fixedToday })
	v := &entity.Vendor{
		InsuranceExpiry: strptr("2024-01-01"),
		Status:          constants.StatusCompliant, // stale value must be ignored
		InsurancePolicies: []entity.InsurancePolicy{
			{Type: "Workers Compensation", ExpiryDate: strptr("2024-01-01")},
			{Type: "General Liability", ExpiryDate: strptr("2030-01-01")},
			{Type: "Umbrella Liability"},
		},
	}
	e.RefreshVendor(v)

	assert.Equal(t, constants.StatusNonCompliant, v.Status)
	assert.Equal(t, constants.StatusNonCompliant, v.InsurancePolicies[0].Status)
	assert.Equal(t, constants.StatusCompliant, v.InsurancePolicies[1].Status)
	assert.Equal(t, constants.StatusNonCompliant, v.InsurancePolicies[2].Status)
}

func TestEngine_RefreshContractUsesSixtyDays(t *testing.T) {
	e := NewEngine(func() time.Time { return fixedToday })
	c := &entity.Contract{
		EndDate:    ymd(fixedToday, 45),
		Milestones: []entity.Milestone{{Name: "kickoff", Status: constants.MilestoneCompleted}},
	}
	e.RefreshContract(c)

	assert.Equal(t, constants.StatusAtRisk, c.Status)
	assert.Equal(t, constants.MilestoneCompleted, c.Milestones[0].Status)
	assert.Equal(t, constants.StatusAtRisk, e.Contract(c.EndDate))
	assert.Equal(t, constants.StatusCompliant, e.Insurance(c.EndDate))
}

func TestEngine_NilRecordsAreNoops(t *testing.T) {
	e := NewEngine(nil)
	assert.NotPanics(t, func() {
		e.RefreshVendor(nil)
		e.RefreshContract(nil)
	})
}
