// Package report derives dashboard summaries and the alert feed. It never
// stores anything; all statuses come from the compliance engine at read time.
package report

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/entity"
)

type VendorLister interface {
	List(ctx context.Context, orgID string) ([]*entity.Vendor, error)
}

type ContractLister interface {
	List(ctx context.Context, orgID string) ([]*entity.Contract, error)
}

type Service struct {
	vendors   VendorLister
	contracts ContractLister
	engine    *compliance.Engine
	logger    *slog.Logger
}

func NewService(vendors VendorLister, contracts ContractLister, engine *compliance.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = compliance.NewEngine(nil)
	}
	return &Service{vendors: vendors, contracts: contracts, engine: engine, logger: logger}
}

// Counts tallies records per compliance status.
type Counts struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	AtRisk       int `json:"atRisk"`
	NonCompliant int `json:"nonCompliant"`
}

func (c *Counts) add(s constants.ComplianceStatus) {
	c.Total++
	switch s {
	case constants.StatusCompliant:
		c.Compliant++
	case constants.StatusAtRisk:
		c.AtRisk++
	default:
		c.NonCompliant++
	}
}

// ComplianceRate is the compliant share in percent, 0 when there is nothing.
func (c Counts) ComplianceRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Compliant) * 100 / float64(c.Total)
}

type Summary struct {
	AsOf      string `json:"asOf"`
	Vendors   Counts `json:"vendors"`
	Policies  Counts `json:"policies"`
	Contracts Counts `json:"contracts"`
}

// AlertKind names what an alert is about.
type AlertKind string

const (
	AlertVendor   AlertKind = "vendor"
	AlertPolicy   AlertKind = "policy"
	AlertContract AlertKind = "contract"
)

// Alert is one record that is at-risk or non-compliant. DaysUntil is nil
// when the date is missing or unreadable.
type Alert struct {
	Kind       AlertKind                  `json:"kind"`
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	VendorID   string                     `json:"vendorId,omitempty"`
	PolicyType string                     `json:"policyType,omitempty"`
	Date       *string                    `json:"date"`
	DaysUntil  *int                       `json:"daysUntil"`
	Status     constants.ComplianceStatus `json:"status"`
}

// Snapshot is both lists loaded against one "today".
type Snapshot struct {
	Today     time.Time
	Vendors   []*entity.Vendor
	Contracts []*entity.Contract
}

// Load fetches vendors and contracts concurrently.
func (s *Service) Load(ctx context.Context, orgID string) (*Snapshot, error) {
	snap := &Snapshot{Today: s.engine.Today()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vs, err := s.vendors.List(gctx, orgID)
		snap.Vendors = vs
		return err
	})
	g.Go(func() error {
		cs, err := s.contracts.List(gctx, orgID)
		snap.Contracts = cs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, v := range snap.Vendors {
		compliance.RefreshVendorAt(v, snap.Today)
	}
	for _, c := range snap.Contracts {
		compliance.RefreshContractAt(c, snap.Today)
	}
	return snap, nil
}

func (s *Service) Summary(ctx context.Context, orgID string) (*Summary, error) {
	snap, err := s.Load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return Summarize(snap), nil
}

func (s *Service) Alerts(ctx context.Context, orgID string) ([]Alert, error) {
	snap, err := s.Load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	alerts := BuildAlerts(snap)
	s.logger.Debug("alerts built", "org_id", orgID, "count", len(alerts))
	return alerts, nil
}

// Summarize counts the statuses already set on snap.
func Summarize(snap *Snapshot) *Summary {
	out := &Summary{AsOf: snap.Today.Format(time.DateOnly)}
	for _, v := range snap.Vendors {
		out.Vendors.add(v.Status)
		for _, p := range v.InsurancePolicies {
			out.Policies.add(p.Status)
		}
	}
	for _, c := range snap.Contracts {
		out.Contracts.add(c.Status)
	}
	return out
}

// BuildAlerts lists every non-compliant and at-risk vendor, policy and
// contract, most urgent first: non-compliant before at-risk, then missing
// dates, then fewest days left.
func BuildAlerts(snap *Snapshot) []Alert {
	out := make([]Alert, 0)
	add := func(a Alert) {
		if a.Status == constants.StatusCompliant {
			return
		}
		if a.Date != nil {
			if d, ok := compliance.DaysUntil(*a.Date, snap.Today); ok {
				a.DaysUntil = &d
			}
		}
		out = append(out, a)
	}
	for _, v := range snap.Vendors {
		add(Alert{Kind: AlertVendor, ID: v.ID, Name: v.Name, VendorID: v.ID, Date: v.InsuranceExpiry, Status: v.Status})
		for _, p := range v.InsurancePolicies {
			add(Alert{Kind: AlertPolicy, ID: v.ID, Name: v.Name, VendorID: v.ID, PolicyType: p.Type, Date: p.ExpiryDate, Status: p.Status})
		}
	}
	for _, c := range snap.Contracts {
		add(Alert{Kind: AlertContract, ID: c.ID, Name: c.Title, VendorID: c.VendorID, Date: c.EndDate, Status: c.Status})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := rank(a.Status), rank(b.Status); ra != rb {
			return ra < rb
		}
		switch {
		case a.DaysUntil == nil && b.DaysUntil != nil:
			return true
		case a.DaysUntil != nil && b.DaysUntil == nil:
			return false
		case a.DaysUntil != nil && *a.DaysUntil != *b.DaysUntil:
			return *a.DaysUntil < *b.DaysUntil
		}
		return a.Name < b.Name
	})
	return out
}

func rank(s constants.ComplianceStatus) int {
	if s == constants.StatusAtRisk {
		return 1
	}
	return 0
}
