package contract

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/entity"
	"github.com/covera-app/covera/internal/llm"
	"github.com/covera-app/covera/internal/normalize"
	"github.com/covera-app/covera/internal/repository"
	"github.com/covera-app/covera/internal/services/documents"
)

// Service handles contract business logic.
type Service struct {
	repo      repository.ContractRepository
	engine    *compliance.Engine
	extractor documents.Extractor
	logger    *slog.Logger
}

func NewService(repo repository.ContractRepository, engine *compliance.Engine, extractor documents.Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = compliance.NewEngine(nil)
	}
	return &Service{repo: repo, engine: engine, extractor: extractor, logger: logger}
}

// Request carries the user-editable contract fields. Value accepts a number
// or a currency string and is stored in display form.
type Request struct {
	Title        string               `json:"title"`
	VendorID     string               `json:"vendorId"`
	ContractType string               `json:"contractType"`
	StartDate    *string              `json:"startDate"`
	EndDate      *string              `json:"endDate"`
	Value        *llm.Amount          `json:"value"`
	AutoRenewal  *bool                `json:"autoRenewal"`
	Description  *string              `json:"description"`
	Parties      []entity.Party       `json:"parties"`
	Milestones   []entity.Milestone   `json:"milestones"`
	Deliverables []entity.Deliverable `json:"deliverables"`
	SLAs         []entity.SLA         `json:"slas"`
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return common.InvalidInput("contract title is required")
	}
	if r.Value != nil && strings.TrimSpace(string(*r.Value)) != "" && normalize.ParseAmount(r.Value) == nil {
		return common.InvalidInput("invalid contract value %q", string(*r.Value))
	}
	start, end := normalize.ParseISODate(r.StartDate), normalize.ParseISODate(r.EndDate)
	if start != nil && end != nil && *end < *start {
		return common.InvalidInput("end date %s is before start date %s", *end, *start)
	}
	for _, m := range r.Milestones {
		switch m.Status {
		case "", constants.MilestonePending, constants.MilestoneInProgress, constants.MilestoneCompleted, constants.MilestoneOverdue:
		default:
			return common.InvalidInput("invalid milestone status %q", m.Status)
		}
	}
	for _, d := range r.Deliverables {
		switch d.Status {
		case "", constants.DeliverablePending, constants.DeliverableSubmitted, constants.DeliverableApproved, constants.DeliverableRejected:
		default:
			return common.InvalidInput("invalid deliverable status %q", d.Status)
		}
	}
	for _, s := range r.SLAs {
		switch s.Status {
		case "", constants.SLAMet, constants.SLAAtRisk, constants.SLABreached:
		default:
			return common.InvalidInput("invalid sla status %q", s.Status)
		}
	}
	return nil
}

func (r Request) apply(c *entity.Contract) {
	c.Title = strings.TrimSpace(r.Title)
	c.VendorID = strings.TrimSpace(r.VendorID)
	c.ContractType = ""
	if t := strings.TrimSpace(r.ContractType); t != "" {
		c.ContractType, _ = constants.CanonicalizeContractType(t)
	}
	c.StartDate = trimmed(r.StartDate)
	c.EndDate = trimmed(r.EndDate)
	c.Value = ""
	if v := normalize.ParseAmount(r.Value); v != nil {
		c.Value = normalize.FormatCurrency(*v)
	}
	c.AutoRenewal = r.AutoRenewal
	c.Description = trimmed(r.Description)
	c.Parties = nonNil(r.Parties)

	c.Milestones = nonNil(r.Milestones)
	for i := range c.Milestones {
		if c.Milestones[i].Status == "" {
			c.Milestones[i].Status = constants.MilestonePending
		}
	}
	c.Deliverables = nonNil(r.Deliverables)
	for i := range c.Deliverables {
		if c.Deliverables[i].Status == "" {
			c.Deliverables[i].Status = constants.DeliverablePending
		}
	}
	c.SLAs = nonNil(r.SLAs)
	for i := range c.SLAs {
		if c.SLAs[i].Status == "" {
			c.SLAs[i].Status = constants.SLAMet
		}
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonNil[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func (s *Service) Create(ctx context.Context, orgID string, req Request) (*entity.Contract, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	now := s.engine.Today().UTC()
	c := &entity.Contract{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Documents: []entity.Document{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.apply(c)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("contract created", "org_id", orgID, "contract_id", c.ID, "status", c.Status)
	return c, nil
}

func (s *Service) Get(ctx context.Context, orgID, id string) (*entity.Contract, error) {
	c, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, s.mapErr(err, id)
	}
	s.engine.RefreshContract(c)
	return c, nil
}

// List returns the org's contracts, soonest end date first; contracts with
// no end date sort last.
func (s *Service) List(ctx context.Context, orgID string) ([]*entity.Contract, error) {
	cs, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, s.mapErr(err, "")
	}
	today := s.engine.Today()
	for _, c := range cs {
		compliance.RefreshContractAt(c, today)
	}
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i].EndDate, cs[j].EndDate
		switch {
		case a == nil && b == nil:
			return cs[i].Title < cs[j].Title
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return cs[i].Title < cs[j].Title
		}
	})
	return cs, nil
}

// ListByVendor returns the org's contracts referencing vendorID.
func (s *Service) ListByVendor(ctx context.Context, orgID, vendorID string) ([]*entity.Contract, error) {
	all, err := s.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Contract, 0)
	for _, c := range all {
		if c.VendorID == vendorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, orgID, id string, req Request) (*entity.Contract, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	req.apply(c)
	c.UpdatedAt = s.engine.Today().UTC()
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("contract updated", "org_id", orgID, "contract_id", id, "status", c.Status)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	if _, err := s.Get(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return s.mapErr(err, id)
	}
	s.logger.Info("contract deleted", "org_id", orgID, "contract_id", id)
	return nil
}

type AttachResult struct {
	Contract   *entity.Contract   `json:"contract"`
	Document   entity.Document    `json:"document"`
	Extraction *documents.Outcome `json:"extraction,omitempty"`
}

// AttachDocument records the document on the contract and merges whatever
// contract fields extraction finds. Extraction failure never fails the attach.
func (s *Service) AttachDocument(ctx context.Context, orgID, id string, up documents.Upload) (*AttachResult, error) {
	c, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	today := s.engine.Today()
	doc, mimeType, err := documents.NewDocument(up, today)
	if err != nil {
		return nil, err
	}
	c.Documents = append(c.Documents, doc)

	outcome := documents.Extract(ctx, s.extractor, up, mimeType, constants.KindContract, today, s.logger)
	if outcome.Applied() {
		normalize.MergeContract(c, outcome.Patch.Contract, today)
	}
	c.UpdatedAt = today.UTC()
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("contract document attached", "org_id", orgID, "contract_id", id, "document_id", doc.ID, "status", c.Status)
	return &AttachResult{Contract: c, Document: doc, Extraction: outcome}, nil
}

// SeedDemo creates demo contracts spread over vendorIDs, dates relative to today.
func (s *Service) SeedDemo(ctx context.Context, orgID string, vendorIDs []string) ([]*entity.Contract, error) {
	today := s.engine.Today()
	date := func(days int) *string {
		d := today.AddDate(0, 0, days).Format(time.DateOnly)
		return &d
	}
	vendor := func(i int) string {
		if len(vendorIDs) == 0 {
			return ""
		}
		return vendorIDs[i%len(vendorIDs)]
	}
	yes := true
	seeds := []Request{
		{
			Title: "Electrical maintenance", VendorID: vendor(0), ContractType: "MSA",
			StartDate: date(-200), EndDate: date(400), Value: llm.AmountFromFloat(120000), AutoRenewal: &yes,
			Milestones: []entity.Milestone{{Name: "Annual inspection", DueDate: date(90)}},
			SLAs:       []entity.SLA{{Metric: "Response time", Target: "4h"}},
		},
		{
			Title: "Office cleaning", VendorID: vendor(1), ContractType: "Service Agreement",
			StartDate: date(-330), EndDate: date(35), Value: llm.AmountFromFloat(48500.5),
			Deliverables: []entity.Deliverable{{Name: "Monthly report", DueDate: date(5)}},
		},
		{
			Title: "Roof repair", VendorID: vendor(2), ContractType: "Statement of Work",
			StartDate: date(-120), EndDate: date(-3), Value: llm.AmountFromFloat(18250),
		},
	}
	out := make([]*entity.Contract, 0, len(seeds))
	for _, req := range seeds {
		c, err := s.Create(ctx, orgID, req)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, c *entity.Contract) error {
	s.engine.RefreshContract(c)
	if err := s.repo.Save(ctx, c); err != nil {
		return s.mapErr(err, c.ID)
	}
	return nil
}

func (s *Service) mapErr(err error, id string) error {
	var ae *common.AppError
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return common.NotFound("contract", id)
	default:
		s.logger.Error("contract store operation failed", "contract_id", id, "error", err)
		return common.NewAppError(common.CodeInternal, "contract store operation failed", err)
	}
}
