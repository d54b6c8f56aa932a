// Package normalize maps model-extracted fields onto vendor and contract
// records. It is a pure transform: persistence is the caller's job, and every
// status it returns comes from the compliance engine, never from the model.
package normalize

import (
	"time"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/entity"
	"github.com/covera-app/covera/internal/llm"
)

// VendorPatch is the insurance-certificate view of a vendor update.
type VendorPatch struct {
	InsuranceExpiry   *string                    `json:"insuranceExpiry"`
	Status            constants.ComplianceStatus `json:"status"`
	Policies          []entity.InsurancePolicy   `json:"insurancePolicies"`
	InsuredName       *string                    `json:"insuredName"`
	CertificateHolder *string                    `json:"certificateHolder"`
}

// ContractPatch is the contract-document view of a contract update.
// Value stays numeric here; FormatCurrency applies only when merging into
// the stored record.
type ContractPatch struct {
	ContractType *string                    `json:"contractType"`
	StartDate    *string                    `json:"startDate"`
	EndDate      *string                    `json:"endDate"`
	Value        *float64                   `json:"value"`
	AutoRenewal  *bool                      `json:"autoRenewal"`
	Parties      []entity.Party             `json:"parties"`
	Description  *string                    `json:"description"`
	Status       constants.ComplianceStatus `json:"status"`
}

// Patch carries exactly one of Vendor or Contract.
type Patch struct {
	Kind     constants.DocumentKind `json:"kind"`
	Vendor   *VendorPatch           `json:"vendor,omitempty"`
	Contract *ContractPatch         `json:"contract,omitempty"`
}

// Normalizer turns extracted fields into record patches, classifying
// dates against its engine's today.
type Normalizer struct {
	engine *compliance.Engine
}

// New returns a Normalizer; a nil engine falls back to the system clock.
func New(engine *compliance.Engine) *Normalizer {
	if engine == nil {
		engine = compliance.NewEngine(nil)
	}
	return &Normalizer{engine: engine}
}

// Today exposes the engine's day so callers can merge against the same one.
func (n *Normalizer) Today() time.Time {
	return n.engine.Today()
}

// Normalize maps raw onto a record patch for kind. A missing section is
// treated as all-null.
func (n *Normalizer) Normalize(raw llm.ExtractedFields, kind constants.DocumentKind) Patch {
	return NormalizeAt(raw, kind, n.engine.Today())
}

// NormalizeAt is Normalize against an explicit day.
func NormalizeAt(raw llm.ExtractedFields, kind constants.DocumentKind, today time.Time) Patch {
	if kind == constants.KindContract {
		c := raw.Contract
		if c == nil {
			c = llm.Empty(kind).Contract
		}
		return Patch{Kind: kind, Contract: normalizeContract(*c, today)}
	}
	ins := raw.Insurance
	if ins == nil {
		ins = llm.Empty(constants.KindInsurance).Insurance
	}
	return Patch{Kind: constants.KindInsurance, Vendor: normalizeInsurance(*ins, today)}
}

func normalizeInsurance(raw llm.InsuranceFields, today time.Time) *VendorPatch {
	out := &VendorPatch{
		Policies:          make([]entity.InsurancePolicy, 0, len(raw.Policies)),
		InsuredName:       cleanString(raw.InsuredName),
		CertificateHolder: cleanString(raw.CertificateHolder),
	}
	for _, p := range raw.Policies {
		policy := entity.InsurancePolicy{
			Carrier:       cleanString(p.Carrier),
			PolicyNumber:  cleanString(p.PolicyNumber),
			CoverageLimit: ParseLimit(p.CoverageLimit),
			ExpiryDate:    ParseISODate(p.ExpiryDate),
		}
		if p.Type != nil {
			policy.Type, _ = constants.CanonicalizePolicyType(*p.Type)
		}
		policy.Status = compliance.Classify(policy.ExpiryDate, constants.InsuranceThresholdDays, today)
		out.Policies = append(out.Policies, policy)
	}
	out.InsuranceExpiry = EarliestExpiry(out.Policies)
	out.Status = compliance.Classify(out.InsuranceExpiry, constants.InsuranceThresholdDays, today)
	return out
}

func normalizeContract(raw llm.ContractFields, today time.Time) *ContractPatch {
	out := &ContractPatch{
		StartDate:   ParseISODate(raw.StartDate),
		EndDate:     ParseISODate(raw.EndDate),
		Value:       ParseAmount(raw.Value),
		AutoRenewal: raw.AutoRenewal,
		Description: cleanString(raw.Description),
		Parties:     make([]entity.Party, 0, len(raw.Parties)),
	}
	if t := cleanString(raw.ContractType); t != nil {
		canon, _ := constants.CanonicalizeContractType(*t)
		out.ContractType = &canon
	}
	for _, p := range raw.Parties {
		name := cleanString(p.Name)
		if name == nil {
			continue
		}
		out.Parties = append(out.Parties, entity.Party{Name: *name, Role: cleanString(p.Role)})
	}
	out.Status = compliance.Classify(out.EndDate, constants.ContractThresholdDays, today)
	return out
}

// EarliestExpiry returns the earliest non-null policy expiry: one lapsed
// line of coverage makes the whole vendor lapse. nil when no policy has a date.
func EarliestExpiry(policies []entity.InsurancePolicy) *string {
	var earliest *string
	for i := range policies {
		d := policies[i].ExpiryDate
		if d == nil {
			continue
		}
		// ISO dates order lexically
		if earliest == nil || *d < *earliest {
			v := *d
			earliest = &v
		}
	}
	return earliest
}
