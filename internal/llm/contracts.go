package llm

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/covera-app/covera/constants"
)

// Amount is a currency value as the model emitted it: either a JSON number
// or a decorated string like "$1,000,000". It is kept verbatim here and
// parsed by the normalizer.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

// AmountFromFloat is a convenience for tests and manual edits.
func AmountFromFloat(f float64) *Amount {
	a := Amount(strconv.FormatFloat(f, 'f', -1, 64))
	return &a
}

// PolicyFields is one coverage line on a certificate of insurance.
type PolicyFields struct {
	Type          *string `json:"type"`
	CoverageLimit *Amount `json:"coverageLimit"`
	ExpiryDate    *string `json:"expiryDate"`
	Carrier       *string `json:"carrier"`
	PolicyNumber  *string `json:"policyNumber"`
}

// InsuranceFields is the shape requested from the model for certificates.
type InsuranceFields struct {
	ExpirationDate    *string        `json:"expirationDate"`
	Policies          []PolicyFields `json:"policies"`
	InsuredName       *string        `json:"insuredName"`
	CertificateHolder *string        `json:"certificateHolder"`
}

// PartyFields is a named party to a contract.
type PartyFields struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

// ContractFields is the shape requested from the model for contracts.
type ContractFields struct {
	ContractType *string       `json:"contractType"`
	StartDate    *string       `json:"startDate"`
	EndDate      *string       `json:"endDate"`
	Value        *Amount       `json:"value"`
	AutoRenewal  *bool         `json:"autoRenewal"`
	Parties      []PartyFields `json:"parties"`
	Description  *string       `json:"description"`
}

// ExtractedFields carries exactly one of Insurance or Contract, per Kind.
// Every field is nullable; nothing is defaulted.
type ExtractedFields struct {
	Kind      constants.DocumentKind `json:"kind"`
	Insurance *InsuranceFields       `json:"insurance,omitempty"`
	Contract  *ContractFields        `json:"contract,omitempty"`
}

// Empty returns the all-null result for kind.
func Empty(kind constants.DocumentKind) ExtractedFields {
	out := ExtractedFields{Kind: kind}
	switch kind {
	case constants.KindContract:
		out.Contract = &ContractFields{Parties: []PartyFields{}}
	default:
		out.Insurance = &InsuranceFields{Policies: []PolicyFields{}}
	}
	return out
}

// ExtractRequest is one extraction call. Exactly one of Text or ImageDataURL is set.
type ExtractRequest struct {
	Kind         constants.DocumentKind
	Text         string
	ImageDataURL string
	FilenameHint string
}

// Vision reports whether the request carries an image.
func (r ExtractRequest) Vision() bool {
	return r.ImageDataURL != ""
}

// FieldExtractor is the interface the extraction pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (ExtractedFields, []byte /*rawJSON*/, error)
}
