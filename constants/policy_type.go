package constants

import (
	"strings"
)

// Canonical insurance policy types.
const (
	PolicyGeneralLiability      = "General Liability"
	PolicyAutoLiability         = "Auto Liability"
	PolicyWorkersCompensation   = "Workers Compensation"
	PolicyEmployersLiability    = "Employers Liability"
	PolicyUmbrellaLiability     = "Umbrella Liability"
	PolicyExcessLiability       = "Excess Liability"
	PolicyProfessionalLiability = "Professional Liability"
	PolicyCyberLiability        = "Cyber Liability"
	PolicyProperty              = "Property"
)

var policySynonyms = map[string]string{
	"commercial general liability": PolicyGeneralLiability,
	"general liability":            PolicyGeneralLiability,
	"cgl":                          PolicyGeneralLiability,
	"automobile liability":         PolicyAutoLiability,
	"auto liability":               PolicyAutoLiability,
	"business auto":                PolicyAutoLiability,
	"workers compensation":         PolicyWorkersCompensation,
	"workers' compensation":        PolicyWorkersCompensation,
	"workers comp":                 PolicyWorkersCompensation,
	"workers compensation and employers liability": PolicyWorkersCompensation,
	"employers liability":    PolicyEmployersLiability,
	"employers' liability":   PolicyEmployersLiability,
	"umbrella liab":          PolicyUmbrellaLiability,
	"umbrella liability":     PolicyUmbrellaLiability,
	"umbrella":               PolicyUmbrellaLiability,
	"excess liab":            PolicyExcessLiability,
	"excess liability":       PolicyExcessLiability,
	"professional liability": PolicyProfessionalLiability,
	"errors and omissions":   PolicyProfessionalLiability,
	"errors & omissions":     PolicyProfessionalLiability,
	"e&o":                    PolicyProfessionalLiability,
	"cyber liability":        PolicyCyberLiability,
	"cyber":                  PolicyCyberLiability,
	"property":               PolicyProperty,
	"commercial property":    PolicyProperty,
}

// CanonicalizePolicyType maps an extracted policy type onto the canonical name.
// Unknown input is returned unchanged (trimmed) with ok=false; it is never dropped.
func CanonicalizePolicyType(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if canon, ok := policySynonyms[lookupKey(trimmed)]; ok {
		return canon, true
	}
	return trimmed, false
}

// Contract types.
const (
	ContractServiceAgreement = "Service Agreement"
	ContractMasterServices   = "Master Services Agreement"
	ContractStatementOfWork  = "Statement of Work"
	ContractNDA              = "NDA"
	ContractLicense          = "License Agreement"
	ContractSupply           = "Supply Agreement"
	ContractLease            = "Lease"
	ContractConsulting       = "Consulting Agreement"
	ContractOther            = "Other"
)

var allContractTypes = []string{
	ContractServiceAgreement,
	ContractMasterServices,
	ContractStatementOfWork,
	ContractNDA,
	ContractLicense,
	ContractSupply,
	ContractLease,
	ContractConsulting,
	ContractOther,
}

var contractSynonyms = map[string]string{
	"msa":                              ContractMasterServices,
	"master service agreement":         ContractMasterServices,
	"sow":                              ContractStatementOfWork,
	"non-disclosure agreement":         ContractNDA,
	"nondisclosure agreement":          ContractNDA,
	"confidentiality agreement":        ContractNDA,
	"services agreement":               ContractServiceAgreement,
	"software license":                 ContractLicense,
	"license":                          ContractLicense,
	"supplier agreement":               ContractSupply,
	"purchase agreement":               ContractSupply,
	"lease agreement":                  ContractLease,
	"consulting services":              ContractConsulting,
	"independent contractor agreement": ContractConsulting,
}

// ContractTypes returns the allowed contract types, "Other" last.
func ContractTypes() []string {
	out := make([]string, len(allContractTypes))
	copy(out, allContractTypes)
	return out
}

// CanonicalizeContractType maps an extracted contract type onto the allowed list.
// Unlike policy types, anything unmapped becomes "Other".
func CanonicalizeContractType(input string) (string, bool) {
	key := lookupKey(input)
	if key == "" {
		return ContractOther, false
	}
	if c, ok := contractSynonyms[key]; ok {
		return c, true
	}
	for _, c := range allContractTypes {
		if key == strings.ToLower(c) {
			return c, true
		}
	}
	return ContractOther, false
}

// lookupKey lowercases and collapses internal whitespace.
func lookupKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
