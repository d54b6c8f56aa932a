package constants

// ComplianceStatus is the derived state of a vendor, policy or contract.
type ComplianceStatus string

// Stable values (these exact strings are stored and returned to clients).
const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusAtRisk       ComplianceStatus = "at-risk"
	StatusNonCompliant ComplianceStatus = "non-compliant"
)

// Threshold days per document kind. Insurance and contracts deliberately differ.
const (
	InsuranceThresholdDays = 30
	ContractThresholdDays  = 60
)

// InvalidDateSentinel is what a browser date formatter emits for unparseable input.
const InvalidDateSentinel = "Invalid Date"

// DocumentKind selects the extraction schema.
type DocumentKind string

const (
	KindInsurance DocumentKind = "insurance"
	KindContract  DocumentKind = "contract"
)

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	return k == KindInsurance || k == KindContract
}

// MilestoneStatus is user/AI set; never derived from dates.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneOverdue    MilestoneStatus = "overdue"
)

// DeliverableStatus is user/AI set; never derived from dates.
type DeliverableStatus string

const (
	DeliverablePending   DeliverableStatus = "pending"
	DeliverableSubmitted DeliverableStatus = "submitted"
	DeliverableApproved  DeliverableStatus = "approved"
	DeliverableRejected  DeliverableStatus = "rejected"
)

// SLAStatus is user/AI set; never derived from dates.
type SLAStatus string

const (
	SLAMet      SLAStatus = "met"
	SLAAtRisk   SLAStatus = "at-risk"
	SLABreached SLAStatus = "breached"
)
