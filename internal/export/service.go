package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/services/report"
)

// Loader returns vendors and contracts with statuses computed for one day.
type Loader interface {
	Load(ctx context.Context, orgID string) (*report.Snapshot, error)
}

// Service produces XLSX and CSV exports of an organization.
type Service struct {
	loader Loader
	logger *slog.Logger
}

func NewService(loader Loader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{loader: loader, logger: logger}
}

const (
	SheetVendors   = "Vendors"
	SheetPolicies  = "Policies"
	SheetContracts = "Contracts"
)

var (
	vendorHeaders   = []string{"Name", "Email", "Phone", "Category", "Insurance Expiry", "Days Left", "Status", "Policies", "Documents"}
	policyHeaders   = []string{"Vendor", "Policy Type", "Carrier", "Policy Number", "Coverage Limit", "Expiry Date", "Days Left", "Status"}
	contractHeaders = []string{"Title", "Vendor", "Contract Type", "Start Date", "End Date", "Days Left", "Value", "Auto Renewal", "Status"}
)

// ExportXLSX returns a workbook with one sheet each for vendors, policies and
// contracts.
func (s *Service) ExportXLSX(ctx context.Context, orgID string) ([]byte, error) {
	start := time.Now()
	snap, err := s.loader.Load(ctx, orgID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetVendors); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for _, name := range []string{SheetPolicies, SheetContracts} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx sheet: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	names := make(map[string]string, len(snap.Vendors))
	vendorRows := make([][]any, 0, len(snap.Vendors))
	var policyRows [][]any
	for _, v := range snap.Vendors {
		names[v.ID] = v.Name
		vendorRows = append(vendorRows, []any{
			v.Name, v.Email, v.Phone, v.Category,
			deref(v.InsuranceExpiry), daysLeft(v.InsuranceExpiry, snap.Today), string(v.Status),
			len(v.InsurancePolicies), len(v.Documents),
		})
		for _, p := range v.InsurancePolicies {
			policyRows = append(policyRows, []any{
				v.Name, p.Type, deref(p.Carrier), deref(p.PolicyNumber), limit(p.CoverageLimit),
				deref(p.ExpiryDate), daysLeft(p.ExpiryDate, snap.Today), string(p.Status),
			})
		}
	}
	contractRows := make([][]any, 0, len(snap.Contracts))
	for _, c := range snap.Contracts {
		contractRows = append(contractRows, []any{
			c.Title, vendorName(names, c.VendorID), c.ContractType,
			deref(c.StartDate), deref(c.EndDate), daysLeft(c.EndDate, snap.Today),
			c.Value, autoRenewal(c.AutoRenewal), string(c.Status),
		})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetVendors, vendorHeaders, vendorRows},
		{SheetPolicies, policyHeaders, policyRows},
		{SheetContracts, contractHeaders, contractRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.headers, sh.rows, bold); err != nil {
			return nil, err
		}
	}
	idx, _ := f.GetSheetIndex(SheetVendors)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"org_id", orgID,
		"vendors", len(snap.Vendors),
		"contracts", len(snap.Contracts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx %s header: %w", sheet, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", lastCol, 18)
	return nil
}

// CSVHeader matches the columns accepted by the vendor CSV import, plus status.
var CSVHeader = []string{"name", "email", "phone", "category", "insuranceExpiry", "status"}

// ExportVendorsCSV writes the org's vendors as CSV.
func (s *Service) ExportVendorsCSV(ctx context.Context, orgID string) ([]byte, error) {
	snap, err := s.loader.Load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	for _, v := range snap.Vendors {
		if err := w.Write([]string{v.Name, v.Email, v.Phone, v.Category, deref(v.InsuranceExpiry), string(v.Status)}); err != nil {
			return nil, fmt.Errorf("csv write: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	s.logger.Info("export.csv.ok", "org_id", orgID, "vendors", len(snap.Vendors))
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// daysLeft is blank for a missing or unreadable date.
func daysLeft(date *string, today time.Time) any {
	if date == nil {
		return ""
	}
	d, ok := compliance.DaysUntil(*date, today)
	if !ok {
		return ""
	}
	return d
}

func limit(n *int64) any {
	if n == nil {
		return ""
	}
	return *n
}

func autoRenewal(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func vendorName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}
