package crm

import (
	"context"
	"strings"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/store"
)

// FindCompany scans the name column top to bottom and returns the first
// case-insensitive match with its data-row index. The backing store has no
// unique index, so duplicate names are possible; first match wins keeps the
// earliest inserted row authoritative. Returns index -1 when absent.
func FindCompany(ctx context.Context, t store.Table, name string) (int, *model.Company, error) {
	rows, err := t.Rows(ctx)
	if err != nil {
		return -1, nil, err
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if strings.EqualFold(row[0], name) {
			company := model.CompanyFromRow(row)
			return i, &company, nil
		}
	}
	return -1, nil, nil
}

// EnsureCompany returns the existing row for the name or appends a fresh one.
// At most one store mutation. The scan-then-append window is not atomic:
// two concurrent callers for a brand-new company can both append. The store
// has no compare-and-swap to close that window, so it stays documented
// rather than hidden.
func EnsureCompany(ctx context.Context, t store.Table, name, contactName string, now time.Time) (*model.Company, error) {
	_, existing, err := FindCompany(ctx, t, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	company := model.Company{
		Name:        name,
		ContactName: contactName,
		NoCall:      false,
		CreatedAt:   now.Format("2006-01-02 15:04:05"),
	}
	if err := t.Append(ctx, company.Row()); err != nil {
		return nil, err
	}
	return &company, nil
}
