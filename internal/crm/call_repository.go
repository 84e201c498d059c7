package crm

import (
	"context"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/store"
)

// CallInput is the caller-supplied part of a new call record.
type CallInput struct {
	CompanyName  string
	ContactName  string
	Notes        string
	FollowUpDate string
	// OfferMade is accepted for compatibility with existing clients and not
	// persisted; the canonical Calls layout has no column for it.
	OfferMade string
}

// AppendCall writes a new call row in the canonical column order. The id is
// generated by the caller (the store assigns nothing), and the capture
// instant is split into separate date and time cells.
func AppendCall(ctx context.Context, t store.Table, in CallInput, id string, at time.Time) (*model.Call, error) {
	call := model.Call{
		ID:           id,
		CompanyName:  in.CompanyName,
		ContactName:  in.ContactName,
		Date:         at.Format("2006-01-02"),
		Time:         at.Format("15:04:05"),
		Notes:        in.Notes,
		FollowUpDate: in.FollowUpDate,
		Completed:    false,
	}
	if err := t.Append(ctx, call.Row()); err != nil {
		return nil, err
	}
	return &call, nil
}

// ListCalls reads every call row. Rows missing trailing columns are padded
// with empty defaults rather than rejected, matching what the legacy system
// tolerated across its schema drafts.
func ListCalls(ctx context.Context, t store.Table) ([]model.Call, error) {
	rows, err := t.Rows(ctx)
	if err != nil {
		return nil, err
	}

	calls := make([]model.Call, 0, len(rows))
	for _, row := range rows {
		calls = append(calls, model.CallFromRow(row))
	}
	return calls, nil
}
