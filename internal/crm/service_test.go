package crm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"crm-service/pkg/config"
	"crm-service/pkg/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	st := memstore.New("Companies", "Calls")
	cfg := &config.Config{
		Store: config.StoreConfig{
			CompaniesTable: "Companies",
			CallsTable:     "Calls",
		},
	}
	svc := New(st, cfg, zap.NewNop())

	// Deterministic clock and id sequence for assertions.
	svc.now = func() time.Time {
		return time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	}
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("call-%d", n)
	}
	return svc, st
}

func TestLogCallCreatesCompanyAndCall(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	id, err := svc.LogCall(ctx, CallInput{
		CompanyName:  "Acme Corp",
		ContactName:  "Jane",
		Notes:        "intro call",
		FollowUpDate: "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "call-1", id)

	companies, err := st.Table(ctx, "Companies")
	require.NoError(t, err)
	companyRows, err := companies.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, companyRows, 1)
	assert.Equal(t, "Acme Corp", companyRows[0][0])

	calls, err := st.Table(ctx, "Calls")
	require.NoError(t, err)
	callRows, err := calls.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, callRows, 1)
	assert.Equal(t, "call-1", callRows[0][0])
	assert.Equal(t, "Acme Corp", callRows[0][1])
	assert.Equal(t, "2024-01-05", callRows[0][3])
	assert.Equal(t, "09:30:00", callRows[0][4])
	assert.Equal(t, "FALSE", callRows[0][9])
}

func TestLogCallReusesExistingCompany(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogCall(ctx, CallInput{CompanyName: "Acme Corp", ContactName: "Jane", Notes: "first"})
	require.NoError(t, err)
	_, err = svc.LogCall(ctx, CallInput{CompanyName: "ACME CORP", ContactName: "Bob", Notes: "second"})
	require.NoError(t, err)

	companies, err := st.Table(ctx, "Companies")
	require.NoError(t, err)
	companyRows, err := companies.Rows(ctx)
	require.NoError(t, err)
	assert.Len(t, companyRows, 1, "second call must not create a duplicate company")

	calls, err := st.Table(ctx, "Calls")
	require.NoError(t, err)
	callRows, err := calls.Rows(ctx)
	require.NoError(t, err)
	assert.Len(t, callRows, 2)
}

func TestCompanyHistoryEndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogCall(ctx, CallInput{
		CompanyName:  "Acme Corp",
		ContactName:  "Jane",
		Notes:        "intro call",
		FollowUpDate: "2024-01-10",
	})
	require.NoError(t, err)

	// Case-insensitive lookup against the stored name.
	company, calls, err := svc.CompanyHistory(ctx, "acme corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", company.Name)
	require.Len(t, calls, 1)
	assert.Equal(t, "intro call", calls[0].Notes)
	assert.Equal(t, "2024-01-10", calls[0].FollowUpDate)
}

func TestCompanyHistoryNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.CompanyHistory(context.Background(), "Nobody Inc")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyHistoryOnlyThatCompany(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogCall(ctx, CallInput{CompanyName: "Acme", ContactName: "Jane", Notes: "acme call"})
	require.NoError(t, err)
	_, err = svc.LogCall(ctx, CallInput{CompanyName: "Globex", ContactName: "Hank", Notes: "globex call"})
	require.NoError(t, err)

	_, calls, err := svc.CompanyHistory(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "acme call", calls[0].Notes)
}

func TestFollowUpsDefaultsToToday(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogCall(ctx, CallInput{CompanyName: "Past", ContactName: "A", Notes: "n", FollowUpDate: "2024-01-02"})
	require.NoError(t, err)
	_, err = svc.LogCall(ctx, CallInput{CompanyName: "Today", ContactName: "B", Notes: "n", FollowUpDate: "2024-01-05"})
	require.NoError(t, err)
	_, err = svc.LogCall(ctx, CallInput{CompanyName: "Future", ContactName: "C", Notes: "n", FollowUpDate: "2024-01-09"})
	require.NoError(t, err)
	_, err = svc.LogCall(ctx, CallInput{CompanyName: "None", ContactName: "D", Notes: "n"})
	require.NoError(t, err)

	// Clock is fixed at 2024-01-05; empty as-of must resolve to it.
	due, err := svc.FollowUps(ctx, "")
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "Past", due[0].CompanyName)
	assert.Equal(t, "Today", due[1].CompanyName)
}

func TestCompleteFollowUpRemovesFromDueSet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.LogCall(ctx, CallInput{CompanyName: "Acme", ContactName: "Jane", Notes: "n", FollowUpDate: "2024-01-02"})
	require.NoError(t, err)

	due, err := svc.FollowUps(ctx, "")
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, svc.CompleteFollowUp(ctx, id))

	due, err = svc.FollowUps(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestCompleteFollowUpUnknownID(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	err := svc.CompleteFollowUp(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrFollowUpNotFound)

	calls, err := st.Table(ctx, "Calls")
	require.NoError(t, err)
	rows, err := calls.Rows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "unknown id must not mutate the store")
}

func TestSearchAcrossCompanies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogCall(ctx, CallInput{CompanyName: "acme", ContactName: "J", Notes: "requested a refund today"})
	require.NoError(t, err)
	_, err = svc.LogCall(ctx, CallInput{CompanyName: "Other Co", ContactName: "K", Notes: "requested a refund today"})
	require.NoError(t, err)

	matches, err := svc.Search(ctx, "REFUND", "Acme")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "acme", matches[0].CompanyName)
}
