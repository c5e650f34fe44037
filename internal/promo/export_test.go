package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promoflow/promoflow/internal/tabular"
)

func TestBuildPendingExportFiltersAndFormats(t *testing.T) {
	requests := []Request{
		{
			ID:          "req-1",
			SKU:         "SKU-1",
			Description: "Promo pendente",
			PriceFrom:   199.90,
			PriceTo:     149.90,
			StartDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC),
			Status:      StatusPendente,
			RequesterID: 1,
			HasRebate:   true,
			RebateValue: 10,
		},
		{ID: "req-2", Status: StatusAprovada, RequesterID: 1},
	}

	data, err := BuildPendingExport(requests, map[int64]string{1: "Ana Silva"})
	require.NoError(t, err)

	sheet, err := tabular.ReadFirstSheet(data)
	require.NoError(t, err)
	require.Equal(t, exportHeader, sheet.Header)
	require.Len(t, sheet.Rows, 1)

	row := sheet.Rows[0]
	require.Equal(t, "req-1", row["promotionRequestId"])
	require.Equal(t, "Ana Silva", row["requesterName"])
	require.Equal(t, "Todas as Lojas", row["storeGroupId"])
	require.Equal(t, "SIM", row["hasRebate"])
	require.Equal(t, "2025-05-01", row["startDate"])
	require.Equal(t, "199.9", row["priceFrom"])
	require.Empty(t, row["statusDaDecisao"])
	require.Empty(t, row["motivoRejeicao"])
	require.Empty(t, row["numeroAcaoSAP"])
}

func TestBuildPendingExportUnknownRequester(t *testing.T) {
	requests := []Request{{ID: "req-1", Status: StatusPendente, RequesterID: 99,
		StartDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)}}

	data, err := BuildPendingExport(requests, nil)
	require.NoError(t, err)

	sheet, err := tabular.ReadFirstSheet(data)
	require.NoError(t, err)
	require.Equal(t, "Desconhecido", sheet.Rows[0]["requesterName"])
}

// A pending request exported to the template and re-imported with a
// filled decision approves the request with its SAP number set.
func TestExportDecisionRoundTrip(t *testing.T) {
	state, created := pendingState(t)

	data, err := BuildPendingExport(state.Requests, map[int64]string{testAnalyst.ID: testAnalyst.Name})
	require.NoError(t, err)

	sheet, err := tabular.ReadFirstSheet(data)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	sheet.Rows[0]["statusDaDecisao"] = "APROVADA"
	sheet.Rows[0]["numeroAcaoSAP"] = "SAP-99"

	validated, err := ValidateDecisionSheet(sheet, requestIndex(state.Requests...))
	require.NoError(t, err)
	require.Empty(t, validated.Errors)
	require.Len(t, validated.Decisions, 1)

	next, changed, err := Apply(state, BulkDecideCommand{Decisions: validated.Decisions, Actor: testApprover}, testNow)
	require.NoError(t, err)
	require.Len(t, changed, 1)

	got, ok := next.Find(created.ID)
	require.True(t, ok)
	require.Equal(t, StatusAprovada, got.Status)
	require.Equal(t, "SAP-99", got.SAPActionNumber)
	require.Empty(t, got.RejectionReason)
}
