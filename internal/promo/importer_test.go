package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const importHeader = "sku,description,priceFrom,priceTo,startDate,endDate"

func TestParseRequestCSVValidRow(t *testing.T) {
	text := importHeader + "\nSKU1,Promo,100,90,01/01/2025,10/01/2025"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Drafts, 1)

	draft := result.Drafts[0]
	require.Equal(t, "SKU1", draft.SKU)
	require.Equal(t, float64(100), draft.PriceFrom)
	require.Equal(t, float64(90), draft.PriceTo)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), draft.StartDate)
	require.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), draft.EndDate)
}

func TestParseRequestCSVPriceOrderingRule(t *testing.T) {
	text := importHeader + "\nSKU1,Promo,100,110,01/01/2025,10/01/2025"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Empty(t, result.Drafts)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 2, result.Errors[0].Line)
	require.Contains(t, result.Errors[0].Error, "menor que o 'De'")
}

func TestParseRequestCSVMissingHeaderIsFatal(t *testing.T) {
	_, err := ParseRequestCSV("sku,description,priceFrom\nSKU1,Promo,100", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "priceTo")
	require.Contains(t, err.Error(), "startDate")
}

func TestParseRequestCSVEmptyInputIsFatal(t *testing.T) {
	_, err := ParseRequestCSV("", nil)
	require.Error(t, err)
}

func TestParseRequestCSVColumnCountMismatch(t *testing.T) {
	text := importHeader + "\nSKU1,Promo,100,90,01/01/2025"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Empty(t, result.Drafts)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "número de colunas incorreto")
}

func TestParseRequestCSVRuleOrderFirstFailureWins(t *testing.T) {
	// Row has both a bad date and bad prices; the date rule fires first.
	text := importHeader + "\nSKU1,Promo,abc,xyz,2025-13-99,10/01/2025"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "formato de data inválido")
}

func TestParseRequestCSVMissingRequiredField(t *testing.T) {
	text := importHeader + "\nSKU1,,100,90,01/01/2025,10/01/2025"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "obrigatórios")
}

func TestParseRequestCSVEndBeforeStart(t *testing.T) {
	text := importHeader + "\nSKU1,Promo,100,90,10/01/2025,01/01/2025"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "anterior à data de início")
}

func TestParseRequestCSVBrazilianNumbers(t *testing.T) {
	text := importHeader + "\n" + `SKU1,"Promo, 20% OFF","1.297,99","1.099,50",01/01/2025,10/01/2025`

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Drafts, 1)
	require.Equal(t, "Promo, 20% OFF", result.Drafts[0].Description)
	require.Equal(t, 1297.99, result.Drafts[0].PriceFrom)
	require.Equal(t, 1099.50, result.Drafts[0].PriceTo)
}

func TestParseRequestCSVPlainDecimalNumbers(t *testing.T) {
	text := importHeader + "\nSKU1,Promo,1297.99,1099.50,2025-01-01,2025-01-10"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Equal(t, 1297.99, result.Drafts[0].PriceFrom)
}

func TestParseRequestCSVUnknownStoreGroup(t *testing.T) {
	text := importHeader + ",storeGroupId\nSKU1,Promo,100,90,01/01/2025,10/01/2025,grp-999"
	groups := map[string]struct{}{"grp-1": {}}

	result, err := ParseRequestCSV(text, groups)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "grp-999")
}

func TestParseRequestCSVKnownStoreGroup(t *testing.T) {
	text := importHeader + ",storeGroupId\nSKU1,Promo,100,90,01/01/2025,10/01/2025,grp-1"
	groups := map[string]struct{}{"grp-1": {}}

	result, err := ParseRequestCSV(text, groups)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Equal(t, "grp-1", result.Drafts[0].StoreGroupID)
}

func TestParseRequestCSVRebateRequiresPositiveValue(t *testing.T) {
	text := importHeader + ",hasRebate,rebateValue\nSKU1,Promo,100,90,01/01/2025,10/01/2025,true,0"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Error, "rebateValue")
}

func TestParseRequestCSVRebateParsed(t *testing.T) {
	text := importHeader + ",hasRebate,rebateValue\nSKU1,Promo,100,90,01/01/2025,10/01/2025,TRUE,\"10,50\""

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.True(t, result.Drafts[0].HasRebate)
	require.Equal(t, 10.50, result.Drafts[0].RebateValue)
}

func TestParseRequestCSVMixedRowsPartition(t *testing.T) {
	text := importHeader + "\n" +
		"SKU1,Promo A,100,90,01/01/2025,10/01/2025\n" +
		"SKU2,Promo B,100,110,01/01/2025,10/01/2025\n" +
		"SKU3,Promo C,200,150,2025-02-01,2025-02-28"

	result, err := ParseRequestCSV(text, nil)
	require.NoError(t, err)
	require.Len(t, result.Drafts, 2)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 3, result.Errors[0].Line)
	require.Equal(t, 2, result.Valid)
}
