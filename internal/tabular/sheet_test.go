package tabular

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSheetRoundTrip(t *testing.T) {
	header := []string{"promotionRequestId", "statusDaDecisao", "motivoRejeicao"}
	rows := [][]string{
		{"req-1", "APROVADA", ""},
		{"req-2", "REPROVADA", "Margem muito baixa."},
	}

	data, err := WriteSheet("Decisoes_Pendentes", header, rows)
	require.NoError(t, err)

	sheet, err := ReadFirstSheet(data)
	require.NoError(t, err)
	require.Equal(t, header, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	require.Equal(t, "req-1", sheet.Rows[0]["promotionRequestId"])
	require.Equal(t, "APROVADA", sheet.Rows[0]["statusDaDecisao"])
	require.Equal(t, "Margem muito baixa.", sheet.Rows[1]["motivoRejeicao"])
}

func TestReadFirstSheetMissingCells(t *testing.T) {
	data, err := WriteSheet("Plan1", []string{"a", "b", "c"}, [][]string{{"1"}})
	require.NoError(t, err)

	sheet, err := ReadFirstSheet(data)
	require.NoError(t, err)
	require.Equal(t, "1", sheet.Rows[0]["a"])
	_, hasB := sheet.Rows[0]["b"]
	require.False(t, hasB)
}

func TestReadFirstSheetEmpty(t *testing.T) {
	data, err := WriteSheet("Plan1", []string{"a"}, nil)
	require.NoError(t, err)

	_, err = ReadFirstSheet(data)
	require.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadFirstSheetGarbage(t *testing.T) {
	_, err := ReadFirstSheet([]byte("not a workbook"))
	require.Error(t, err)
}
