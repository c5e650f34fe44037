package tabular

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDelimitedBasic(t *testing.T) {
	table, err := ParseDelimited("sku,description\nSKU1,Promo\nSKU2,Outra")
	require.NoError(t, err)
	require.Equal(t, []string{"sku", "description"}, table.Header)
	require.Len(t, table.Rows, 2)
	require.Equal(t, 2, table.Rows[0].Line)
	require.Equal(t, []string{"SKU1", "Promo"}, table.Rows[0].Fields)
	require.Equal(t, 3, table.Rows[1].Line)
}

func TestParseDelimitedQuotedComma(t *testing.T) {
	table, err := ParseDelimited("sku,description\nSKU1,\"Promoção Dia das Mães, 20% OFF\"")
	require.NoError(t, err)
	require.Equal(t, []string{"SKU1", "Promoção Dia das Mães, 20% OFF"}, table.Rows[0].Fields)
}

func TestParseDelimitedEscapedQuote(t *testing.T) {
	table, err := ParseDelimited("a,b\n\"diz \"\"oi\"\"\",x")
	require.NoError(t, err)
	require.Equal(t, []string{`diz "oi"`, "x"}, table.Rows[0].Fields)
}

func TestParseDelimitedUnterminatedQuoteIsLiteral(t *testing.T) {
	// A quote left open runs to the end of its line; the content is
	// accepted rather than rejected.
	table, err := ParseDelimited("a,b\n\"aberta,x")
	require.NoError(t, err)
	require.Equal(t, []string{"aberta,x"}, table.Rows[0].Fields)
}

func TestParseDelimitedSkipsBlankLinesKeepsNumbers(t *testing.T) {
	table, err := ParseDelimited("a,b\n\nSKU1,x\r\n\r\nSKU2,y")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, 3, table.Rows[0].Line)
	require.Equal(t, 5, table.Rows[1].Line)
}

func TestParseDelimitedCRLF(t *testing.T) {
	table, err := ParseDelimited("a,b\r\n1,2\r\n")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, table.Rows[0].Fields)
}

func TestParseDelimitedEmptyInput(t *testing.T) {
	_, err := ParseDelimited("   \n \n")
	require.ErrorIs(t, err, ErrEmptyInput)
}
