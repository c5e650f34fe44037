package promo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/promoflow/promoflow/internal/tabular"
)

// Required CSV columns for the bulk new-request import. Optional
// columns: storeGroupId, hasRebate, rebateValue, commercialObservation.
var requiredImportHeaders = []string{"sku", "description", "priceFrom", "priceTo", "startDate", "endDate"}

// RowError is one rejected import line. Line is the physical line in
// the uploaded file, with the header occupying line 1. Data holds the
// raw field map so the user can locate the offending row.
type RowError struct {
	Line  int               `json:"line"`
	Data  map[string]string `json:"data"`
	Error string            `json:"error"`
}

// ImportResult partitions a parsed upload into drafts ready for
// BulkCreate and the rows that failed validation. Rows fail
// independently; a bad row never aborts the batch.
type ImportResult struct {
	Drafts []Draft    `json:"-"`
	Valid  int        `json:"valid"`
	Errors []RowError `json:"errors"`
}

// ParseRequestCSV validates raw delimited text against the bulk
// import contract. Structural problems (empty file, missing required
// headers) abort the whole import with an error; everything past the
// header check is reported per row.
func ParseRequestCSV(text string, storeGroupIDs map[string]struct{}) (ImportResult, error) {
	table, err := tabular.ParseDelimited(text)
	if err != nil || len(table.Rows) == 0 {
		return ImportResult{}, fmt.Errorf("o arquivo CSV está vazio ou contém apenas o cabeçalho")
	}

	known := make(map[string]int, len(table.Header))
	for i, h := range table.Header {
		known[h] = i
	}
	var missing []string
	for _, h := range requiredImportHeaders {
		if _, ok := known[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return ImportResult{}, fmt.Errorf("cabeçalhos obrigatórios não encontrados: %s", strings.Join(missing, ", "))
	}

	result := ImportResult{}
	for _, row := range table.Rows {
		if len(row.Fields) != len(table.Header) {
			result.Errors = append(result.Errors, RowError{
				Line:  row.Line,
				Data:  map[string]string{"raw": strings.Join(row.Fields, ",")},
				Error: fmt.Sprintf("número de colunas incorreto. Esperado: %d, Encontrado: %d", len(table.Header), len(row.Fields)),
			})
			continue
		}

		data := make(map[string]string, len(table.Header))
		for i, h := range table.Header {
			data[h] = strings.TrimSpace(row.Fields[i])
		}

		draft, verr := validateRequestRow(data, storeGroupIDs)
		if verr != "" {
			result.Errors = append(result.Errors, RowError{Line: row.Line, Data: data, Error: verr})
			continue
		}
		result.Drafts = append(result.Drafts, draft)
	}
	result.Valid = len(result.Drafts)
	return result, nil
}

// validateRequestRow applies the per-row rules in fixed order; the
// first failing rule produces the row's single error message.
func validateRequestRow(data map[string]string, storeGroupIDs map[string]struct{}) (Draft, string) {
	for _, h := range requiredImportHeaders {
		if data[h] == "" {
			return Draft{}, "campos obrigatórios (sku, description, prices, dates) faltando"
		}
	}

	startDate, startOK := parseFlexibleDate(data["startDate"])
	endDate, endOK := parseFlexibleDate(data["endDate"])
	if !startOK || !endOK {
		return Draft{}, "formato de data inválido. Use DD/MM/YYYY ou YYYY-MM-DD"
	}
	if endDate.Before(startDate) {
		return Draft{}, "a data final não pode ser anterior à data de início"
	}

	priceFrom, fromErr := parseBrazilianNumber(data["priceFrom"])
	priceTo, toErr := parseBrazilianNumber(data["priceTo"])
	if fromErr != nil || toErr != nil {
		return Draft{}, "valores de preço (priceFrom, priceTo) devem ser números válidos (ex: 1.297,99 ou 1297.99)"
	}
	if priceTo >= priceFrom {
		return Draft{}, "preço 'Por' (priceTo) deve ser menor que o 'De' (priceFrom)"
	}

	if groupID := data["storeGroupId"]; groupID != "" {
		if _, ok := storeGroupIDs[groupID]; !ok {
			return Draft{}, fmt.Sprintf("o Grupo de Lojas (storeGroupId) '%s' não existe", groupID)
		}
	}

	hasRebate := strings.EqualFold(data["hasRebate"], "true")
	var rebateValue float64
	if hasRebate {
		v, err := parseBrazilianNumber(data["rebateValue"])
		if err != nil || v <= 0 {
			return Draft{}, "se hasRebate for 'true', rebateValue deve ser um número positivo e válido"
		}
		rebateValue = v
	}

	return Draft{
		SKU:                   data["sku"],
		Description:           data["description"],
		PriceFrom:             priceFrom,
		PriceTo:               priceTo,
		StartDate:             startDate,
		EndDate:               endDate,
		StoreGroupID:          data["storeGroupId"],
		HasRebate:             hasRebate,
		RebateValue:           rebateValue,
		CommercialObservation: data["commercialObservation"],
	}, ""
}

// parseFlexibleDate accepts DD/MM/YYYY or YYYY-MM-DD and normalizes to
// a UTC calendar date.
func parseFlexibleDate(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("02/01/2006", s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseBrazilianNumber parses either Brazilian ("1.297,99") or plain
// ("1297.99") decimal notation: thousands dots are stripped, a decimal
// comma becomes a dot.
func parseBrazilianNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}
