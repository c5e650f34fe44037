package promo

import (
	"fmt"
	"strings"

	"github.com/promoflow/promoflow/internal/tabular"
)

var requiredDecisionHeaders = []string{"promotionRequestId", "statusDaDecisao"}

// DecisionError is one rejected decision row. Line is the spreadsheet
// row, with the header occupying row 1.
type DecisionError struct {
	Line  int               `json:"line"`
	Data  map[string]string `json:"data"`
	Error string            `json:"error"`
}

// DecisionResult partitions a decision upload into verdicts ready for
// BulkDecide and the rows that failed validation. Rows are validated
// independently; one row's outcome never affects another's.
type DecisionResult struct {
	Decisions []Decision      `json:"decisions"`
	Errors    []DecisionError `json:"errors"`
}

// ValidateDecisionSheet checks a parsed spreadsheet against the bulk
// decision contract and the live request set. Missing required
// columns abort the whole import; everything else is per row.
func ValidateDecisionSheet(sheet tabular.Sheet, byID map[string]Request) (DecisionResult, error) {
	known := make(map[string]struct{}, len(sheet.Header))
	for _, h := range sheet.Header {
		known[h] = struct{}{}
	}
	var missing []string
	for _, h := range requiredDecisionHeaders {
		if _, ok := known[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return DecisionResult{}, fmt.Errorf("cabeçalhos obrigatórios não encontrados no arquivo: %s", strings.Join(missing, ", "))
	}

	result := DecisionResult{}
	for i, row := range sheet.Rows {
		line := i + 2
		fail := func(msg string) {
			result.Errors = append(result.Errors, DecisionError{Line: line, Data: row, Error: msg})
		}

		id := strings.TrimSpace(row["promotionRequestId"])
		rawStatus := strings.TrimSpace(row["statusDaDecisao"])
		if id == "" || rawStatus == "" {
			fail("as colunas 'promotionRequestId' e 'statusDaDecisao' são obrigatórias")
			continue
		}

		request, ok := byID[id]
		if !ok {
			fail(fmt.Sprintf("solicitação com ID '%s' não encontrada", id))
			continue
		}
		if request.Status != StatusPendente {
			fail(fmt.Sprintf("esta solicitação já foi tratada (Status atual: %s)", request.Status))
			continue
		}

		status := Status(strings.ToUpper(rawStatus))
		if status != StatusAprovada && status != StatusReprovada {
			fail("o 'statusDaDecisao' deve ser 'APROVADA' ou 'REPROVADA'")
			continue
		}

		reason := strings.TrimSpace(row["motivoRejeicao"])
		if status == StatusReprovada && reason == "" {
			fail("o 'motivoRejeicao' é obrigatório quando a decisão é 'REPROVADA'")
			continue
		}

		result.Decisions = append(result.Decisions, Decision{
			ID:              id,
			Status:          status,
			Reason:          reason,
			SAPActionNumber: strings.TrimSpace(row["numeroAcaoSAP"]),
		})
	}
	return result, nil
}
