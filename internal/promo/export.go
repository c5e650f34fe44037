package promo

import (
	"strconv"

	"github.com/promoflow/promoflow/internal/tabular"
)

// AllStoresSentinel marks a request that applies to every store rather
// than a specific group.
const AllStoresSentinel = "Todas as Lojas"

const exportSheetName = "Decisoes_Pendentes"

var exportHeader = []string{
	"promotionRequestId", "sku", "description", "priceFrom", "priceTo",
	"startDate", "endDate", "requesterName", "storeGroupId", "hasRebate",
	"rebateValue", "commercialObservation",
	"statusDaDecisao", "motivoRejeicao", "numeroAcaoSAP",
}

// BuildPendingExport renders the offline decision template: one row
// per PENDENTE request plus three blank columns for the reviewer to
// fill. The workbook round-trips through ValidateDecisionSheet.
// requesterNames maps requester ids to display names; unknown ids
// export as "Desconhecido".
func BuildPendingExport(requests []Request, requesterNames map[int64]string) ([]byte, error) {
	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		if r.Status != StatusPendente {
			continue
		}
		requester := requesterNames[r.RequesterID]
		if requester == "" {
			requester = "Desconhecido"
		}
		storeGroup := r.StoreGroupID
		if storeGroup == "" {
			storeGroup = AllStoresSentinel
		}
		rebate := "NÃO"
		if r.HasRebate {
			rebate = "SIM"
		}
		rows = append(rows, []string{
			r.ID,
			r.SKU,
			r.Description,
			formatPrice(r.PriceFrom),
			formatPrice(r.PriceTo),
			r.StartDate.Format(DateLayout),
			r.EndDate.Format(DateLayout),
			requester,
			storeGroup,
			rebate,
			formatPrice(r.RebateValue),
			r.CommercialObservation,
			"", "", "",
		})
	}
	return tabular.WriteSheet(exportSheetName, exportHeader, rows)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
