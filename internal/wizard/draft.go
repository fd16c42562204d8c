package wizard

import "github.com/aksi-clean/api/internal/domain"

// ItemDraft accumulates the data collected for one order item as the item
// sub-wizard advances. It becomes a domain.OrderItem once the draft passes
// the pricing substep.
type ItemDraft struct {
	CategoryCode  string   `json:"categoryCode"`
	ItemName      string   `json:"itemName"`
	PriceListID   string   `json:"priceListId"`
	UnitOfMeasure string   `json:"unitOfMeasure"`
	Quantity      int64    `json:"quantity"`
	Color         string   `json:"color"`
	Material      string   `json:"material"`
	FillerType    string   `json:"fillerType"`
	WearLevel     int      `json:"wearLevel"`
	Stains        []string `json:"stains"`
	Defects       []string `json:"defects"`
	RiskNotes     string   `json:"riskNotes"`
	PhotoKeys     []string `json:"photoKeys"`

	ModifierCodes   []string         `json:"modifierCodes"`
	RangeSelections map[string]int64 `json:"rangeSelections,omitempty"`
	FixedCounts     map[string]int64 `json:"fixedCounts,omitempty"`
	Expedited       bool             `json:"expedited"`

	Pricing *domain.PriceCalculationResult `json:"pricing,omitempty"`
}

// cloneItemDraft copies a draft including its nested slices and maps, so
// snapshots handed out by the session store never alias stored state.
func cloneItemDraft(in ItemDraft) ItemDraft {
	out := in
	out.Stains = append([]string(nil), in.Stains...)
	out.Defects = append([]string(nil), in.Defects...)
	out.PhotoKeys = append([]string(nil), in.PhotoKeys...)
	out.ModifierCodes = append([]string(nil), in.ModifierCodes...)
	if in.RangeSelections != nil {
		out.RangeSelections = make(map[string]int64, len(in.RangeSelections))
		for k, v := range in.RangeSelections {
			out.RangeSelections[k] = v
		}
	}
	if in.FixedCounts != nil {
		out.FixedCounts = make(map[string]int64, len(in.FixedCounts))
		for k, v := range in.FixedCounts {
			out.FixedCounts[k] = v
		}
	}
	if in.Pricing != nil {
		pricing := *in.Pricing
		pricing.AppliedCodes = append([]string(nil), in.Pricing.AppliedCodes...)
		pricing.Details = append([]domain.CalculationDetail(nil), in.Pricing.Details...)
		out.Pricing = &pricing
	}
	return out
}
