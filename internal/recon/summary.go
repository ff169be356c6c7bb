package recon

import (
	"math"
	"strings"

	"github.com/sells-group/smelter-recon/internal/model"
)

// Summarize aggregates per-item outcomes into totals and per-metal and
// per-standard breakdowns. Pure and order-independent over the outcome
// list; an empty list yields all-zero counts.
//
// The per-standard percentage divides by the count of all outcomes whose
// metal was checked, not by a per-standard subset. Downstream consumers
// depend on that exact denominator, so it stays.
func Summarize(outcomes []model.MatchOutcome, standardsUsed []model.Standard, metalsChecked []string) model.ComparisonSummary {
	summary := model.ComparisonSummary{
		Total: len(outcomes),
		ByStatus: map[model.ConformanceStatus]int{
			model.StatusConformant:        0,
			model.StatusActive:            0,
			model.StatusNonConformant:     0,
			model.StatusAttentionRequired: 0,
		},
	}

	for _, o := range outcomes {
		summary.ByStatus[o.Status]++
	}
	summary.ConformantPercent = percent(summary.ByStatus[model.StatusConformant], summary.Total)

	for _, metal := range metalsChecked {
		var total, conformant int
		for _, o := range outcomes {
			if !strings.EqualFold(o.Declared.Metal, metal) {
				continue
			}
			total++
			if o.Status == model.StatusConformant {
				conformant++
			}
		}
		summary.Metals = append(summary.Metals, model.MetalBreakdown{
			Metal:             metal,
			Total:             total,
			Conformant:        conformant,
			ConformantPercent: percent(conformant, total),
		})
	}

	// Denominator shared by every standard: outcomes whose metal is in
	// metalsChecked.
	var checkedTotal int
	for _, o := range outcomes {
		if metalChecked(o.Declared.Metal, metalsChecked) {
			checkedTotal++
		}
	}

	for _, std := range standardsUsed {
		var conformant int
		for _, o := range outcomes {
			if o.Status == model.StatusConformant && o.HasStandard(std) {
				conformant++
			}
		}
		summary.Standards = append(summary.Standards, model.StandardBreakdown{
			Standard:          std,
			Conformant:        conformant,
			Total:             checkedTotal,
			ConformantPercent: percent(conformant, checkedTotal),
		})
	}

	return summary
}

func metalChecked(metal string, metalsChecked []string) bool {
	for _, m := range metalsChecked {
		if strings.EqualFold(metal, m) {
			return true
		}
	}
	return false
}

// percent rounds n/total to the nearest whole percent; 0 when total is 0.
func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}
