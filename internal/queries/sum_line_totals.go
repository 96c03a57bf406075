package queries

import (
	"context"
	"strings"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

// lineTotalSuffix marks the leaf holding a line's final total. Historical and
// aggregate variants are excluded so amendments are not double counted.
const lineTotalSuffix = ".lineOverallTotals.lineTotal"

var lineTotalExclusions = []string{"oldLineTotal", "Affected", "changeOrderGrandTotalSet"}

func (e *Engine) sumLineTotals(ctx context.Context, doc *report.Document, query string) *Envelope {
	flat, err := e.flatten(doc)
	if err != nil {
		return ErrorEnvelope(cerrors.NewDepthExceededError(e.config.MaxFlattenDepth))
	}

	var sum float64
	count := 0
	keysUsed := []string{}

	for _, key := range report.SortedKeys(flat) {
		if !strings.HasSuffix(key, lineTotalSuffix) || excludedLineTotal(key) {
			continue
		}
		if n, ok := report.AsNumber(flat[key]); ok {
			sum += n
			count++
			keysUsed = append(keysUsed, key)
		}
	}

	return &Envelope{
		QueryType: intent.TypeSumLineTotal,
		Results: SumLineTotalsResult{
			Sum:      sum,
			Count:    count,
			KeysUsed: keysUsed,
		},
		Metadata: map[string]interface{}{
			"searchPaths":    keysUsed,
			"totalProcessed": len(flat),
		},
	}
}

func excludedLineTotal(key string) bool {
	for _, fragment := range lineTotalExclusions {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}
