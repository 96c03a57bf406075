package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"report-query-engine/internal/report"
)

func TestSumLineTotals(t *testing.T) {
	doc := report.FromMap(map[string]interface{}{
		"order": map[string]interface{}{
			"orderLineDetailSet": []interface{}{
				map[string]interface{}{
					"lineOverallTotals": map[string]interface{}{"lineTotal": 10.0, "oldLineTotal": 99.0},
				},
				map[string]interface{}{
					"lineOverallTotals": map[string]interface{}{"lineTotal": "20"},
				},
			},
			"linesAffected": map[string]interface{}{
				"lineOverallTotals": map[string]interface{}{"lineTotal": 7.0},
			},
			"changeOrderGrandTotalSet": map[string]interface{}{
				"lineOverallTotals": map[string]interface{}{"lineTotal": 5.0},
			},
		},
	})

	env := newTestEngine(nil).Dispatch(context.Background(), "sumLineTotals", "sum the line totals", doc)

	result, ok := env.Results.(SumLineTotalsResult)
	assert.True(t, ok)
	assert.Equal(t, 30.0, result.Sum)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []string{
		"order.orderLineDetailSet[0].lineOverallTotals.lineTotal",
		"order.orderLineDetailSet[1].lineOverallTotals.lineTotal",
	}, result.KeysUsed)

	assert.Equal(t, result.KeysUsed, env.Metadata["searchPaths"])
	assert.Greater(t, env.Metadata["totalProcessed"].(int), 2)
}

func TestSumLineTotals_NonNumericLeavesSkipped(t *testing.T) {
	doc := report.FromMap(map[string]interface{}{
		"a": map[string]interface{}{
			"lineOverallTotals": map[string]interface{}{"lineTotal": "pending"},
		},
		"b": map[string]interface{}{
			"lineOverallTotals": map[string]interface{}{"lineTotal": 12.5},
		},
	})

	env := newTestEngine(nil).Dispatch(context.Background(), "sumLineTotals", "", doc)

	result := env.Results.(SumLineTotalsResult)
	assert.Equal(t, 12.5, result.Sum)
	assert.Equal(t, 1, result.Count)
}

func TestSumLineTotals_EmptyDocument(t *testing.T) {
	env := newTestEngine(nil).Dispatch(context.Background(), "sumLineTotals", "", report.FromMap(map[string]interface{}{}))

	result := env.Results.(SumLineTotalsResult)
	assert.Equal(t, 0.0, result.Sum)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.KeysUsed)
	assert.Equal(t, 0, env.Metadata["totalProcessed"])
}

func TestSumLineTotals_Idempotent(t *testing.T) {
	doc := report.FromMap(map[string]interface{}{
		"x": map[string]interface{}{
			"lineOverallTotals": map[string]interface{}{"lineTotal": 3.0},
		},
	})
	e := newTestEngine(nil)

	first := e.Dispatch(context.Background(), "sumLineTotals", "", doc)
	second := e.Dispatch(context.Background(), "sumLineTotals", "", doc)

	assert.Equal(t, first.Results, second.Results)
}
