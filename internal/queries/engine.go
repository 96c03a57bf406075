package queries

import (
	"context"
	"fmt"
	"time"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/common/genai"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/common/observability"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

// Config carries the engine's tunables.
type Config struct {
	MaxFlattenDepth int
}

type routineFunc func(ctx context.Context, doc *report.Document, query string) *Envelope

type entry struct {
	queryType string
	run       routineFunc
}

// Engine owns the closed registry of extraction routines. Dispatch is the
// only way in; routines never return Go errors, only envelopes.
type Engine struct {
	config   *Config
	ai       genai.Completer
	obs      *observability.Observability
	logger   logger.Logger
	registry map[string]entry
}

// NewEngine builds the engine and registers every routine. The handler
// vocabulary here and in the recognizer must stay in lockstep. obs may be nil.
func NewEngine(config *Config, ai genai.Completer, obs *observability.Observability, log logger.Logger) *Engine {
	if config == nil {
		config = &Config{}
	}
	if config.MaxFlattenDepth <= 0 {
		config.MaxFlattenDepth = report.DefaultMaxDepth
	}

	e := &Engine{
		config: config,
		ai:     ai,
		obs:    obs,
		logger: log.With(map[string]interface{}{
			"component": "query-engine",
		}),
	}

	e.registry = map[string]entry{
		intent.HandlerSumLineTotals:     {intent.TypeSumLineTotal, e.sumLineTotals},
		intent.HandlerItemLineTotals:    {intent.TypeItemLineTotals, e.getItemLineTotals},
		intent.HandlerOrderAttributes:   {intent.TypeOrderAttributes, e.getOrderAttributes},
		intent.HandlerStoreDetails:      {intent.TypeStoreDetails, e.getStoreDetails},
		intent.HandlerMTLStatus:         {intent.TypeMTLStatus, e.getMTLStatus},
		intent.HandlerInternalStatus:    {intent.TypeInternalStatus, e.getInternalStatus},
		intent.HandlerInternalFailed:    {intent.TypeInternalFailedReason, e.getInternalFailedReason},
		intent.HandlerOrderTotalsByType: {intent.TypeOrderTotalByTxnType, e.getOrderTotalByTransactionType},
		intent.HandlerPaymentDetails:    {intent.TypePaymentDetails, e.getPaymentDetails},
		intent.HandlerFallback:          {QueryTypeFallbackAI, e.fallbackQuery},
	}

	return e
}

// Dispatch runs the routine registered under handlerName. Unknown handlers
// and panicking routines both come back as ERROR envelopes.
func (e *Engine) Dispatch(ctx context.Context, handlerName, query string, doc *report.Document) *Envelope {
	start := time.Now()
	env := e.dispatch(ctx, handlerName, query, doc)

	if e.obs != nil {
		status := "success"
		if env.IsError() {
			status = "error"
		}
		e.obs.RecordQueryProcessed(ctx, env.QueryType, status)
		e.obs.RecordQueryDuration(ctx, time.Since(start), env.QueryType)
	}

	return env
}

func (e *Engine) dispatch(ctx context.Context, handlerName, query string, doc *report.Document) (env *Envelope) {
	reg, ok := e.registry[handlerName]
	if !ok {
		e.logger.Warn("dispatch of unregistered handler", map[string]interface{}{
			"handler": handlerName,
		})
		return ErrorEnvelope(cerrors.NewUnknownHandlerError(handlerName))
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction routine panicked", map[string]interface{}{
				"handler": handlerName,
				"panic":   fmt.Sprintf("%v", r),
			})
			env = ErrorEnvelope(cerrors.NewHandlerPanicError(handlerName, r))
		}
	}()

	env = reg.run(ctx, doc, query)
	return env
}

// flatten applies the configured depth bound to the whole document.
func (e *Engine) flatten(doc *report.Document) (map[string]interface{}, error) {
	return report.FlattenWithDepth(doc.Root(), e.config.MaxFlattenDepth)
}

// flatString reads a flattened leaf as a string, with the serialization
// sentinel for absent, null or empty values.
func flatString(flat map[string]interface{}, key string) string {
	v, ok := flat[key]
	if !ok || v == nil {
		return "N/A"
	}
	if s := report.Stringify(v); s != "" {
		return s
	}
	return "N/A"
}

// eventID falls back to the transaction's list position when the document
// carries no eventId.
func eventID(txn map[string]interface{}, index int) string {
	if s, ok := report.StringAt(txn, "eventId"); ok {
		return s
	}
	return fmt.Sprintf("index-%d", index)
}
