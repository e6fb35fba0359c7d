package discovery

import (
	"fmt"

	x402 "github.com/coinbase/x402-discovery"
	"github.com/coinbase/x402-discovery/types"
)

// Result is the outcome of a translation: either a document built from the
// legacy fields, or the reason the legacy body could not be translated.
type Result struct {
	Document *types.PaymentRequired
	Legacy   types.LegacyPaymentRequired
	Reason   error
}

// Translated wraps a successfully built document and the fields it came from
func Translated(doc *types.PaymentRequired, legacy types.LegacyPaymentRequired) Result {
	return Result{Document: doc, Legacy: legacy}
}

// NotTranslatable wraps the reason a body was left untouched.
// The reason always matches x402.ErrNotTranslatable under errors.Is.
func NotTranslatable(reason error) Result {
	return Result{Reason: fmt.Errorf("%w: %w", x402.ErrNotTranslatable, reason)}
}

// OK reports whether the result carries a document
func (r Result) OK() bool {
	return r.Document != nil && r.Reason == nil
}
