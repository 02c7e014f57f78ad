package cartlines

import (
	"slices"

	"github.com/noah-isme/volume-discount/internal/rule"
)

// Discount classes the pricing engine can enable for an invocation. This
// evaluator only ever emits product-level discounts.
const (
	DiscountClassProduct  = "PRODUCT"
	DiscountClassOrder    = "ORDER"
	DiscountClassShipping = "SHIPPING"
)

// SelectionStrategyFirst declares the deterministic tie-break applied when
// multiple candidates target overlapping lines. Exactly one candidate is
// produced today; the tag is part of the wire contract.
const SelectionStrategyFirst = "FIRST"

// Line is one entry in the evaluated cart. ProductID may be empty when the
// owning product could not be resolved; such a line can never be targeted.
type Line struct {
	ID        string `json:"id"`
	Quantity  int    `json:"quantity"`
	ProductID string `json:"productId,omitempty"`
}

// Snapshot is the ordered cart state handed to the evaluator.
type Snapshot struct {
	Lines []Line `json:"lines"`
}

// Operation instructs the pricing engine to add a product discount.
type Operation struct {
	ProductDiscountsAdd ProductDiscountsAdd `json:"productDiscountsAdd"`
}

// ProductDiscountsAdd carries the candidate list and its selection strategy.
type ProductDiscountsAdd struct {
	Candidates        []Candidate `json:"candidates"`
	SelectionStrategy string      `json:"selectionStrategy"`
}

// Candidate is one discount proposal: message, targeted lines, flat percentage.
type Candidate struct {
	Message string   `json:"message"`
	Targets []Target `json:"targets"`
	Value   Value    `json:"value"`
}

// Target references a single cart line.
type Target struct {
	CartLine CartLineTarget `json:"cartLine"`
}

// CartLineTarget identifies the targeted line.
type CartLineTarget struct {
	ID string `json:"id"`
}

// Value wraps the discount value union; only flat percentages are emitted.
type Value struct {
	Percentage Percentage `json:"percentage"`
}

// Percentage is a flat percentage discount value.
type Percentage struct {
	Value float64 `json:"value"`
}

var emptyResult = []Operation{}

// Evaluate decides which cart lines qualify for the configured volume
// discount and emits at most one product discount operation. It is pure and
// total: every malformed or out-of-domain input collapses to an empty result,
// never an error, never a partial discount.
func Evaluate(snap Snapshot, rawConfig string, classes []string) []Operation {
	if len(snap.Lines) == 0 {
		return emptyResult
	}
	if !slices.Contains(classes, DiscountClassProduct) {
		return emptyResult
	}
	cfg, ok := rule.Decode(rawConfig)
	if !ok {
		return emptyResult
	}
	matcher := cfg.Matcher()
	if matcher.Empty() {
		return emptyResult
	}

	targets := make([]Target, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		if matcher.MatchLine(line.Quantity, line.ProductID) {
			targets = append(targets, Target{CartLine: CartLineTarget{ID: line.ID}})
		}
	}
	if len(targets) == 0 {
		return emptyResult
	}

	return []Operation{{
		ProductDiscountsAdd: ProductDiscountsAdd{
			Candidates: []Candidate{{
				Message: matcher.Message(),
				Targets: targets,
				Value:   Value{Percentage: Percentage{Value: matcher.Percent()}},
			}},
			SelectionStrategy: SelectionStrategyFirst,
		},
	}}
}
