package cartlines

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/volume-discount/internal/common"
	"github.com/noah-isme/volume-discount/internal/obs"
)

// ConfigSource resolves the raw rule blob for a shop. A fetch failure or a
// missing blob both degrade to "no configuration".
type ConfigSource interface {
	Raw(ctx context.Context, shopDomain string) (string, bool, error)
}

// Handler exposes the cart evaluation endpoint.
type Handler struct {
	Configs ConfigSource
	Logger  zerolog.Logger
}

type evaluateRequest struct {
	ShopDomain      string   `json:"shopDomain"`
	Cart            Snapshot `json:"cart"`
	DiscountClasses []string `json:"discountClasses"`
}

type evaluateResponse struct {
	Operations []Operation `json:"operations"`
}

// Evaluate resolves the shop's rule blob and runs the pure evaluator against
// the posted cart snapshot.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var payload evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	shop := strings.TrimSpace(payload.ShopDomain)
	if shop == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shopDomain is required", nil)
		return
	}

	raw := ""
	if h.Configs != nil {
		value, ok, err := h.Configs.Raw(r.Context(), shop)
		if err != nil {
			// Transport failure is treated as "no configuration"; the rule
			// goes inert rather than failing the pricing recompute.
			h.Logger.Error().Err(err).Str("shop", shop).Msg("fetch discount config")
		} else if ok {
			raw = value
		}
	}

	ops := Evaluate(payload.Cart, raw, payload.DiscountClasses)
	if len(ops) > 0 {
		obs.IncEvaluation("discount")
		for _, op := range ops {
			for _, candidate := range op.ProductDiscountsAdd.Candidates {
				obs.AddDiscountTargets(len(candidate.Targets))
			}
		}
	} else {
		obs.IncEvaluation("empty")
	}
	common.JSON(w, http.StatusOK, evaluateResponse{Operations: ops})
}
