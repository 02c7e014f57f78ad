package shopconfig

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/volume-discount/internal/common"
	"github.com/noah-isme/volume-discount/internal/rule"
)

// Handler exposes the merchant-facing rule configuration endpoints consumed
// by the admin UI.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type configPayload struct {
	Products   []string `json:"products" validate:"required,min=1,dive,required"`
	MinQty     int      `json:"minQty" validate:"gte=2"`
	PercentOff float64  `json:"percentOff" validate:"gt=0,lte=100"`
}

// Get returns the stored rule for the shop, surfaced with admin defaults so
// a partial or missing blob still renders as a well-formed form state.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shop := shopParam(r)
	if shop == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	raw, _, err := h.Svc.Raw(r.Context(), shop)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load configuration", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rule.DecodeWithDefaults(raw)})
}

// Put validates and stores a new rule for the shop.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	shop := shopParam(r)
	if shop == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var payload configPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid configuration", validationDetails(err))
			return
		}
	}
	cfg := rule.Config{Products: payload.Products, MinQty: payload.MinQty, PercentOff: payload.PercentOff}
	if err := h.Svc.Save(r.Context(), shop, cfg); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save configuration", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}

func shopParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "shop"))
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
