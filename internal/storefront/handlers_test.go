package storefront_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volume-discount/internal/storefront"
)

const annotateDoc = `<html><body>
<div id="volume-discount-embed" data-products='["gid://shopify/Product/1"]' data-percent="20" data-min-qty="2"></div>
<div class="card-wrapper"><div class="card__information"><span data-product-id="1">Widget</span></div></div>
</body></html>`

func TestAnnotateHandler(t *testing.T) {
	h := &storefront.Handler{Logger: zerolog.Nop()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/storefront/annotate", strings.NewReader(annotateDoc))
	rr := httptest.NewRecorder()
	h.Annotate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "1", rr.Header().Get("X-Badges-Added"))
	require.Contains(t, rr.Body.String(), storefront.BadgeClass)
	require.Contains(t, rr.Body.String(), "Buy 2, get 20% off")
}

func TestAnnotateHandlerNoMount(t *testing.T) {
	h := &storefront.Handler{Logger: zerolog.Nop()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/storefront/annotate", strings.NewReader("<html><body><p>plain</p></body></html>"))
	rr := httptest.NewRecorder()
	h.Annotate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "0", rr.Header().Get("X-Badges-Added"))
	require.NotContains(t, rr.Body.String(), storefront.BadgeClass)
}
