package shopconfig

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *fakeStore) chi.Router {
	svc := &Service{Store: store, Logger: zerolog.Nop()}
	h := &Handler{Svc: svc, Validate: validator.New()}
	r := chi.NewRouter()
	r.Get("/api/v1/shops/{shop}/discount-config", h.Get)
	r.Put("/api/v1/shops/{shop}/discount-config", h.Put)
	return r
}

func TestGetConfigDefaults(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/shops/demo.myshopify.com/discount-config", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"minQty":2`)
	require.Contains(t, rr.Body.String(), `"percentOff":10`)
	require.Contains(t, rr.Body.String(), `"products":[]`)
}

func TestGetConfigStored(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		"demo.myshopify.com": `{"products":["gid://shopify/Product/1"],"minQty":4,"percentOff":15}`,
	}}
	r := newTestRouter(store)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/shops/demo.myshopify.com/discount-config", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"minQty":4`)
	require.Contains(t, rr.Body.String(), `"percentOff":15`)
}

func TestPutConfigRoundTrip(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store)
	body := `{"products":["gid://shopify/Product/1"],"minQty":3,"percentOff":20}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/v1/shops/demo.myshopify.com/discount-config", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, store.values["demo.myshopify.com"], `"minQty":3`)
}

func TestPutConfigValidation(t *testing.T) {
	cases := []string{
		`{"products":[],"minQty":3,"percentOff":20}`,
		`{"products":["p"],"minQty":1,"percentOff":20}`,
		`{"products":["p"],"minQty":2,"percentOff":0}`,
		`{"products":["p"],"minQty":2,"percentOff":120}`,
		`{"minQty":2,"percentOff":20}`,
	}
	r := newTestRouter(&fakeStore{})
	for _, body := range cases {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/v1/shops/demo.myshopify.com/discount-config", strings.NewReader(body)))
		require.Equalf(t, http.StatusUnprocessableEntity, rr.Code, "body %s", body)
	}
}

func TestPutConfigBadBody(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/v1/shops/demo.myshopify.com/discount-config", strings.NewReader("{nope")))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
