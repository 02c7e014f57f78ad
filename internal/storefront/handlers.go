package storefront

import (
	"net/http"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/noah-isme/volume-discount/internal/common"
	"github.com/noah-isme/volume-discount/internal/obs"
)

// maxDocumentBytes bounds the markup accepted for annotation.
const maxDocumentBytes = 2 << 20

// Handler exposes the storefront annotation endpoint. The posted document
// carries its own rule attributes on the mount element, so the handler is
// stateless.
type Handler struct {
	Matcher *Matcher
	Logger  zerolog.Logger
}

// Annotate parses the posted markup, applies the matcher, and returns the
// annotated document. Repeated calls against the same markup are no-ops
// beyond the first.
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid document", nil)
		return
	}

	matcher := h.Matcher
	if matcher == nil {
		matcher = NewMatcher()
	}
	added := matcher.Apply(doc)
	obs.AddBadges(added)

	rendered, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		h.Logger.Error().Err(err).Msg("render annotated document")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to render document", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Badges-Added", strconv.Itoa(added))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rendered))
}
