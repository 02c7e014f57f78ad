package storefront

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const cardDoc = `<html><body>
<div id="volume-discount-embed"
     data-products='["gid://shopify/Product/1"]'
     data-percent="20"
     data-min-qty="2"></div>
<div class="card-wrapper">
  <div class="card__information">
    <span data-product-id="1">Widget</span>
  </div>
</div>
<div class="card-wrapper">
  <div class="card__information">
    <span data-product-id="2">Other</span>
  </div>
</div>
</body></html>`

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestApplyAnnotatesEligibleCard(t *testing.T) {
	doc := parseDoc(t, cardDoc)
	added := NewMatcher().Apply(doc)
	if added != 1 {
		t.Fatalf("expected one badge, got %d", added)
	}
	badges := doc.Find(".card__information ." + BadgeClass)
	if badges.Length() != 1 {
		t.Fatalf("expected badge inside info region, found %d", badges.Length())
	}
	if text := badges.First().Text(); text != "Buy 2, get 20% off" {
		t.Fatalf("unexpected badge text %q", text)
	}
}

func TestApplyIdempotent(t *testing.T) {
	doc := parseDoc(t, cardDoc)
	m := NewMatcher()
	if added := m.Apply(doc); added != 1 {
		t.Fatalf("first run: expected one badge, got %d", added)
	}
	if added := m.Apply(doc); added != 0 {
		t.Fatalf("second run should be a no-op, added %d", added)
	}
	if n := doc.Find("." + BadgeClass).Length(); n != 1 {
		t.Fatalf("expected exactly one badge after two runs, found %d", n)
	}
}

func TestApplyVerbatimIdentifier(t *testing.T) {
	markup := strings.Replace(cardDoc, `data-product-id="1"`, `data-product-id="gid://shopify/Product/1"`, 1)
	doc := parseDoc(t, markup)
	if added := NewMatcher().Apply(doc); added != 1 {
		t.Fatalf("expected fully qualified id to match, got %d badges", added)
	}
}

func TestApplyFallbackToElement(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<div id="volume-discount-embed" data-products='["gid://shopify/Product/1"]' data-percent="15"></div>
<span data-product-id="1">Loose widget</span>
</body></html>`)
	if added := NewMatcher().Apply(doc); added != 1 {
		t.Fatalf("expected badge on the element itself, got %d", added)
	}
	if doc.Find("span ."+BadgeClass).Length() != 1 {
		t.Fatal("badge should attach to the matched element when no card ancestor exists")
	}
	if text := doc.Find("." + BadgeClass).First().Text(); text != "Buy 2, get 15% off" {
		t.Fatalf("unexpected badge text %q", text)
	}
}

func TestApplyMissingMount(t *testing.T) {
	doc := parseDoc(t, `<html><body><span data-product-id="1"></span></body></html>`)
	if added := NewMatcher().Apply(doc); added != 0 {
		t.Fatalf("expected no-op without mount element, got %d", added)
	}
}

func TestApplyBadPercent(t *testing.T) {
	for _, percent := range []string{"", "0", "-5", "abc"} {
		markup := strings.Replace(cardDoc, `data-percent="20"`, `data-percent="`+percent+`"`, 1)
		doc := parseDoc(t, markup)
		if added := NewMatcher().Apply(doc); added != 0 {
			t.Fatalf("percent %q should make the pass a no-op, got %d", percent, added)
		}
	}
}

func TestApplyBadProductList(t *testing.T) {
	markup := strings.Replace(cardDoc, `data-products='["gid://shopify/Product/1"]'`, `data-products='{broken'`, 1)
	doc := parseDoc(t, markup)
	if added := NewMatcher().Apply(doc); added != 0 {
		t.Fatalf("undecodable product list should make matching vacuous, got %d", added)
	}
}

func TestApplySharedContainer(t *testing.T) {
	// Two matched elements resolving to the same container get one badge.
	doc := parseDoc(t, `<html><body>
<div id="volume-discount-embed" data-products='["gid://shopify/Product/1","gid://shopify/Product/2"]' data-percent="10"></div>
<div class="product-card">
  <span data-product-id="1"></span>
  <span data-product-id="2"></span>
</div>
</body></html>`)
	if added := NewMatcher().Apply(doc); added != 1 {
		t.Fatalf("expected a single badge for a shared container, got %d", added)
	}
}

func TestApplyExistingBadgePreserved(t *testing.T) {
	markup := strings.Replace(cardDoc,
		`<span data-product-id="1">Widget</span>`,
		`<span data-product-id="1">Widget</span><div class="`+BadgeClass+`">Buy 2, get 20% off</div>`, 1)
	doc := parseDoc(t, markup)
	if added := NewMatcher().Apply(doc); added != 0 {
		t.Fatalf("pre-existing badge must not be duplicated, got %d", added)
	}
}
