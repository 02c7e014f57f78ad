package storefront

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/noah-isme/volume-discount/internal/rule"
)

const (
	// MountID identifies the embed element carrying the rule attributes.
	MountID = "volume-discount-embed"
	// BadgeClass marks an appended promotional badge.
	BadgeClass = "volume-discount-widget"
	// ProductAttr is the attribute product elements expose their identifier on.
	ProductAttr = "data-product-id"
)

// Theme markup is not standardized; these are the known card and info-region
// shapes, tried in order. Overrides for a specific theme slot in ahead of the
// defaults without touching the matching algorithm.
var (
	defaultCardSelectors = []string{
		".card-wrapper",
		".product-card",
		".grid-product",
		".product-card-wrapper",
	}
	defaultInfoSelectors = []string{
		".card__information",
		".card__content",
		".product-card__info",
		".grid-product__content",
	}
)

// Matcher annotates eligible product cards in rendered storefront markup.
// Apply is idempotent and safe to re-run after section lifecycle events
// replace parts of the document.
type Matcher struct {
	Cards []string
	Info  []string
}

// NewMatcher returns a matcher with the default selector priority lists.
func NewMatcher() *Matcher {
	return &Matcher{Cards: defaultCardSelectors, Info: defaultInfoSelectors}
}

// Apply scans the document for eligible product elements and appends one
// badge per resolved container. It returns the number of badges appended.
// A missing mount element, an undecodable product list, or an out-of-domain
// percent all make the pass a no-op.
func (m *Matcher) Apply(doc *goquery.Document) int {
	mount := doc.Find("#" + MountID)
	if mount.Length() == 0 {
		return 0
	}

	products := rule.DecodeProducts(mount.AttrOr("data-products", "[]"))
	percent := attrNumber(mount, "data-percent")
	minQty := attrNumber(mount, "data-min-qty")

	cfg, ok := rule.Normalize(products, minQty, percent)
	if !ok {
		return 0
	}
	matcher := cfg.Matcher()
	if matcher.Empty() {
		return 0
	}
	message := matcher.Message()

	// Seen containers for this scan only. Keyed by node identity so a later
	// run against replaced markup re-detects and re-annotates fresh nodes.
	processed := make(map[*html.Node]struct{})
	added := 0

	doc.Find("[" + ProductAttr + "]").Each(func(_ int, sel *goquery.Selection) {
		pid := strings.TrimSpace(sel.AttrOr(ProductAttr, ""))
		if pid == "" || !matcher.MatchProductID(pid) {
			return
		}
		attach := m.attachment(m.container(sel))
		if attach.Length() == 0 {
			return
		}
		node := attach.Get(0)
		if _, seen := processed[node]; seen {
			return
		}
		if attach.Find("."+BadgeClass).Length() > 0 {
			processed[node] = struct{}{}
			return
		}
		node.AppendChild(newBadge(message))
		processed[node] = struct{}{}
		added++
	})
	return added
}

// container resolves the nearest product-card ancestor, trying each known
// selector in priority order and falling back to the element itself.
func (m *Matcher) container(sel *goquery.Selection) *goquery.Selection {
	for _, selector := range m.Cards {
		if card := sel.Closest(selector); card.Length() > 0 {
			return card
		}
	}
	return sel
}

// attachment picks the inner information region when the container has one,
// otherwise the container itself.
func (m *Matcher) attachment(container *goquery.Selection) *goquery.Selection {
	for _, selector := range m.Info {
		if info := container.Find(selector); info.Length() > 0 {
			return info.First()
		}
	}
	return container
}

func newBadge(message string) *html.Node {
	badge := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: BadgeClass}},
	}
	badge.AppendChild(&html.Node{Type: html.TextNode, Data: message})
	return badge
}

// attrNumber parses a numeric data attribute; anything unparseable is NaN so
// rule.Normalize applies the shared defaulting.
func attrNumber(sel *goquery.Selection, name string) float64 {
	raw, ok := sel.Attr(name)
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
