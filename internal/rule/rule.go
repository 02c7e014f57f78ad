package rule

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Metafield coordinates under which the merchant rule blob is stored on the
// shop record. Both evaluators read the same key; neither ever writes it.
const (
	MetafieldNamespace = "volume_discount"
	MetafieldKey       = "rules"
)

// DefaultMinQty is the floor applied to a missing or out-of-domain minimum quantity.
const DefaultMinQty = 2

// DefaultPercentOff is the admin-surface default shown for a shop without a
// stored percent. It never feeds pricing: the evaluators treat an invalid
// percent as an inert rule instead of substituting a default.
const DefaultPercentOff = 10

// Config is the merchant-authored volume discount rule.
type Config struct {
	Products   []string `json:"products"`
	MinQty     int      `json:"minQty"`
	PercentOff float64  `json:"percentOff"`
}

// rawConfig mirrors the loosely typed wire blob. Fields are captured as raw
// JSON so a single malformed field degrades that field, not the whole decode.
type rawConfig struct {
	Products   json.RawMessage `json:"products"`
	MinQty     json.RawMessage `json:"minQty"`
	PercentOff json.RawMessage `json:"percentOff"`
}

// Decode parses a raw configuration blob into a normalized Config. It is a
// total function: ok is false when the blob is empty, is not valid JSON, or
// carries a percent-off that is not a finite number greater than zero. An
// invalid blob makes the rule inert; Decode never panics and never returns an
// error.
func Decode(raw string) (Config, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Config{}, false
	}
	var rc rawConfig
	if err := json.Unmarshal([]byte(trimmed), &rc); err != nil {
		return Config{}, false
	}
	percent, ok := coerceNumber(rc.PercentOff)
	if !ok {
		return Config{}, false
	}
	minQty, _ := coerceNumber(rc.MinQty)
	return Normalize(coerceProducts(rc.Products), minQty, percent)
}

// DecodeWithDefaults parses a stored blob for admin surfacing. Unlike Decode
// it never fails: each missing or malformed field falls back to its default
// so the merchant always sees a well-formed rule.
func DecodeWithDefaults(raw string) Config {
	cfg, ok := Decode(raw)
	if !ok {
		cfg.PercentOff = DefaultPercentOff
	}
	if cfg.MinQty < DefaultMinQty {
		cfg.MinQty = DefaultMinQty
	}
	if cfg.Products == nil {
		cfg.Products = []string{}
	}
	return cfg
}

// Normalize is the single coercion point shared by every rule source (stored
// blob, storefront mount attributes). ok is false when percentOff is not a
// finite number greater than zero. A minQty below the floor, or not finite,
// becomes DefaultMinQty.
func Normalize(products []string, minQty, percentOff float64) (Config, bool) {
	cfg := Config{Products: products}
	if cfg.Products == nil {
		cfg.Products = []string{}
	}
	if math.IsNaN(percentOff) || math.IsInf(percentOff, 0) || percentOff <= 0 {
		return cfg, false
	}
	cfg.PercentOff = percentOff
	if math.IsNaN(minQty) || math.IsInf(minQty, 0) || minQty < DefaultMinQty {
		cfg.MinQty = DefaultMinQty
	} else {
		cfg.MinQty = int(minQty)
	}
	return cfg, true
}

// Matcher is the compiled membership form of a Config. Both evaluators build
// their eligibility decisions and promotional message from it so the two
// surfaces can never drift apart.
type Matcher struct {
	minQty  int
	percent float64
	exact   map[string]struct{}
	tails   map[string]struct{}
}

// Matcher compiles the configured product identifiers into membership sets:
// the identifiers verbatim, and their trailing path segments for storefront
// markup that exposes bare numeric ids.
func (c Config) Matcher() Matcher {
	m := Matcher{
		minQty:  c.MinQty,
		percent: c.PercentOff,
		exact:   make(map[string]struct{}, len(c.Products)),
		tails:   make(map[string]struct{}, len(c.Products)),
	}
	for _, id := range c.Products {
		if id == "" {
			continue
		}
		m.exact[id] = struct{}{}
		if tail := TrailingSegment(id); tail != "" {
			m.tails[tail] = struct{}{}
		}
	}
	return m
}

// Empty reports whether no products are configured, which makes the rule inert.
func (m Matcher) Empty() bool { return len(m.exact) == 0 }

// MinQty returns the normalized minimum quantity.
func (m Matcher) MinQty() int { return m.minQty }

// Percent returns the flat percentage value.
func (m Matcher) Percent() float64 { return m.percent }

// MatchLine is the authoritative eligibility predicate: the line quantity
// meets the minimum and the resolved product identifier is configured
// verbatim. A line with no resolvable identifier never qualifies.
func (m Matcher) MatchLine(quantity int, productID string) bool {
	if quantity < m.minQty || productID == "" {
		return false
	}
	_, ok := m.exact[productID]
	return ok
}

// MatchProductID is the advisory storefront predicate: an identifier matches
// when configured verbatim or when it equals the trailing segment of a
// configured identifier.
func (m Matcher) MatchProductID(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := m.exact[id]; ok {
		return true
	}
	_, ok := m.tails[id]
	return ok
}

// Message renders the promotional text shown at checkout and on product
// cards. Integral percents render without a decimal point.
func (m Matcher) Message() string {
	return fmt.Sprintf("Buy %d, get %s%% off", m.minQty, FormatPercent(m.percent))
}

// FormatPercent renders a percentage value with the shortest representation
// that round-trips, matching the storefront embed's formatting.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// TrailingSegment returns the final path segment of an identifier
// ("gid://shopify/Product/123" yields "123"). Identifiers without a separator
// are returned unchanged.
func TrailingSegment(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// DecodeProducts parses a JSON-encoded identifier list, dropping non-string
// members. Any decode failure yields an empty list, which makes the rule
// inert rather than failing the caller.
func DecodeProducts(raw string) []string {
	return coerceProducts(json.RawMessage(strings.TrimSpace(raw)))
}

func coerceNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func coerceProducts(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
