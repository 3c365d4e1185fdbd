package identity

import (
	"encoding/json"
	"sort"
	"strings"
)

// Set is a normalized string set used for product and variant identifiers.
// It marshals to a sorted JSON array so persisted carts stay stable.
type Set map[string]struct{}

// NewSet creates a set from the given values, skipping empty strings.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts a value into the set. Empty strings are ignored.
func (s Set) Add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

// Contains reports whether the set holds the given value.
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Intersects reports whether the two sets share at least one value.
func (s Set) Intersects(other Set) bool {
	// Iterate the smaller set.
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for v := range small {
		if _, ok := large[v]; ok {
			return true
		}
	}
	return false
}

// Values returns the set contents as a sorted slice.
func (s Set) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes the set from an array of strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

// ProductRef carries the raw identifiers upstream data exposes for one
// product. Any subset of the fields may be populated; the same product is
// routinely seen under a catalog id on one surface and a retailer-scoped id
// or slug on another.
type ProductRef struct {
	CatalogID   string `json:"catalogId,omitempty"`
	CanonicalID string `json:"canonicalId,omitempty"`
	RetailerID  string `json:"retailerId,omitempty"`
	Slug        string `json:"slug,omitempty"`
	ProductSlug string `json:"productSlug,omitempty"`
}

// ProductKey is the normalized identity of a product: every known id in one
// set, every known slug (lowercased) in another. Two keys denote the same
// product when either set intersects.
type ProductKey struct {
	IDs   Set `json:"ids"`
	Slugs Set `json:"slugs"`
}

// ResolveProductKeys normalizes a raw product reference into a ProductKey.
func ResolveProductKeys(ref ProductRef) ProductKey {
	key := ProductKey{
		IDs:   NewSet(ref.CatalogID, ref.CanonicalID, ref.RetailerID),
		Slugs: NewSet(),
	}
	key.Slugs.Add(strings.ToLower(ref.Slug))
	key.Slugs.Add(strings.ToLower(ref.ProductSlug))
	return key
}

// Merge returns the union of two product keys. Used to widen a caller's
// key with every id shape the catalog knows for the same product.
func (k ProductKey) Merge(other ProductKey) ProductKey {
	merged := ProductKey{IDs: NewSet(), Slugs: NewSet()}
	for _, set := range []Set{k.IDs, other.IDs} {
		for v := range set {
			merged.IDs.Add(v)
		}
	}
	for _, set := range []Set{k.Slugs, other.Slugs} {
		for v := range set {
			merged.Slugs.Add(v)
		}
	}
	return merged
}

// MatchesProduct reports whether two product keys resolve to the same
// product: a non-empty id intersection or a non-empty slug intersection.
func MatchesProduct(a, b ProductKey) bool {
	return a.IDs.Intersects(b.IDs) || a.Slugs.Intersects(b.Slugs)
}

// VariantRef carries the raw identifiers for a selected variant.
type VariantRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// VariantDescriptor is the normalized identity of a selected variant.
// IsEmpty is itself semantic: it means no variant was chosen, and an empty
// descriptor must never match a concrete one.
type VariantDescriptor struct {
	IDs     Set  `json:"ids"`
	Names   Set  `json:"names"`
	IsEmpty bool `json:"isEmpty"`
}

// ResolveVariant normalizes a raw variant reference. Labels are lowercased
// so "Large" and "large" compare equal.
func ResolveVariant(ref VariantRef) VariantDescriptor {
	d := VariantDescriptor{
		IDs:   NewSet(ref.ID),
		Names: NewSet(strings.ToLower(strings.TrimSpace(ref.Name))),
	}
	d.IsEmpty = len(d.IDs) == 0 && len(d.Names) == 0
	return d
}

// MatchesVariant reports whether a candidate variant matches the target.
// An empty target matches only an empty candidate; otherwise the id sets or
// the name sets must intersect.
func MatchesVariant(target, candidate VariantDescriptor) bool {
	if target.IsEmpty {
		return candidate.IsEmpty
	}
	if candidate.IsEmpty {
		return false
	}
	return target.IDs.Intersects(candidate.IDs) || target.Names.Intersects(candidate.Names)
}
