package cart

import "github.com/dmitrymomot/storefront/pkg/apiclient"

// Item is one cart line as reported by the backend.
type Item = apiclient.CartItem

// Snapshot is the cart as last reported by the backend. Items is never nil.
type Snapshot struct {
	Items []Item
	Total float64
}

// ItemCount sums quantities across all lines.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) clone() Snapshot {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return Snapshot{Items: items, Total: s.Total}
}

func emptySnapshot() Snapshot {
	return Snapshot{Items: []Item{}}
}

func fromAPI(in *apiclient.CartSnapshot) Snapshot {
	if in == nil {
		return emptySnapshot()
	}
	return Snapshot{Items: in.Items, Total: in.Total}.clone()
}
