package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectedOptions is the immutable configuration snapshot captured when an
// item enters the cart. SelectedQuantity is the service quantity (how many
// engagements), distinct from Item.Quantity (the order multiplier).
type SelectedOptions struct {
	Speed               string `json:"speed,omitempty"`
	Target              string `json:"target,omitempty"`
	URL                 string `json:"url,omitempty"`
	SelectedQuantity    int64  `json:"selected_quantity,omitempty"`
	BaseServiceQuantity int64  `json:"base_service_quantity,omitempty"`
}

// Item is one cart line. UnitPrice is the already-discounted price for one
// multiplier unit, computed by the pricing engine at add time; the cart
// never re-derives it.
type Item struct {
	ID              string          `json:"id"`
	OfferingSlug    string          `json:"offering_slug"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SelectedOptions SelectedOptions `json:"selected_options"`
	AddedAt         time.Time       `json:"added_at"`
}

// Total is the line total for the item.
func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot is the persisted cart state. Total always equals the sum of the
// line totals; it is recomputed on every mutation and trusted on hydrate.
type Snapshot struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// OpKind names a mutating cart operation.
type OpKind string

const (
	OpAdd            OpKind = "add_item"
	OpRemove         OpKind = "remove_item"
	OpUpdateQuantity OpKind = "update_quantity"
	OpClear          OpKind = "clear"
)

// OpKey identifies one in-flight operation. Structured rather than a
// concatenated string so per-item keys cannot collide or need parsing.
type OpKey struct {
	Kind     OpKind
	TargetID string
}

func (k OpKey) String() string {
	if k.TargetID == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.TargetID
}

// intent is the closed set of reducer transitions. Keeping it sealed gives
// the reducer switch exhaustiveness instead of a string-keyed action bus.
type intent interface {
	isIntent()
}

type addIntent struct {
	item Item
}

type removeIntent struct {
	itemID string
}

type updateQuantityIntent struct {
	itemID   string
	quantity int
}

type clearIntent struct{}

type hydrateIntent struct {
	snapshot Snapshot
}

func (addIntent) isIntent()            {}
func (removeIntent) isIntent()         {}
func (updateQuantityIntent) isIntent() {}
func (clearIntent) isIntent()          {}
func (hydrateIntent) isIntent()        {}

// reduce applies one transition to a snapshot. Pure and synchronous; the
// store owns locking, persistence, and loading flags around it.
func reduce(current Snapshot, in intent) Snapshot {
	switch v := in.(type) {
	case addIntent:
		items := make([]Item, 0, len(current.Items)+1)
		items = append(items, current.Items...)
		items = append(items, v.item)
		return Snapshot{Items: items, Total: computeTotal(items)}

	case removeIntent:
		items := make([]Item, 0, len(current.Items))
		for _, item := range current.Items {
			if item.ID != v.itemID {
				items = append(items, item)
			}
		}
		return Snapshot{Items: items, Total: computeTotal(items)}

	case updateQuantityIntent:
		items := make([]Item, len(current.Items))
		for i, item := range current.Items {
			if item.ID == v.itemID {
				item.Quantity = v.quantity
			}
			items[i] = item
		}
		return Snapshot{Items: items, Total: computeTotal(items)}

	case clearIntent:
		return Snapshot{Items: []Item{}, Total: decimal.Zero}

	case hydrateIntent:
		// Persisted totals were produced by these same transitions, so the
		// snapshot is replaced wholesale without a per-field recompute.
		return v.snapshot

	default:
		return current
	}
}

func computeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total
}
