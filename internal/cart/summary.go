package cart

// ShippingPolicy prices shipping for a set of renderable lines.
type ShippingPolicy interface {
	Shipping(subtotal float64, lines []Line) float64
}

// FlatShipping charges the same amount for any non-empty cart.
type FlatShipping float64

func (f FlatShipping) Shipping(subtotal float64, lines []Line) float64 {
	if len(lines) == 0 {
		return 0
	}
	return float64(f)
}

type Line struct {
	Item  LineItem `json:"item"`
	Total float64  `json:"total"`
}

// Summary is the priced view of a cart. Amounts are not rounded; rounding to cents is a
// display concern.
type Summary struct {
	Lines     []Line     `json:"lines"`
	Skipped   []LineItem `json:"-"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
	Shipping  float64    `json:"shipping"`
	Total     float64    `json:"total"`
}

func (s Summary) Empty() bool {
	return len(s.Lines) == 0
}

func (s Summary) CheckoutEnabled() bool {
	return !s.Empty()
}

// Summarize prices c in cart order. Invalid items are reported in Skipped and do not
// contribute to any amount.
func Summarize(c Cart, policy ShippingPolicy) Summary {
	if policy == nil {
		policy = FlatShipping(0)
	}

	sum := Summary{Lines: make([]Line, 0, len(c.Items))}
	for _, it := range c.Items {
		if !it.valid() {
			sum.Skipped = append(sum.Skipped, it)
			continue
		}
		total := it.Total()
		sum.Lines = append(sum.Lines, Line{Item: it, Total: total})
		sum.Subtotal += total
		sum.ItemCount += it.Quantity
	}
	sum.Shipping = policy.Shipping(sum.Subtotal, sum.Lines)
	sum.Total = sum.Subtotal + sum.Shipping
	return sum
}
