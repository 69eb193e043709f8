package cart

// LineItem is one product entry in the cart. Name, image and price are copied from the
// catalog when the product is first added and are not refreshed afterwards.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

func (li LineItem) Total() float64 {
	return li.Price * float64(li.Quantity)
}

func (li LineItem) valid() bool {
	return li.ID != "" && li.Name != "" && li.Image != "" && li.Price >= 0 && li.Quantity >= 1
}

// MaxQuantity caps the units of a single line.
const MaxQuantity = 999

// Cart is an ordered list of line items, unique by ID.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) index(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) Find(id string) (LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Product is what the store needs from a catalog entry to add it to the cart.
type Product struct {
	ID    string
	Name  string
	Price float64
	Image string
}

func (p Product) valid() bool {
	return p.ID != "" && p.Name != "" && p.Image != "" && p.Price >= 0
}

// Badge is the header cart indicator.
type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

func BadgeFor(c Cart) Badge {
	n := c.Count()
	return Badge{Count: n, Visible: n > 0}
}
