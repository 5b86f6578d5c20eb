package item

// ListOptions provides filtering options for listing items.
type ListOptions struct {
	Source   string
	Category string
	ItemType string
	Limit    int
	Offset   int
}
