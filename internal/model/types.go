package model

// Query names one of the fixed provider queries a screen displays.
// It is the key type of the item caches.
type Query string

const (
	QueryHomework Query = "homework"
	QuerySupplies Query = "supplies"
)

// Queries lists every fixed query in display order.
func Queries() []Query {
	return []Query{QueryHomework, QuerySupplies}
}

// Categories maps each fixed query to the provider-side category value
// it filters on.
type Categories map[Query]string

// DefaultCategories returns the category values of the reference data source.
func DefaultCategories() Categories {
	return Categories{
		QueryHomework: "課題",
		QuerySupplies: "持ち物",
	}
}
