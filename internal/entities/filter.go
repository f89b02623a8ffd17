package entities

// ListFilter carries the optional query-string filters of list endpoints.
// Empty fields are ignored.
type ListFilter struct {
	Type     string
	Status   string
	Category string
	Search   string
	ParentID *int
	RootOnly bool
}
