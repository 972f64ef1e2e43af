package activity

// DefaultLimit bounds result sets when the caller does not ask for a
// specific page size.
const DefaultLimit = 50

// ListOptions filters and pages audit entry queries.
type ListOptions struct {
	ProjectID  string
	TaskID     *string
	EntityType *EntityType
	Action     *Action
	ActorID    *string
	Limit      int
	Offset     int
}

// normalized returns a copy with paging defaults applied.
func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
