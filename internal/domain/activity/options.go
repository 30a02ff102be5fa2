package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	Filename *string
	Action   *Action
	Limit    int
	Offset   int
}
