package library

// Status is the lifecycle state of an episode.
type Status string

const (
	StatusPending        Status = "pending"
	StatusDownloading    Status = "downloading"
	StatusOpenlistExists Status = "openlist_exists"
	StatusMismatched     Status = "mismatched"
	StatusCompleted      Status = "completed"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusPending, StatusDownloading, StatusOpenlistExists, StatusMismatched, StatusCompleted,
}

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
// pending and mismatched are assigned by scraping, not by transition.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusDownloading, StatusOpenlistExists},
	StatusDownloading:    {StatusOpenlistExists, StatusPending},
	StatusMismatched:     {StatusPending}, // operator resubscribe
	StatusOpenlistExists: {StatusCompleted},
	StatusCompleted:      {}, // terminal
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := validTransitions[st]
	return st, ok
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsPresent reports whether the episode file is known to exist remotely.
func (s Status) IsPresent() bool {
	return s == StatusOpenlistExists || s == StatusCompleted
}

// IsTerminal returns true if this status has no valid outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
