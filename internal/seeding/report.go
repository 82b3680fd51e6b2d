package seeding

// Report summarizes what a run wrote.
type Report struct {
	RunID             string `json:"run_id"`
	OrdersRequested   int    `json:"orders_requested"`
	OrdersPersisted   int    `json:"orders_persisted"`
	ReceivedAvailable int    `json:"received_available"`
	ReviewsRequested  int    `json:"reviews_requested"`
	ReviewsPersisted  int    `json:"reviews_persisted"`
	Shortfall         int    `json:"shortfall"`

	OrderIDs  []string `json:"-"`
	ReviewIDs []string `json:"-"`
}

// Fields flattens the report for structured logging.
func (r *Report) Fields() map[string]any {
	return map[string]any{
		"orders_requested":   r.OrdersRequested,
		"orders_persisted":   r.OrdersPersisted,
		"received_available": r.ReceivedAvailable,
		"reviews_requested":  r.ReviewsRequested,
		"reviews_persisted":  r.ReviewsPersisted,
		"shortfall":          r.Shortfall,
	}
}
