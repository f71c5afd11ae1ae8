package order

// Stats is the back-office dashboard summary.
type Stats struct {
	Revenue          int64 `json:"revenue"`
	Total            int   `json:"totalOrders"`
	NewOrders        int   `json:"newOrders"`
	InProgress       int   `json:"inProgress"`
	Delivered        int   `json:"delivered"`
	Cancelled        int   `json:"cancelled"`
	AwaitingUTRCheck int   `json:"awaitingUtrCheck"`
}

// Summarize counts revenue over every order that is not cancelled.
func Summarize(orders []Order) Stats {
	var s Stats
	for _, o := range orders {
		s.Total++
		if o.Status != StatusCancelled {
			s.Revenue += o.Amount
		}
		switch o.Status {
		case StatusPending:
			s.NewOrders++
		case StatusProcessing, StatusShipped:
			s.InProgress++
		case StatusDelivered:
			s.Delivered++
		case StatusCancelled:
			s.Cancelled++
		}
		if o.Verification == VerificationPending && !o.IsPaid && !o.Status.IsTerminal() {
			s.AwaitingUTRCheck++
		}
	}
	return s
}
