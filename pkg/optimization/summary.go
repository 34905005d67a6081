// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a payoff target search.
type Summary struct {
	TargetPayments   int      `json:"targetPayments"`
	Mode             string   `json:"mode"`
	Extra            float64  `json:"extra"`
	OriginalPayments int      `json:"originalPayments"`
	Payments         int      `json:"payments"`
	InterestSaved    float64  `json:"interestSaved"`
	PayoffDate       string   `json:"payoffDate,omitempty"`
	Iterations       int      `json:"iterations"`
	Converged        bool     `json:"converged"`
	Notes            []string `json:"notes,omitempty"`
}
