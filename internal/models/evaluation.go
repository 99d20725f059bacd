package models

// DefaultCurrency is used when a request carries no currency code
const DefaultCurrency = "USD"

// EvaluationRequest is the body of POST /evaluate/idea
type EvaluationRequest struct {
	Idea     string `json:"idea" binding:"notblank"`
	Plan     string `json:"plan" binding:"notblank"`
	Roadmap  string `json:"roadmap" binding:"notblank"`
	Currency string `json:"currency,omitempty"`
}

// Valuation pairs the derived amount with a currency code
type Valuation struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

// SubScores are the four independent ratings reported next to the overall score
type SubScores struct {
	Originality     int `json:"originality"`
	Feasibility     int `json:"feasibility"`
	MarketPotential int `json:"market_potential"`
	TechnicalMerit  int `json:"technical_merit"`
}

// EvaluationResponse is the 200 body of POST /evaluate/idea
type EvaluationResponse struct {
	Grade           string    `json:"grade"`
	Score           int       `json:"score"`
	Valuation       Valuation `json:"valuation"`
	Evaluation      string    `json:"evaluation"`
	Scores          SubScores `json:"scores"`
	Recommendations []string  `json:"recommendations"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
