package core

// CardSummary is a card together with the values derived from its transactions.
type CardSummary struct {
	Card             Card
	Balance          float64 // sum of transaction amounts
	TransactionCount int
}

func (s CardSummary) AvailableCredit() float64 {
	return s.Card.Limit - s.Balance
}

func (s CardSummary) BalanceLabel() string {
	return "Balance: " + FormatCurrency(s.Balance)
}
