package portfolio

import "github.com/shopspring/decimal"

// Position is one valued holding. ProfitLoss stays zero when either the
// current price or the purchase price is unknown.
type Position struct {
	Holding
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	Value        decimal.Decimal  `json:"value"`
	ProfitLoss   decimal.Decimal  `json:"profit_loss"`
	HasPnL       bool             `json:"has_pnl"`
}

// Valuation is the priced view of a whole portfolio.
type Valuation struct {
	Positions       []Position      `json:"positions"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	Currency        string          `json:"currency"`
}

// Value prices every holding with the supplied spot prices. Holdings whose
// coin id has no price keep a nil CurrentPrice and a zero Value; they do
// not block valuation of the rest.
func (p *Portfolio) Value(prices map[string]*float64, currency string) Valuation {
	valuation := Valuation{Currency: currency}
	for _, holding := range p.List() {
		position := Position{Holding: holding}
		if raw, ok := prices[holding.CoinID]; ok && raw != nil {
			price := decimal.NewFromFloat(*raw)
			position.CurrentPrice = &price
			position.Value = holding.Quantity.Mul(price)
			if holding.PurchasePrice != nil {
				cost := holding.Quantity.Mul(*holding.PurchasePrice)
				position.ProfitLoss = position.Value.Sub(cost)
				position.HasPnL = true
				valuation.TotalProfitLoss = valuation.TotalProfitLoss.Add(position.ProfitLoss)
			}
			valuation.TotalValue = valuation.TotalValue.Add(position.Value)
		}
		valuation.Positions = append(valuation.Positions, position)
	}
	return valuation
}
