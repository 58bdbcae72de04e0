package types

type Side string

// Condition flags a rebalance that could not fully clear the bank balance.
type Condition string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
	SideTypeNone Side = "NONE"

	ConditionNone                Condition = ""
	ConditionDegeneratePortfolio Condition = "DEGENERATE_PORTFOLIO"
	ConditionOverdraftCapped     Condition = "OVERDRAFT_CAPPED"
	ConditionLeverageCapped      Condition = "LEVERAGE_CAPPED"
)
