package domain

import "github.com/shopspring/decimal"

// DepositPolicy decides whether the security deposit offsets settlement dues.
type DepositPolicy string

const (
	// DepositPolicyHold keeps the deposit out of the settlement math.
	DepositPolicyHold DepositPolicy = "hold"
	// DepositPolicyOffset applies the deposit against the total due.
	DepositPolicyOffset DepositPolicy = "offset"
)

func (p DepositPolicy) Valid() bool {
	return p == DepositPolicyHold || p == DepositPolicyOffset
}

// SettlementSettings are the operator-tunable knobs of return settlement.
type SettlementSettings struct {
	LateFeeEnabled    bool            `json:"late_fee_enabled"`
	LateFeePerDay     decimal.Decimal `json:"late_fee_per_day"`
	TaxPercentDefault decimal.Decimal `json:"tax_percent_default"`
	DepositPolicy     DepositPolicy   `json:"deposit_policy"`
}
