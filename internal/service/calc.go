package service

import (
	"github.com/shopspring/decimal"

	"pharmaproc/internal/model"
)

var hundred = decimal.NewFromInt(100)

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// lineTotal is quantity * rate.
func lineTotal(quantity, rate float64) decimal.Decimal {
	return dec(quantity).Mul(dec(rate))
}

// withTax returns subtotal + subtotal*tax/100, or subtotal when tax is unset.
func withTax(subtotal decimal.Decimal, tax *float64) decimal.Decimal {
	if tax == nil {
		return subtotal
	}
	return subtotal.Add(subtotal.Mul(dec(*tax)).Div(hundred))
}

// qcTotals accumulates the report aggregates while pricing each line at the
// rate of the order item it inspects.
type qcTotals struct {
	acceptedQty   decimal.Decimal
	rejectedQty   decimal.Decimal
	acceptedValue decimal.Decimal
	rejectedValue decimal.Decimal
}

func (t *qcTotals) add(item *model.QCReportItem, rate float64) {
	accepted := lineTotal(item.AcceptedQty, rate)
	rejected := lineTotal(item.RejectedQty, rate)
	item.AcceptedValue = toFloat(accepted)
	item.RejectedValue = toFloat(rejected)

	t.acceptedQty = t.acceptedQty.Add(dec(item.AcceptedQty))
	t.rejectedQty = t.rejectedQty.Add(dec(item.RejectedQty))
	t.acceptedValue = t.acceptedValue.Add(accepted)
	t.rejectedValue = t.rejectedValue.Add(rejected)
}

func (t *qcTotals) applyTo(report *model.QCReport) {
	report.TotalAcceptedQty = toFloat(t.acceptedQty)
	report.TotalRejectedQty = toFloat(t.rejectedQty)
	report.TotalAcceptedValue = toFloat(t.acceptedValue)
	report.TotalRejectedValue = toFloat(t.rejectedValue)
}

// settledStatus is the order status implied by a QC outcome.
func (t *qcTotals) settledStatus() model.POStatus {
	if t.rejectedQty.IsPositive() {
		return model.POStatusPartiallyRejected
	}
	return model.POStatusCompleted
}
