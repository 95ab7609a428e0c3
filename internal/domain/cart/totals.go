package cart

import "github.com/shopspring/decimal"

// ComputeTotals sums unit price times quantity over the snapshot and adds the
// caller's flat shipping fee. It has no side effects.
func ComputeTotals(snapshot Snapshot, shippingFee float64) Totals {
	var totals Totals

	totals.ItemCount = len(snapshot)
	totals.Subtotal = decimal.Zero

	for _, item := range snapshot {
		totals.TotalQuantity += item.Quantity
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		totals.Subtotal = totals.Subtotal.Add(line)
	}

	totals.ShippingFee = decimal.NewFromFloat(shippingFee)
	totals.Total = totals.Subtotal.Add(totals.ShippingFee)

	return totals
}
