package report

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

// Summary logs what is left unreconciled: order refunds without a statement
// refund, statement lines without an order, then orders without a charge.
func Summary(logger *slog.Logger, result domain.ReconciliationResult) {
	if len(result.Refunds.UnmatchedOrderRefunds) > 0 {
		logger.Info("Unmapped Amazon Refunds:")
		for _, order := range result.Refunds.UnmatchedOrderRefunds {
			logger.Info(fmt.Sprintf("%s  %s  %s",
				order.OrderID,
				order.Refund.Decimal.StringFixed(2),
				orderDate(order),
			))
		}
	}

	if len(result.Payments.UnmatchedTxns) > 0 {
		logger.Info("Unmatched Bank Statement Transactions:")
		for _, txn := range result.Payments.UnmatchedTxns {
			logger.Info(txn.Description)
		}
	}

	if len(result.Payments.UnmatchedOrders) > 0 {
		orders := make([]domain.Order, len(result.Payments.UnmatchedOrders))
		copy(orders, result.Payments.UnmatchedOrders)
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].Date.Before(orders[j].Date)
		})

		logger.Info("Unmatched Amazon Orders:")
		for _, order := range orders {
			logger.Info(fmt.Sprintf("%s  %s  %s",
				order.OrderID,
				order.Date.Format(dateFormat),
				order.Total.Decimal.StringFixed(2),
			))
		}
	}

	if result.FullyReconciled() {
		logger.Info("All Transactions Reconciled")
	}
}

func orderDate(order domain.Order) string {
	if !order.Dated() {
		return "-"
	}
	return order.Date.Format(dateFormat)
}
