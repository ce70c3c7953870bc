// Package export renders orders as plain-text receipts and CSV for the
// accounting screens.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/database"
)

// Receipt renders a single order as a printable text receipt. Line items use
// the name and price snapshotted at order time, so the receipt stays stable
// even after the menu changes.
func Receipt(order database.GetOrderWithTableRow, items []database.OrderItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ORDER RECEIPT\n")
	fmt.Fprintf(&b, "=============\n")
	fmt.Fprintf(&b, "Order:  %s\n", order.ID)
	fmt.Fprintf(&b, "Table:  %d\n", order.TableNumber)
	fmt.Fprintf(&b, "Date:   %s\n", order.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "-------------\n")

	for _, item := range items {
		unit := money(item.UnitPrice)
		line := lineTotal(item.UnitPrice, item.Quantity)
		fmt.Fprintf(&b, "%2d x %-24s @ %8s  %10s\n", item.Quantity, item.DishName, unit, line)
	}

	fmt.Fprintf(&b, "-------------\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", money(order.Total))

	return b.String()
}

// OrdersCSV writes every order as one CSV row with its dish list flattened
// into the last column.
func OrdersCSV(w io.Writer, orders []database.ListOrdersForExportRow, items []database.OrderItem) error {
	byOrder := make(map[uuid.UUID][]database.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Table", "Server", "Total", "Status", "Date", "Dishes"}); err != nil {
		return err
	}

	for _, o := range orders {
		server := ""
		if o.Identifier.Valid {
			server = o.Identifier.String
		}

		dishes := make([]string, 0, len(byOrder[o.ID]))
		for _, item := range byOrder[o.ID] {
			dishes = append(dishes, fmt.Sprintf("%dx %s", item.Quantity, item.DishName))
		}

		record := []string{
			o.ID.String(),
			fmt.Sprintf("%d", o.TableNumber),
			server,
			money(o.Total),
			string(o.Status),
			o.CreatedAt.Format("2006-01-02 15:04"),
			strings.Join(dishes, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func lineTotal(unit pgtype.Numeric, quantity int32) string {
	if !unit.Valid {
		return "0.00"
	}
	val, err := unit.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.Mul(decimal.NewFromInt32(quantity)).StringFixed(2)
}
