package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rows that share a timestamp are ordered by source: receipts, then sales,
// then returns. Within a source the emission order is kept.
const (
	rankReceipt = iota
	rankSale
	rankReturn
)

type sequencedRow struct {
	row  LedgerRow
	rank int
	seq  int
}

type pooledBatch struct {
	FifoBatch
	rank int
	seq  int
}

// Reconstructor folds receipts, sales and returns into a FIFO-costed ledger.
// It keeps no state between calls and never modifies its inputs.
type Reconstructor struct {
	policy ReturnPolicy
}

// NewReconstructor creates a reconstructor. A nil policy keeps returns out of
// the FIFO pool.
func NewReconstructor(policy ReturnPolicy) *Reconstructor {
	return &Reconstructor{policy: policy}
}

// Reconstruct builds the ledger for product from its source records
func (r *Reconstructor) Reconstruct(
	product string,
	receipts []StockReceipt,
	sales []SaleLine,
	returns []ReturnLine,
) Ledger {
	orderedReceipts := sortedReceipts(receipts)
	orderedSales := sortedSales(sales)
	orderedReturns := sortedReturns(returns)

	rows := make([]sequencedRow, 0, len(orderedReceipts)+len(orderedSales)+len(orderedReturns))
	pool := make([]pooledBatch, 0, len(orderedReceipts))

	for i, rc := range orderedReceipts {
		rows = append(rows, sequencedRow{row: receiptRow(rc), rank: rankReceipt, seq: i})
		pool = append(pool, pooledBatch{
			FifoBatch: FifoBatch{
				Remaining:    rc.Quantity,
				UnitCost:     rc.UnitCost,
				SellingPrice: rc.SellingPrice,
				SupplierName: orPlaceholder(rc.SupplierName),
				OpenedAt:     rc.ReceivedAt,
			},
			rank: rankReceipt,
			seq:  i,
		})
	}

	for i, ret := range orderedReturns {
		cost := decimal.Zero
		if r.policy != nil {
			if batch, ok := r.policy.Restock(ret, orderedReceipts); ok {
				cost = batch.UnitCost
				pool = append(pool, pooledBatch{FifoBatch: batch, rank: rankReturn, seq: i})
			}
		}
		rows = append(rows, sequencedRow{row: returnRow(ret, cost), rank: rankReturn, seq: i})
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].before(pool[j])
	})

	saleSeq := 0
	for _, sale := range orderedSales {
		for _, row := range consume(pool, sale) {
			rows = append(rows, sequencedRow{row: row, rank: rankSale, seq: saleSeq})
			saleSeq++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.row.Date.Equal(b.row.Date) {
			return a.row.Date.Before(b.row.Date)
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.seq < b.seq
	})

	result := Ledger{
		Product: product,
		Rows:    make([]LedgerRow, len(rows)),
	}
	var balance int64
	for i, sr := range rows {
		balance += sr.row.Delta()
		sr.row.Balance = balance
		result.Rows[i] = sr.row
	}
	result.CurrentStock = balance

	return result
}

// consume draws a sale's quantity from the pool oldest batch first. Any
// quantity left once the pool is empty becomes a zero-cost shortfall row.
func consume(pool []pooledBatch, sale SaleLine) []LedgerRow {
	var rows []LedgerRow
	needed := sale.Quantity

	for i := range pool {
		if needed == 0 {
			break
		}
		batch := &pool[i].FifoBatch
		if batch.Exhausted() {
			continue
		}
		taken := batch.Take(needed)
		needed -= taken
		rows = append(rows, LedgerRow{
			Date:            sale.SoldAt,
			Type:            DirectionOut,
			ReferenceNumber: sale.InvoiceNumber,
			SupplierName:    batch.SupplierName,
			Cashier:         orPlaceholder(sale.Cashier),
			QuantityOut:     taken,
			CostPrice:       batch.UnitCost,
			SellingPrice:    batch.SellingPrice,
			Note:            fmt.Sprintf("Sale (FIFO from batch opened %s)", batch.OpenedAt.Format(time.DateOnly)),
		})
	}

	if needed > 0 {
		rows = append(rows, LedgerRow{
			Date:            sale.SoldAt,
			Type:            DirectionOut,
			ReferenceNumber: sale.InvoiceNumber,
			SupplierName:    NoCounterparty,
			Cashier:         orPlaceholder(sale.Cashier),
			QuantityOut:     needed,
			CostPrice:       decimal.Zero,
			SellingPrice:    sale.UnitPrice,
			Note:            fmt.Sprintf("Shortage: %d unit(s) sold without matching stock receipt", needed),
			Shortfall:       true,
		})
	}

	return rows
}

func (b pooledBatch) before(other pooledBatch) bool {
	if !b.OpenedAt.Equal(other.OpenedAt) {
		return b.OpenedAt.Before(other.OpenedAt)
	}
	if b.rank != other.rank {
		return b.rank < other.rank
	}
	return b.seq < other.seq
}

func receiptRow(rc StockReceipt) LedgerRow {
	return LedgerRow{
		Date:            rc.ReceivedAt,
		Type:            DirectionIn,
		ReferenceNumber: rc.ReferenceNumber,
		SupplierName:    orPlaceholder(rc.SupplierName),
		Cashier:         NoCounterparty,
		QuantityIn:      rc.Quantity,
		CostPrice:       rc.UnitCost,
		SellingPrice:    rc.SellingPrice,
		Note:            "Stock received",
	}
}

func returnRow(ret ReturnLine, cost decimal.Decimal) LedgerRow {
	return LedgerRow{
		Date:            ret.ReturnedAt,
		Type:            DirectionIn,
		ReferenceNumber: ret.ReferenceNumber,
		SupplierName:    NoCounterparty,
		Cashier:         orPlaceholder(ret.ProcessedBy),
		QuantityIn:      ret.Quantity,
		CostPrice:       cost,
		SellingPrice:    ret.UnitPrice,
		Note:            "Customer return",
	}
}

// sortedReceipts copies receipts that move stock and orders them by time.
// Zero-quantity receipts would produce rows with neither side set.
func sortedReceipts(receipts []StockReceipt) []StockReceipt {
	out := make([]StockReceipt, 0, len(receipts))
	for _, rc := range receipts {
		if rc.Quantity > 0 {
			out = append(out, rc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.Before(out[j].ReceivedAt)
	})
	return out
}

func sortedSales(sales []SaleLine) []SaleLine {
	out := make([]SaleLine, 0, len(sales))
	for _, s := range sales {
		if s.Quantity > 0 && s.Status.CountsTowardLedger() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SoldAt.Before(out[j].SoldAt)
	})
	return out
}

func sortedReturns(returns []ReturnLine) []ReturnLine {
	out := make([]ReturnLine, 0, len(returns))
	for _, ret := range returns {
		if ret.Quantity > 0 {
			out = append(out, ret)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReturnedAt.Before(out[j].ReturnedAt)
	})
	return out
}

func orPlaceholder(name string) string {
	if name == "" {
		return NoCounterparty
	}
	return name
}
