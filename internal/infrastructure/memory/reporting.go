package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.ReportingRepository = (*ReportingRepo)(nil)

// ReportingRepo agregados calculados recorriendo el estado confirmado.
type ReportingRepo struct{ v view }

var bucketLayouts = map[repository.Granularity]string{
	repository.ByHour:  "15",
	repository.ByDay:   "2006-01-02",
	repository.ByMonth: "2006-01",
}

func inWindow(st *state, w repository.Window) []entity.Invoice {
	var out []entity.Invoice
	for _, inv := range st.invoices {
		if w.Contains(inv.CreatedAt) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SalesTotals conteo, ingresos y unidades vendidas en la ventana.
func (r *ReportingRepo) SalesTotals(ctx context.Context, w repository.Window) (repository.SalesTotals, error) {
	t := repository.SalesTotals{Revenue: decimal.Zero, Paid: decimal.Zero, Pending: decimal.Zero}
	err := r.v.read(func(st *state) error {
		customers := make(map[int64]struct{})
		for _, inv := range inWindow(st, w) {
			t.Invoices++
			t.Revenue = t.Revenue.Add(inv.TotalAmount)
			switch inv.PaymentStatus {
			case entity.PaymentPaid:
				t.Paid = t.Paid.Add(inv.TotalAmount)
			case entity.PaymentPending:
				t.Pending = t.Pending.Add(inv.TotalAmount)
			}
			if inv.CustomerID != nil {
				customers[*inv.CustomerID] = struct{}{}
			}
			for _, it := range st.items[inv.ID] {
				t.ItemsSold += int64(it.Quantity)
			}
		}
		t.UniqueCustomers = int64(len(customers))
		return nil
	})
	return t, err
}

// SalesByStatus conteo e ingresos por estado, ordenado por estado.
func (r *ReportingRepo) SalesByStatus(ctx context.Context, w repository.Window) ([]repository.StatusTotals, error) {
	var out []repository.StatusTotals
	err := r.v.read(func(st *state) error {
		acc := make(map[entity.PaymentStatus]*repository.StatusTotals)
		for _, inv := range inWindow(st, w) {
			row, ok := acc[inv.PaymentStatus]
			if !ok {
				row = &repository.StatusTotals{Status: inv.PaymentStatus, Revenue: decimal.Zero}
				acc[inv.PaymentStatus] = row
			}
			row.Invoices++
			row.Revenue = row.Revenue.Add(inv.TotalAmount)
		}
		for _, row := range acc {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
		return nil
	})
	return out, err
}

// SalesBuckets agrupa por hora, día o mes en loc.
func (r *ReportingRepo) SalesBuckets(ctx context.Context, w repository.Window, g repository.Granularity, loc *time.Location) ([]repository.SalesBucket, error) {
	layout, ok := bucketLayouts[g]
	if !ok {
		return nil, fmt.Errorf("reporting.SalesBuckets: granularidad desconocida %q", g)
	}
	if loc == nil {
		loc = time.UTC
	}
	var out []repository.SalesBucket
	err := r.v.read(func(st *state) error {
		acc := make(map[string]*repository.SalesBucket)
		for _, inv := range inWindow(st, w) {
			key := inv.CreatedAt.In(loc).Format(layout)
			b, ok := acc[key]
			if !ok {
				b = &repository.SalesBucket{Key: key, Revenue: decimal.Zero, Paid: decimal.Zero}
				acc[key] = b
			}
			b.Invoices++
			b.Revenue = b.Revenue.Add(inv.TotalAmount)
			if inv.PaymentStatus == entity.PaymentPaid {
				b.Paid = b.Paid.Add(inv.TotalAmount)
			}
		}
		for _, b := range acc {
			out = append(out, *b)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return nil
	})
	return out, err
}

// PaymentMethodTotals total desc, método asc.
func (r *ReportingRepo) PaymentMethodTotals(ctx context.Context, w repository.Window) ([]repository.PaymentMethodTotals, error) {
	var out []repository.PaymentMethodTotals
	err := r.v.read(func(st *state) error {
		acc := make(map[entity.PaymentMethod]*repository.PaymentMethodTotals)
		for _, inv := range inWindow(st, w) {
			row, ok := acc[inv.PaymentMethod]
			if !ok {
				row = &repository.PaymentMethodTotals{Method: inv.PaymentMethod, Total: decimal.Zero}
				acc[inv.PaymentMethod] = row
			}
			row.Invoices++
			row.Total = row.Total.Add(inv.TotalAmount)
		}
		for _, row := range acc {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool {
			if c := out[i].Total.Cmp(out[j].Total); c != 0 {
				return c > 0
			}
			return out[i].Method < out[j].Method
		})
		return nil
	})
	return out, err
}

// TopProducts revenue desc, product_id asc; ignora líneas sin producto.
func (r *ReportingRepo) TopProducts(ctx context.Context, w repository.Window, limit int) ([]repository.ProductSales, error) {
	var out []repository.ProductSales
	err := r.v.read(func(st *state) error {
		acc := make(map[int64]*repository.ProductSales)
		for _, inv := range inWindow(st, w) {
			for _, it := range st.items[inv.ID] {
				if it.ProductID == nil {
					continue
				}
				p, exists := st.products[*it.ProductID]
				if !exists {
					continue
				}
				row, ok := acc[p.ID]
				if !ok {
					row = &repository.ProductSales{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Revenue: decimal.Zero}
					acc[p.ID] = row
				}
				row.Sold += int64(it.Quantity)
				row.Revenue = row.Revenue.Add(it.TotalPrice)
			}
		}
		for _, row := range acc {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool {
			if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
				return c > 0
			}
			return out[i].ProductID < out[j].ProductID
		})
		if n := limitOr(limit, 5); len(out) > n {
			out = out[:n]
		}
		return nil
	})
	return out, err
}

// LowStockProducts activos con existencia <= threshold, ascendente.
func (r *ReportingRepo) LowStockProducts(ctx context.Context, threshold, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.IsActive && p.StockQuantity <= threshold {
				p := p
				out = append(out, &p)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].StockQuantity != out[j].StockQuantity {
				return out[i].StockQuantity < out[j].StockQuantity
			}
			return out[i].ID < out[j].ID
		})
		if n := limitOr(limit, 10); len(out) > n {
			out = out[:n]
		}
		return nil
	})
	return out, err
}

// RecentInvoices últimas facturas.
func (r *ReportingRepo) RecentInvoices(ctx context.Context, limit int) ([]*entity.InvoiceSummary, error) {
	var out []*entity.InvoiceSummary
	err := r.v.read(func(st *state) error {
		out = summaries(st, func(entity.Invoice) bool { return true }, limitOr(limit, 10))
		return nil
	})
	return out, err
}

// TopCustomers gasto desc, id asc.
func (r *ReportingRepo) TopCustomers(ctx context.Context, limit int) ([]repository.CustomerTotals, error) {
	var out []repository.CustomerTotals
	err := r.v.read(func(st *state) error {
		acc := make(map[int64]*repository.CustomerTotals)
		for _, inv := range st.invoices {
			if inv.CustomerID == nil {
				continue
			}
			c, exists := st.customers[*inv.CustomerID]
			if !exists {
				continue
			}
			row, ok := acc[c.ID]
			if !ok {
				row = &repository.CustomerTotals{ID: c.ID, Name: c.Name, Phone: c.Phone, TotalSpent: decimal.Zero}
				acc[c.ID] = row
			}
			row.TotalOrders++
			row.TotalSpent = row.TotalSpent.Add(inv.TotalAmount)
			if inv.CreatedAt.After(row.LastOrder) {
				row.LastOrder = inv.CreatedAt
			}
		}
		for _, row := range acc {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool {
			if c := out[i].TotalSpent.Cmp(out[j].TotalSpent); c != 0 {
				return c > 0
			}
			return out[i].ID < out[j].ID
		})
		if n := limitOr(limit, 5); len(out) > n {
			out = out[:n]
		}
		return nil
	})
	return out, err
}

// CatalogCounts productos activos y clientes.
func (r *ReportingRepo) CatalogCounts(ctx context.Context) (repository.CatalogCounts, error) {
	var c repository.CatalogCounts
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.IsActive {
				c.ActiveProducts++
			}
		}
		c.Customers = int64(len(st.customers))
		return nil
	})
	return c, err
}
