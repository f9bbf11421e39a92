package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository         = (*InvoiceRepo)(nil)
	_ repository.ProductRepository         = (*ProductRepo)(nil)
	_ repository.StockRepository           = (*StockRepo)(nil)
	_ repository.CustomerRepository        = (*CustomerRepo)(nil)
	_ repository.UserRepository            = (*UserRepo)(nil)
	_ repository.SettingsRepository        = (*SettingsRepo)(nil)
	_ repository.InvoiceSequenceRepository = (*SequenceRepo)(nil)
)

// ── Facturas ─────────────────────────────────────────────────────────────────

// InvoiceRepo facturas y líneas en memoria.
type InvoiceRepo struct{ v view }

// Create inserta la cabecera; invoice_number repetido → domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.v.write(func(st *state) error {
		if _, taken := st.numbers[inv.InvoiceNumber]; taken {
			return fmt.Errorf("insert invoice %s: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		if inv.CustomerID != nil {
			if _, ok := st.customers[*inv.CustomerID]; !ok {
				return fmt.Errorf("insert invoice: customer %d violates foreign key", *inv.CustomerID)
			}
		}
		insertInvoice(st, inv)
		return nil
	})
}

// CreateLineItem inserta una línea de una factura existente.
func (r *InvoiceRepo) CreateLineItem(ctx context.Context, item *entity.InvoiceLineItem) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.invoices[item.InvoiceID]; !ok {
			return fmt.Errorf("insert invoice item: invoice %d violates foreign key", item.InvoiceID)
		}
		if item.ProductID != nil {
			if _, ok := st.products[*item.ProductID]; !ok {
				return fmt.Errorf("insert invoice item: product %d violates foreign key", *item.ProductID)
			}
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("insert invoice item: quantity %d violates check", item.Quantity)
		}
		insertLineItem(st, item)
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.v.read(func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			out = &inv
		}
		return nil
	})
	return out, err
}

// GetLineItems líneas en orden de captura.
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLineItem, error) {
	var out []*entity.InvoiceLineItem
	err := r.v.read(func(st *state) error {
		for _, it := range st.items[invoiceID] {
			it := it
			out = append(out, &it)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, err
}

// List facturas más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.InvoiceSummary, error) {
	var out []*entity.InvoiceSummary
	err := r.v.read(func(st *state) error {
		out = summaries(st, func(inv entity.Invoice) bool {
			return filter.Status == "" || inv.PaymentStatus == filter.Status
		}, limitOr(filter.Limit, 20))
		return nil
	})
	return out, err
}

// UpdatePaymentStatus cambia solo el estado de pago.
func (r *InvoiceRepo) UpdatePaymentStatus(ctx context.Context, id int64, status entity.PaymentStatus, now time.Time) (bool, error) {
	var found bool
	err := r.v.write(func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok {
			return nil
		}
		inv.PaymentStatus = status
		inv.UpdatedAt = now
		st.invoices[id] = inv
		found = true
		return nil
	})
	return found, err
}

// summaries filas de listado ordenadas por created_at desc, id desc.
func summaries(st *state, keep func(entity.Invoice) bool, limit int) []*entity.InvoiceSummary {
	invs := make([]entity.Invoice, 0, len(st.invoices))
	for _, inv := range st.invoices {
		if keep(inv) {
			invs = append(invs, inv)
		}
	}
	sort.Slice(invs, func(i, j int) bool {
		if !invs[i].CreatedAt.Equal(invs[j].CreatedAt) {
			return invs[i].CreatedAt.After(invs[j].CreatedAt)
		}
		return invs[i].ID > invs[j].ID
	})
	if len(invs) > limit {
		invs = invs[:limit]
	}
	out := make([]*entity.InvoiceSummary, 0, len(invs))
	for _, inv := range invs {
		s := &entity.InvoiceSummary{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerID,
			TotalAmount:   inv.TotalAmount,
			PaymentMethod: inv.PaymentMethod,
			PaymentStatus: inv.PaymentStatus,
			CreatedAt:     inv.CreatedAt,
		}
		if inv.CustomerID != nil {
			s.CustomerName = st.customers[*inv.CustomerID].Name
		}
		out = append(out, s)
	}
	return out
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// ── Productos y stock ────────────────────────────────────────────────────────

// ProductRepo lectura de productos.
type ProductRepo struct{ v view }

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// StockRepo ajustes de existencia; cada llamada es atómica bajo el mutex.
type StockRepo struct{ v view }

// Decrement resta qty sin bajar de cero.
func (r *StockRepo) Decrement(ctx context.Context, productID int64, qty int) (int, error) {
	return r.apply(productID, "decrement stock", func(cur int) int {
		if cur-qty < 0 {
			return 0
		}
		return cur - qty
	})
}

// Add suma qty.
func (r *StockRepo) Add(ctx context.Context, productID int64, qty int) (int, error) {
	return r.apply(productID, "add stock", func(cur int) int { return cur + qty })
}

// Set fija la existencia.
func (r *StockRepo) Set(ctx context.Context, productID int64, qty int) (int, error) {
	return r.apply(productID, "set stock", func(int) int { return qty })
}

func (r *StockRepo) apply(productID int64, op string, next func(int) int) (int, error) {
	var stock int
	err := r.v.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("%s product %d: %w", op, productID, domain.ErrNotFound)
		}
		p.StockQuantity = next(p.StockQuantity)
		if p.StockQuantity < 0 {
			return fmt.Errorf("%s product %d: stock_quantity violates check", op, productID)
		}
		st.products[productID] = p
		stock = p.StockQuantity
		return nil
	})
	return stock, err
}

// ── Clientes, usuarios y settings ────────────────────────────────────────────

// CustomerRepo lectura de clientes.
type CustomerRepo struct{ v view }

// GetByID devuelve (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// UserRepo lectura de usuarios.
type UserRepo struct{ v view }

// FindByUsername busca por username exacto.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

// FindByID busca por ID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

// SettingsRepo almacén clave-valor.
type SettingsRepo struct{ v view }

// Get devuelve ("", false, nil) si la clave no existe.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := r.v.read(func(st *state) error {
		value, ok = st.settings[key]
		return nil
	})
	return value, ok, err
}

// GetAll copia de todas las claves.
func (r *SettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	err := r.v.read(func(st *state) error {
		for k, v := range st.settings {
			out[k] = v
		}
		return nil
	})
	return out, err
}

// ── Consecutivo ──────────────────────────────────────────────────────────────

// SequenceRepo contador diario protegido por el mutex del Store.
type SequenceRepo struct{ v view }

// Next incrementa y devuelve el contador de day.
func (r *SequenceRepo) Next(ctx context.Context, day string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := r.v.write(func(st *state) error {
		st.sequences[day]++
		n = st.sequences[day]
		return nil
	})
	return n, err
}
