// Package memory implementa los puertos de persistencia en memoria.
//
// Se usa con STORAGE_DRIVER=memory (demos, desarrollo local) y en los tests de casos de uso.
// Las transacciones se serializan con un mutex: RunBilling trabaja sobre una copia del estado
// y solo la publica si fn termina sin error, así un fallo a mitad de factura no deja rastro.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*Store)(nil)

// state todo lo persistido. Los valores se guardan por copia para que clone sea barato y seguro.
type state struct {
	products  map[int64]entity.Product
	customers map[int64]entity.Customer
	users     map[int64]entity.User
	settings  map[string]string
	invoices  map[int64]entity.Invoice
	numbers   map[string]int64 // invoice_number → id (UNIQUE)
	items     map[int64][]entity.InvoiceLineItem
	sequences map[string]int64

	lastInvoiceID  int64
	lastItemID     int64
	lastProductID  int64
	lastCustomerID int64
	lastUserID     int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]entity.Product),
		customers: make(map[int64]entity.Customer),
		users:     make(map[int64]entity.User),
		settings:  make(map[string]string),
		invoices:  make(map[int64]entity.Invoice),
		numbers:   make(map[string]int64),
		items:     make(map[int64][]entity.InvoiceLineItem),
		sequences: make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := *s
	c.products = maps.Clone(s.products)
	c.customers = maps.Clone(s.customers)
	c.users = maps.Clone(s.users)
	c.settings = maps.Clone(s.settings)
	c.invoices = maps.Clone(s.invoices)
	c.numbers = maps.Clone(s.numbers)
	c.sequences = maps.Clone(s.sequences)
	c.items = make(map[int64][]entity.InvoiceLineItem, len(s.items))
	for id, lines := range s.items {
		c.items[id] = slices.Clone(lines)
	}
	return &c
}

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// view acceso al estado: dentro de una tx usa la copia privada sin bloquear,
// fuera de ella toma el mutex del Store en cada operación.
type view struct {
	s  *Store
	tx *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.st)
}

func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

// ── Repos fuera de transacción ───────────────────────────────────────────────

// Invoices repositorio de facturas sobre el estado confirmado.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{v: view{s: s}} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: view{s: s}} }

// Stock repositorio de existencias.
func (s *Store) Stock() *StockRepo { return &StockRepo{v: view{s: s}} }

// Customers repositorio de clientes.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{v: view{s: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{v: view{s: s}} }

// Settings almacén clave-valor.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{v: view{s: s}} }

// Sequences contador diario de facturas.
func (s *Store) Sequences() *SequenceRepo { return &SequenceRepo{v: view{s: s}} }

// Reporting consultas de reportes.
func (s *Store) Reporting() *ReportingRepo { return &ReportingRepo{v: view{s: s}} }

// RunBilling ejecuta fn sobre una copia del estado y la publica solo si fn no falla
// y el contexto sigue vigente.
func (s *Store) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	v := view{s: s, tx: tx}
	if err := fn(&InvoiceRepo{v: v}, &ProductRepo{v: v}, &StockRepo{v: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.st = tx
	return nil
}

// ── Seed ─────────────────────────────────────────────────────────────────────

// AddProduct inserta un producto y devuelve su ID. Si p.ID es 0 se asigna uno.
func (s *Store) AddProduct(p entity.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.st.lastProductID++
		p.ID = s.st.lastProductID
	} else if p.ID > s.st.lastProductID {
		s.st.lastProductID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.st.products[p.ID] = p
	return p.ID
}

// DeleteProduct borra un producto; las líneas que lo referencian conservan
// nombre y precio pero pierden product_id (ON DELETE SET NULL).
func (s *Store) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.products, id)
	for invID, lines := range s.st.items {
		for i := range lines {
			if lines[i].ProductID != nil && *lines[i].ProductID == id {
				lines[i].ProductID = nil
			}
		}
		s.st.items[invID] = lines
	}
}

// AddCustomer inserta un cliente y devuelve su ID.
func (s *Store) AddCustomer(c entity.Customer) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.st.lastCustomerID++
		c.ID = s.st.lastCustomerID
	} else if c.ID > s.st.lastCustomerID {
		s.st.lastCustomerID = c.ID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.st.customers[c.ID] = c
	return c.ID
}

// AddUser inserta un usuario y devuelve su ID.
func (s *Store) AddUser(u entity.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.st.lastUserID++
		u.ID = s.st.lastUserID
	} else if u.ID > s.st.lastUserID {
		s.st.lastUserID = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.st.users[u.ID] = u
	return u.ID
}

// SetSetting fija una clave de configuración de la tienda.
func (s *Store) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.settings[key] = value
}

// AddInvoice inserta una factura ya calculada con sus líneas (histórico para reportes).
func (s *Store) AddInvoice(inv entity.Invoice, lines []entity.InvoiceLineItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	insertInvoice(s.st, &inv)
	for i := range lines {
		lines[i].InvoiceID = inv.ID
		if lines[i].LineNo == 0 {
			lines[i].LineNo = i + 1
		}
		insertLineItem(s.st, &lines[i])
	}
	return inv.ID
}

func insertInvoice(st *state, inv *entity.Invoice) {
	st.lastInvoiceID++
	inv.ID = st.lastInvoiceID
	st.invoices[inv.ID] = *inv
	st.numbers[inv.InvoiceNumber] = inv.ID
}

func insertLineItem(st *state, it *entity.InvoiceLineItem) {
	st.lastItemID++
	it.ID = st.lastItemID
	st.items[it.InvoiceID] = append(st.items[it.InvoiceID], *it)
}
