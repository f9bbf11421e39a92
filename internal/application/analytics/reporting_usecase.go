// Package analytics contiene los casos de uso de reportes sobre el histórico de facturas.
// Todo es de solo lectura: repetir una consulta sobre el mismo histórico devuelve lo mismo.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// Valores por defecto y topes de los parámetros.
const (
	defaultSalesDays         = 7
	maxSalesDays             = 366
	defaultMonths            = 6
	maxMonths                = 60
	defaultTopLimit          = 5
	maxTopLimit              = 100
	defaultTopDays           = 30
	DefaultLowStockThreshold = 10
	lowStockMaxRows          = 10
	defaultRecentLimit       = 10
	maxRecentLimit           = 100
	paymentWindowDays        = 30
	percentPlaces            = 1
	moneyPlaces              = 2
)

var hundred = decimal.NewFromInt(100)

// ReportingUseCase agrega métricas de ventas por ventanas de calendario.
//
// Fuente de datos: ReportingRepository (consultas read-only).
// El relleno con ceros de las series y los porcentajes se calculan aquí.
type ReportingUseCase struct {
	repo  repository.ReportingRepository
	clock Clock
}

// NewReportingUseCase construye el caso de uso.
func NewReportingUseCase(repo repository.ReportingRepository, clock Clock) *ReportingUseCase {
	return &ReportingUseCase{repo: repo, clock: clock}
}

func authorize(caller entity.Caller) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthorized
	}
	return nil
}

// Today agregados del día en curso.
func (uc *ReportingUseCase) Today(ctx context.Context, caller entity.Caller) (repository.SalesTotals, error) {
	if err := authorize(caller); err != nil {
		return repository.SalesTotals{}, err
	}
	t, err := uc.repo.SalesTotals(ctx, uc.clock.Today())
	if err != nil {
		return repository.SalesTotals{}, fmt.Errorf("analytics: totales de hoy: %w", err)
	}
	return t, nil
}

// Dashboard construye el resumen de hoy, ayer, mes en curso y catálogo.
//
// Cinco consultas en paralelo:
//  1. SalesTotals(hoy)
//  2. SalesByStatus(hoy)
//  3. SalesTotals(ayer)
//  4. SalesTotals(mes)
//  5. CatalogCounts
func (uc *ReportingUseCase) Dashboard(ctx context.Context, caller entity.Caller) (*dto.DashboardDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}

	// ── Ventanas ───────────────────────────────────────────────────────────────
	today := uc.clock.Today()
	yesterday := uc.clock.Yesterday()
	month := uc.clock.MonthToDate()

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type totalsResult struct {
		totals repository.SalesTotals
		err    error
	}
	type statusResult struct {
		rows []repository.StatusTotals
		err  error
	}
	type catalogResult struct {
		counts repository.CatalogCounts
		err    error
	}

	todayCh := make(chan totalsResult, 1)
	statusCh := make(chan statusResult, 1)
	yesterdayCh := make(chan totalsResult, 1)
	monthCh := make(chan totalsResult, 1)
	catalogCh := make(chan catalogResult, 1)

	go func() {
		t, err := uc.repo.SalesTotals(ctx, today)
		todayCh <- totalsResult{t, err}
	}()
	go func() {
		rows, err := uc.repo.SalesByStatus(ctx, today)
		statusCh <- statusResult{rows, err}
	}()
	go func() {
		t, err := uc.repo.SalesTotals(ctx, yesterday)
		yesterdayCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.repo.SalesTotals(ctx, month)
		monthCh <- totalsResult{t, err}
	}()
	go func() {
		c, err := uc.repo.CatalogCounts(ctx)
		catalogCh <- catalogResult{c, err}
	}()

	t := <-todayCh
	st := <-statusCh
	y := <-yesterdayCh
	m := <-monthCh
	cat := <-catalogCh

	if t.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", t.err)
	}
	if st.err != nil {
		return nil, fmt.Errorf("dashboard: estados de hoy: %w", st.err)
	}
	if y.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de ayer: %w", y.err)
	}
	if m.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", m.err)
	}
	if cat.err != nil {
		return nil, fmt.Errorf("dashboard: catálogo: %w", cat.err)
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.DashboardDTO{
		Today: dto.TodayStatsDTO{
			Invoices:       t.totals.Invoices,
			Revenue:        t.totals.Revenue.Round(moneyPlaces),
			PaidRevenue:    t.totals.Paid.Round(moneyPlaces),
			PendingRevenue: t.totals.Pending.Round(moneyPlaces),
			ItemsSold:      t.totals.ItemsSold,
			ByStatus:       statusStats(st.rows),
		},
		Yesterday:     dto.PeriodStatsDTO{Invoices: y.totals.Invoices, Revenue: y.totals.Revenue.Round(moneyPlaces)},
		Month:         dto.PeriodStatsDTO{Invoices: m.totals.Invoices, Revenue: m.totals.Revenue.Round(moneyPlaces)},
		RevenueGrowth: Growth(t.totals.Revenue, y.totals.Revenue),
		Products:      cat.counts.ActiveProducts,
		Customers:     cat.counts.Customers,
	}, nil
}

// Growth variación porcentual (hoy − ayer) / ayer × 100 a 1 decimal; 0 si ayer no hubo ventas.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(percentPlaces)
}

// statusStats devuelve una fila por cada estado de pago, en orden fijo, con ceros si no hubo ventas.
func statusStats(rows []repository.StatusTotals) []dto.StatusStatsDTO {
	byStatus := make(map[entity.PaymentStatus]repository.StatusTotals, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}
	out := make([]dto.StatusStatsDTO, 0, len(entity.PaymentStatuses))
	for _, s := range entity.PaymentStatuses {
		r := byStatus[s]
		out = append(out, dto.StatusStatsDTO{Status: string(s), Invoices: r.Invoices, Revenue: r.Revenue.Round(moneyPlaces)})
	}
	return out
}

// SalesSeries ventas diarias de los últimos days días, sin huecos, del más antiguo al más reciente.
func (uc *ReportingUseCase) SalesSeries(ctx context.Context, caller entity.Caller, days int) ([]dto.DailySalesDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	days = clamp(days, defaultSalesDays, maxSalesDays)
	w := uc.clock.LastNDays(days)

	buckets, err := uc.repo.SalesBuckets(ctx, w, repository.ByDay, uc.clock.Location())
	if err != nil {
		return nil, fmt.Errorf("analytics: serie diaria: %w", err)
	}
	byKey := indexBuckets(buckets)

	keys := uc.clock.dayKeys(w)
	out := make([]dto.DailySalesDTO, 0, len(keys))
	for _, k := range keys {
		b := byKey[k]
		out = append(out, dto.DailySalesDTO{
			Date:  k,
			Total: b.Revenue.Round(moneyPlaces),
			Count: b.Invoices,
			Paid:  b.Paid.Round(moneyPlaces),
		})
	}
	return out, nil
}

// HourlySales 24 buckets del día en curso, sin huecos.
func (uc *ReportingUseCase) HourlySales(ctx context.Context, caller entity.Caller) ([]dto.HourlySalesDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	buckets, err := uc.repo.SalesBuckets(ctx, uc.clock.Today(), repository.ByHour, uc.clock.Location())
	if err != nil {
		return nil, fmt.Errorf("analytics: ventas por hora: %w", err)
	}
	byKey := indexBuckets(buckets)

	out := make([]dto.HourlySalesDTO, 24)
	for h := 0; h < 24; h++ {
		b := byKey[fmt.Sprintf("%02d", h)]
		out[h] = dto.HourlySalesDTO{Hour: h, Invoices: b.Invoices, Revenue: b.Revenue.Round(moneyPlaces)}
	}
	return out, nil
}

// MonthlySeries ventas por mes de los últimos months meses, sin huecos.
func (uc *ReportingUseCase) MonthlySeries(ctx context.Context, caller entity.Caller, months int) ([]dto.MonthlySalesDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	months = clamp(months, defaultMonths, maxMonths)
	w := uc.clock.LastNMonths(months)

	buckets, err := uc.repo.SalesBuckets(ctx, w, repository.ByMonth, uc.clock.Location())
	if err != nil {
		return nil, fmt.Errorf("analytics: serie mensual: %w", err)
	}
	byKey := indexBuckets(buckets)

	starts := uc.clock.monthStarts(w)
	out := make([]dto.MonthlySalesDTO, 0, len(starts))
	for _, m := range starts {
		k := m.Format(monthKeyLayout)
		b := byKey[k]
		out = append(out, dto.MonthlySalesDTO{
			Month:     k,
			MonthName: m.Format(monthNameLayout),
			Invoices:  b.Invoices,
			Revenue:   b.Revenue.Round(moneyPlaces),
			Paid:      b.Paid.Round(moneyPlaces),
		})
	}
	return out, nil
}

// PaymentMethods participación de cada medio de pago en los últimos 30 días.
// Sin ventas devuelve una fila "cash" en cero para que la gráfica no quede vacía.
func (uc *ReportingUseCase) PaymentMethods(ctx context.Context, caller entity.Caller) ([]dto.PaymentMethodShareDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	rows, err := uc.repo.PaymentMethodTotals(ctx, uc.clock.LastNDays(paymentWindowDays))
	if err != nil {
		return nil, fmt.Errorf("analytics: medios de pago: %w", err)
	}
	if len(rows) == 0 {
		return []dto.PaymentMethodShareDTO{{PaymentMethod: string(entity.PaymentCash), Total: decimal.Zero, Percentage: decimal.Zero}}, nil
	}

	windowTotal := decimal.Zero
	for _, r := range rows {
		windowTotal = windowTotal.Add(r.Total)
	}
	out := make([]dto.PaymentMethodShareDTO, 0, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if windowTotal.IsPositive() {
			pct = r.Total.Mul(hundred).Div(windowTotal).Round(percentPlaces)
		}
		out = append(out, dto.PaymentMethodShareDTO{
			PaymentMethod: string(r.Method),
			Total:         r.Total.Round(moneyPlaces),
			Count:         r.Invoices,
			Percentage:    pct,
		})
	}
	return out, nil
}

// TopProducts productos con más ingresos en los últimos days días.
func (uc *ReportingUseCase) TopProducts(ctx context.Context, caller entity.Caller, in dto.TopProductsRequest) ([]dto.TopProductDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	limit := clamp(in.Limit, defaultTopLimit, maxTopLimit)
	days := clamp(in.Days, defaultTopDays, maxSalesDays)

	rows, err := uc.repo.TopProducts(ctx, uc.clock.LastNDays(days), limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: top productos: %w", err)
	}
	out := make([]dto.TopProductDTO, 0, len(rows))
	for _, r := range rows {
		avg := decimal.Zero
		if r.Sold > 0 {
			avg = r.Revenue.Div(decimal.NewFromInt(r.Sold)).Round(moneyPlaces)
		}
		out = append(out, dto.TopProductDTO{
			ProductID: r.ProductID,
			Name:      r.Name,
			UnitPrice: r.UnitPrice,
			Sold:      r.Sold,
			Revenue:   r.Revenue.Round(moneyPlaces),
			AvgPrice:  avg,
		})
	}
	return out, nil
}

// LowStock productos activos con existencia <= threshold (máximo 10, ascendente).
func (uc *ReportingUseCase) LowStock(ctx context.Context, caller entity.Caller, threshold int) ([]dto.LowStockDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, domain.NewValidationError("threshold", "must not be negative")
	}
	products, err := uc.repo.LowStockProducts(ctx, threshold, lowStockMaxRows)
	if err != nil {
		return nil, fmt.Errorf("analytics: stock bajo: %w", err)
	}
	out := make([]dto.LowStockDTO, 0, len(products))
	for _, p := range products {
		out = append(out, dto.LowStockDTO{ID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity, Unit: p.Unit, Price: p.Price})
	}
	return out, nil
}

// RecentInvoices últimas facturas emitidas con nombre de cliente.
func (uc *ReportingUseCase) RecentInvoices(ctx context.Context, caller entity.Caller, limit int) ([]dto.InvoiceSummaryResponse, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	rows, err := uc.repo.RecentInvoices(ctx, clamp(limit, defaultRecentLimit, maxRecentLimit))
	if err != nil {
		return nil, fmt.Errorf("analytics: facturas recientes: %w", err)
	}
	out := make([]dto.InvoiceSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.InvoiceSummaryResponse{
			ID:            r.ID,
			InvoiceNumber: r.InvoiceNumber,
			CustomerID:    r.CustomerID,
			CustomerName:  r.CustomerName,
			TotalAmount:   r.TotalAmount,
			PaymentMethod: string(r.PaymentMethod),
			PaymentStatus: string(r.PaymentStatus),
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

// TopCustomers clientes con mayor gasto acumulado.
func (uc *ReportingUseCase) TopCustomers(ctx context.Context, caller entity.Caller, limit int) ([]dto.TopCustomerDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	rows, err := uc.repo.TopCustomers(ctx, clamp(limit, defaultTopLimit, maxTopLimit))
	if err != nil {
		return nil, fmt.Errorf("analytics: top clientes: %w", err)
	}
	out := make([]dto.TopCustomerDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopCustomerDTO{
			ID:          r.ID,
			Name:        r.Name,
			Phone:       r.Phone,
			TotalOrders: r.TotalOrders,
			TotalSpent:  r.TotalSpent.Round(moneyPlaces),
			LastOrder:   r.LastOrder.In(uc.clock.Location()),
		})
	}
	return out, nil
}

// Summary resumen de un periodo (today|week|month|year|all). Periodo desconocido → ValidationError.
func (uc *ReportingUseCase) Summary(ctx context.Context, caller entity.Caller, period string) (*dto.PeriodSummaryDTO, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	if period == "" {
		period = PeriodToday
	}
	w, err := uc.clock.Period(period)
	if err != nil {
		return nil, err
	}
	t, err := uc.repo.SalesTotals(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("analytics: resumen %s: %w", period, err)
	}
	avg := decimal.Zero
	if t.Invoices > 0 {
		avg = t.Revenue.Div(decimal.NewFromInt(t.Invoices)).Round(moneyPlaces)
	}
	return &dto.PeriodSummaryDTO{
		Period:          period,
		TotalInvoices:   t.Invoices,
		TotalRevenue:    t.Revenue.Round(moneyPlaces),
		PaidAmount:      t.Paid.Round(moneyPlaces),
		PendingAmount:   t.Pending.Round(moneyPlaces),
		AvgOrderValue:   avg,
		UniqueCustomers: t.UniqueCustomers,
		ItemsSold:       t.ItemsSold,
	}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func indexBuckets(buckets []repository.SalesBucket) map[string]repository.SalesBucket {
	m := make(map[string]repository.SalesBucket, len(buckets))
	for _, b := range buckets {
		m[b.Key] = b
	}
	return m
}

// clamp aplica def si v <= 0 y recorta a max.
func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
