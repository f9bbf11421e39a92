package dto

import "github.com/shopspring/decimal"

// DashboardDTO respuesta de GET /api/analytics/dashboard.
type DashboardDTO struct {
	Today         TodayStatsDTO   `json:"today"`
	Yesterday     PeriodStatsDTO  `json:"yesterday"`
	Month         PeriodStatsDTO  `json:"month"`
	RevenueGrowth decimal.Decimal `json:"revenue_growth"` // % vs ayer, 1 decimal; 0 si ayer no hubo ventas
	Products      int64           `json:"products"`       // productos activos
	Customers     int64           `json:"customers"`
}

// TodayStatsDTO métricas del día en curso.
type TodayStatsDTO struct {
	Invoices       int64            `json:"invoices"`
	Revenue        decimal.Decimal  `json:"revenue"`
	PaidRevenue    decimal.Decimal  `json:"paid_revenue"`
	PendingRevenue decimal.Decimal  `json:"pending_revenue"`
	ItemsSold      int64            `json:"items_sold"`
	ByStatus       []StatusStatsDTO `json:"by_status"`
}

// PeriodStatsDTO conteo e ingresos de un período.
type PeriodStatsDTO struct {
	Invoices int64           `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// StatusStatsDTO conteo e ingresos por estado de pago.
type StatusStatsDTO struct {
	Status   string          `json:"status"`
	Invoices int64           `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
}
