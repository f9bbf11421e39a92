package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/billmaster-api/internal/domain"
	domainbilling "github.com/jhoicas/billmaster-api/internal/domain/billing"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// DefaultAllocationAttempts presupuesto de reintentos cuando la configuración no indica otro.
const DefaultAllocationAttempts = 5

var _ NumberGenerator = (*NumberAllocator)(nil)

// NumberAllocator reserva números PREFIX-YYYYMMDD-NNNN a partir de un contador diario atómico.
// Los huecos (números reservados cuya factura hizo rollback) están permitidos; la repetición no.
type NumberAllocator struct {
	seqRepo      repository.InvoiceSequenceRepository
	settingsRepo repository.SettingsRepository
	prefix       string
	attempts     int
	loc          *time.Location
	now          func() time.Time
}

// NewNumberAllocator construye el asignador. prefix es el valor por defecto si el setting
// "invoice_prefix" no existe; loc define qué es "hoy".
func NewNumberAllocator(
	seqRepo repository.InvoiceSequenceRepository,
	settingsRepo repository.SettingsRepository,
	prefix string,
	attempts int,
	loc *time.Location,
) *NumberAllocator {
	if attempts <= 0 {
		attempts = DefaultAllocationAttempts
	}
	if loc == nil {
		loc = time.UTC
	}
	if prefix == "" {
		prefix = domainbilling.DefaultInvoicePrefix
	}
	return &NumberAllocator{
		seqRepo:      seqRepo,
		settingsRepo: settingsRepo,
		prefix:       prefix,
		attempts:     attempts,
		loc:          loc,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (a *NumberAllocator) WithClock(now func() time.Time) *NumberAllocator {
	a.now = now
	return a
}

// Allocate incrementa el contador del día y formatea el número.
// Errores transitorios del contador se reintentan hasta agotar el presupuesto;
// entonces devuelve *domain.AllocationError.
func (a *NumberAllocator) Allocate(ctx context.Context) (string, error) {
	prefix := a.resolvePrefix(ctx)
	day := domainbilling.SequenceDay(a.now(), a.loc)

	var lastErr error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", &domain.AllocationError{Attempts: attempt - 1, Err: err}
		}
		seq, err := a.seqRepo.Next(ctx, day)
		if err == nil {
			return domainbilling.FormatInvoiceNumber(prefix, day, seq), nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", &domain.AllocationError{Attempts: attempt, Err: err}
		}
		log.Warn().Err(err).Str("day", day).Int("attempt", attempt).Msg("billing: contador de facturas no disponible, reintentando")
	}
	return "", &domain.AllocationError{Attempts: a.attempts, Err: lastErr}
}

func (a *NumberAllocator) resolvePrefix(ctx context.Context) string {
	if a.settingsRepo == nil {
		return a.prefix
	}
	v, ok, err := a.settingsRepo.Get(ctx, entity.SettingInvoicePrefix)
	if err != nil {
		log.Warn().Err(err).Msg("billing: no se pudo leer invoice_prefix, se usa el de configuración")
		return a.prefix
	}
	if v = strings.TrimSpace(v); ok && v != "" {
		return v
	}
	return a.prefix
}
