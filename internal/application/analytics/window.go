package analytics

import (
	"time"

	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// Periodos aceptados por Summary.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

// Formatos de las claves de bucket; deben coincidir con los del repositorio.
const (
	dayKeyLayout    = "2006-01-02"
	monthKeyLayout  = "2006-01"
	monthNameLayout = "Jan 2006"
)

// Clock calcula ventanas de calendario semiabiertas [From, To) en la zona horaria de la tienda.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock construye el reloj. now nil usa time.Now.
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Clock{loc: loc, now: now}
}

// Location zona horaria del reloj.
func (c Clock) Location() *time.Location { return c.loc }

// Now hora actual en la zona de la tienda.
func (c Clock) Now() time.Time { return c.now().In(c.loc) }

// dayStart medianoche local del día t desplazado offset días.
func (c Clock) dayStart(t time.Time, offset int) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, c.loc)
}

// Today [hoy 00:00, mañana 00:00).
func (c Clock) Today() repository.Window {
	now := c.Now()
	return repository.Window{From: c.dayStart(now, 0), To: c.dayStart(now, 1)}
}

// Yesterday [ayer 00:00, hoy 00:00).
func (c Clock) Yesterday() repository.Window {
	now := c.Now()
	return repository.Window{From: c.dayStart(now, -1), To: c.dayStart(now, 0)}
}

// MonthToDate [día 1 00:00, mañana 00:00).
func (c Clock) MonthToDate() repository.Window {
	now := c.Now()
	return repository.Window{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.loc),
		To:   c.dayStart(now, 1),
	}
}

// LastNDays los n días de calendario que terminan hoy (incluido).
func (c Clock) LastNDays(n int) repository.Window {
	now := c.Now()
	return repository.Window{From: c.dayStart(now, -(n - 1)), To: c.dayStart(now, 1)}
}

// LastNMonths los n meses de calendario que terminan en el mes actual (incluido).
func (c Clock) LastNMonths(n int) repository.Window {
	now := c.Now()
	return repository.Window{
		From: time.Date(now.Year(), now.Month()-time.Month(n-1), 1, 0, 0, 0, 0, c.loc),
		To:   time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, c.loc),
	}
}

// YearToDate [1 de enero 00:00, mañana 00:00).
func (c Clock) YearToDate() repository.Window {
	now := c.Now()
	return repository.Window{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, c.loc), To: c.dayStart(now, 1)}
}

// Period traduce la palabra clave de Summary a su ventana.
func (c Clock) Period(period string) (repository.Window, error) {
	switch period {
	case PeriodToday:
		return c.Today(), nil
	case PeriodWeek:
		return c.LastNDays(7), nil
	case PeriodMonth:
		return c.MonthToDate(), nil
	case PeriodYear:
		return c.YearToDate(), nil
	case PeriodAll:
		return repository.Window{To: c.dayStart(c.Now(), 1)}, nil
	}
	return repository.Window{}, domain.NewValidationError("period", "unknown period "+period+" (today|week|month|year|all)")
}

// dayKeys claves YYYY-MM-DD de cada día de w, del más antiguo al más reciente.
func (c Clock) dayKeys(w repository.Window) []string {
	var keys []string
	for d := w.From; d.Before(w.To); d = c.dayStart(d, 1) {
		keys = append(keys, d.Format(dayKeyLayout))
	}
	return keys
}

// monthStarts primer instante de cada mes de w, del más antiguo al más reciente.
func (c Clock) monthStarts(w repository.Window) []time.Time {
	var out []time.Time
	for m := w.From; m.Before(w.To); m = time.Date(m.Year(), m.Month()+1, 1, 0, 0, 0, 0, c.loc) {
		out = append(out, m)
	}
	return out
}
