package billing

import (
	"fmt"
	"time"
)

// DefaultInvoicePrefix prefijo cuando la tienda no configuró uno.
const DefaultInvoicePrefix = "INV"

// SequenceDayLayout formato de la clave del contador diario (YYYYMMDD).
const SequenceDayLayout = "20060102"

// SequenceDay devuelve la clave del contador diario para el instante t en loc.
func SequenceDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(SequenceDayLayout)
}

// FormatInvoiceNumber arma PREFIX-YYYYMMDD-NNNN. La secuencia se rellena a 4 dígitos
// y se ensancha sola a partir de 9999.
func FormatInvoiceNumber(prefix, day string, seq int64) string {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, day, seq)
}
