package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrAllocation   = errors.New("no se pudo reservar el número de factura")
	ErrPersistence  = errors.New("fallo de persistencia")
)

// ValidationError entrada rechazada antes de cualquier escritura.
// Message es apto para mostrarse al usuario.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// AllocationError el número de factura no pudo reservarse dentro del presupuesto de reintentos.
type AllocationError struct {
	Attempts int
	Err      error // último error observado (puede ser nil)
}

func (e *AllocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("asignación de número de factura: %d intentos agotados", e.Attempts)
	}
	return fmt.Sprintf("asignación de número de factura: %d intentos agotados: %v", e.Attempts, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrAllocation).
func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// PersistenceError fallo del almacenamiento dentro de la transacción.
// La causa se conserva solo para diagnóstico; nunca se expone al cliente.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NotFoundError recurso referenciado inexistente en una lectura.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d no encontrado", e.Resource, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
