package repository

import "context"

// SettingsRepository almacén clave-valor de configuración de la tienda.
type SettingsRepository interface {
	// Get devuelve ("", false, nil) si la clave no existe.
	Get(ctx context.Context, key string) (string, bool, error)
	GetAll(ctx context.Context) (map[string]string, error)
}
