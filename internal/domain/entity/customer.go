package entity

import "time"

// Customer cliente de la tienda (facturación).
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
}
