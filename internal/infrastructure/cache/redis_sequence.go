// Package cache adaptadores sobre Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.InvoiceSequenceRepository = (*RedisSequence)(nil)

// SequenceKeyPrefix prefijo de las claves del contador diario.
const SequenceKeyPrefix = "billing:invoice_seq:"

// SequenceTTL vida de cada contador diario; cubre el día y cambios de zona horaria.
const SequenceTTL = 72 * time.Hour

// incrWithTTL incrementa y fija la expiración en un solo round-trip atómico.
var incrWithTTL = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisSequence contador diario de facturas en Redis (INCR es atómico entre réplicas).
// Requiere persistencia (AOF/RDB) habilitada: perder la clave reinicia el contador del día
// y la restricción UNIQUE de invoice_number fuerza reintentos.
type RedisSequence struct {
	client *redis.Client
}

// NewRedisSequence construye el cliente.
func NewRedisSequence(addr string, password string, db int) *RedisSequence {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSequence{client: client}
}

// Ping verifica la conexión.
func (s *RedisSequence) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close libera el cliente.
func (s *RedisSequence) Close() error {
	return s.client.Close()
}

// Next devuelve el siguiente número del día (YYYYMMDD).
func (s *RedisSequence) Next(ctx context.Context, day string) (int64, error) {
	n, err := incrWithTTL.Run(ctx, s.client, []string{SequenceKeyPrefix + day}, int(SequenceTTL.Seconds())).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis invoice sequence %s: %w", day, err)
	}
	return n, nil
}
