package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgTimeZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	assert.Equal(t, "Asia/Kolkata", pgTimeZone(kolkata))
	assert.Equal(t, "UTC", pgTimeZone(time.UTC))
	assert.Equal(t, "UTC", pgTimeZone(nil))
	// Lo que Go arma desde /etc/localtime sin TZ: nombre "Local", offset del host.
	assert.Equal(t, "UTC", pgTimeZone(time.FixedZone("Local", 5*3600+1800)))
}
