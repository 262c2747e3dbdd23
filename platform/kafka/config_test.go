package kafka

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	unsetEnv(t, "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_WRITE_TIMEOUT")

	cfg, err := LoadEnv()
	require.NoError(t, err)
	require.False(t, cfg.Enabled())
	require.Equal(t, "storefront.checkout.completed", cfg.Topic)
	require.Equal(t, 5*time.Second, cfg.WriteTimeout)
}

func TestLoadEnv_Brokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("KAFKA_TOPIC", "checkout")

	cfg, err := LoadEnv()
	require.NoError(t, err)
	require.True(t, cfg.Enabled())
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	require.Equal(t, "checkout", cfg.Topic)
}

// unsetEnv удаляет переменные на время теста (t.Setenv восстановит их после)
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
