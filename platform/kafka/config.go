package kafka

import "time"

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Brokers - список брокеров через запятую: "broker1:9092,broker2:9092".
	// Пустой список отключает публикацию событий (используется no-op publisher).
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// Topic - топик событий оформления заказа
	Topic string `env:"KAFKA_TOPIC" envDefault:"storefront.checkout.completed"`
	// WriteTimeout - таймаут записи одного сообщения
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

// Enabled сообщает, сконфигурирован ли хотя бы один брокер
func (c Config) Enabled() bool {
	for _, b := range c.Brokers {
		if b != "" {
			return true
		}
	}
	return false
}
