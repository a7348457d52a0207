package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bridj/tripmailer/internal/pkg/idempotency"
	"github.com/bridj/tripmailer/internal/pkg/mail"
	"github.com/bridj/tripmailer/internal/pkg/messaging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

const pingTimeout = 5 * time.Second

// waitReady pings a dependency with exponential backoff, starting at 250ms,
// up to app.startup.ping_retries extra attempts.
func (a *App) waitReady(name string, ping func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(a.config.GetUint("app.startup.ping_retries")), retry.NewExponential(250*time.Millisecond))

	return retry.Do(a.ctx, backoff, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			slog.WarnContext(ctx, "dependency not ready", "name", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// initDatabase opens the read-only pool used to load travelers, bookings,
// zones and locations.
func (a *App) initDatabase() {
	pc, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		fatal("failed to parse database url", err)
	}

	const pool = "database.pool."
	pc.MaxConns = a.config.GetInt32(pool + "max_conns")
	pc.MinConns = a.config.GetInt32(pool + "min_conns")
	pc.MaxConnLifetime = a.config.GetSecond(pool + "max_conn_lifetime_seconds")
	pc.MaxConnIdleTime = a.config.GetSecond(pool + "max_conn_idle_seconds")
	pc.HealthCheckPeriod = a.config.GetSecond(pool + "health_check_period_seconds")

	conn, err := pgxpool.NewWithConfig(a.ctx, pc)
	if err != nil {
		fatal("failed to create database pool", err)
	}
	if err := a.waitReady("database", conn.Ping); err != nil {
		fatal("database unreachable", err)
	}

	a.dbConn = conn
	a.onClose("Database", func(context.Context) error { conn.Close(); return nil })
}

// initCache connects Redis, which only backs the event idempotency keys.
func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		fatal("failed to parse redis url", err)
	}

	rdb := redis.NewClient(opt)
	if err := a.waitReady("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		fatal("redis unreachable", err)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(rdb, a.config.GetString("redis.idempotency_prefix"))
	a.onClose("Redis", func(context.Context) error { return rdb.Close() })
}

func (a *App) initMail() {
	m, err := mail.NewMandrill(mail.MandrillConfig{
		APIKey:   a.config.GetString("mail.mandrill.api_key"),
		BaseURL:  a.config.GetString("mail.mandrill.base_url"),
		From:     a.config.GetString("mail.from"),
		FromName: a.config.GetString("mail.from_name"),
		Timeout:  a.config.GetSecond("mail.mandrill.timeout_seconds"),
	})
	if err != nil {
		fatal("failed to init mail provider", err)
	}

	a.mailer = m
	a.onClose("Mail", func(context.Context) error { return m.Close() })
}

// initMessaging connects the event broker. With no driver configured the
// service still serves HTTP, but no event triggers an email.
func (a *App) initMessaging() {
	driver := strings.TrimSpace(a.config.GetString("messaging.driver"))
	if driver == "" {
		slog.Warn("messaging driver not configured, event consumers disabled")
		return
	}

	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		Kafka: a.kafkaConfig(),
		NATS:  a.natsConfig(),
	})
	if err != nil {
		fatal("failed to init messaging", err, "driver", driver)
	}

	a.messaging = client
	a.onClose("Messaging", func(context.Context) error { return client.Close() })
}

func (a *App) kafkaConfig() messaging.KafkaConfig {
	const k = "messaging.kafka."

	offset := kafka.LastOffset
	if a.config.GetString(k+"start_offset") == "first" {
		offset = kafka.FirstOffset
	}

	return messaging.KafkaConfig{
		Brokers: a.config.GetArray(k + "brokers"),
		Dialer: &kafka.Dialer{
			ClientID:  a.config.GetString(k + "client_id"),
			Timeout:   a.config.GetSecond(k + "dial_timeout_seconds"),
			DualStack: true,
		},
		MaxWait:     a.config.GetSecond(k + "max_wait_seconds"),
		StartOffset: offset,
	}
}

func (a *App) natsConfig() messaging.NATSConfig {
	const n = "messaging.nats."

	return messaging.NATSConfig{
		URL: a.config.GetString(n + "url"),
		Options: []nats.Option{
			nats.Name(a.config.GetString(n + "name")),
			nats.MaxReconnects(a.config.GetInt(n + "max_reconnects")),
			nats.Timeout(a.config.GetSecond(n + "timeout_seconds")),
			nats.ReconnectWait(a.config.GetSecond(n + "reconnect_wait_seconds")),
			nats.PingInterval(a.config.GetSecond(n + "ping_interval_seconds")),
			nats.MaxPingsOutstanding(a.config.GetInt(n + "max_pings_outstanding")),
			nats.RetryOnFailedConnect(a.config.GetBool(n + "retry_on_failed_connect")),
		},
	}
}
