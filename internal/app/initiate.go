package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/emailotp/internal/pkg/clock"
	"github.com/shandysiswandi/emailotp/internal/pkg/config"
	"github.com/shandysiswandi/emailotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/mail"
	"github.com/shandysiswandi/emailotp/internal/pkg/messaging"
	"github.com/shandysiswandi/emailotp/internal/pkg/otp"
	"github.com/shandysiswandi/emailotp/internal/pkg/router"
	"github.com/shandysiswandi/emailotp/internal/pkg/uid"
	"github.com/shandysiswandi/emailotp/internal/pkg/validator"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	pubsubScope     = "https://www.googleapis.com/auth/pubsub"
	redisPingTimeout = 5 * time.Second
)

// configPath resolves CONFIG_PATH, then ./config for LOCAL=true runs and
// /config for containers.
func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() error {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		return err
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		if err := os.Setenv("TZ", tz); err != nil {
			return err
		}
	}

	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })
	return nil
}

func (a *App) initInstrument() error {
	c := a.config
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:           c.GetBool("instrument.enabled"),
		ServiceName:       c.GetString("instrument.service_name"),
		ServiceVersion:    c.GetString("instrument.service_version"),
		Environment:       c.GetString("instrument.env"),
		OTLPEndpoint:      c.GetString("instrument.otlp_endpoint"),
		OTLPSecure:        c.GetBool("instrument.otlp_secure"),
		TraceSampleRatio:  c.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:   c.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:        c.GetArray("instrument.log_mask_fields"),
		PartialMaskFields: c.GetArray("instrument.log_partial_mask_fields"),
	})
	if err != nil {
		return err
	}

	a.ins = ins
	a.onClose("instrument", ins.Shutdown)
	return nil
}

func (a *App) initLibraries() error {
	v, err := validator.NewV10Validator()
	if err != nil {
		return err
	}
	snow, err := uid.NewSnowflake()
	if err != nil {
		return err
	}

	a.validator = v
	a.uid = snow
	a.uuid = uid.NewUUID()
	a.clock = clock.New()
	a.otp = otp.NewRandom()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	return nil
}

// initRedis is optional: without redis.url the otp endpoints run without
// idempotency keys.
func (a *App) initRedis() error {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.Info("redis url is empty, idempotency keys are disabled")
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(a.ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errors.Join(err, rdb.Close())
	}

	a.redis = rdb
	a.idemp = idempotency.New(rdb, a.config.GetString("redis.idempotency_prefix"))
	a.onClose("redis", func(context.Context) error { return rdb.Close() })
	return nil
}

func (a *App) initMail() error {
	c := a.config
	m, err := mail.NewFromDriver(c.GetString("mail.driver"), mail.SMTPConfig{
		Host:               c.GetString("mail.host"),
		Port:               c.GetInt("mail.port"),
		Username:           c.GetString("mail.username"),
		Password:           c.GetString("mail.password"),
		From:               c.GetString("mail.from"),
		DisplayName:        c.GetString("mail.display_name"),
		InsecureSkipVerify: c.GetBool("mail.insecure_skip_verify"),
	})
	if err != nil {
		return err
	}

	a.mail = m
	a.onClose("mail", func(context.Context) error { return m.Close() })
	return nil
}

func (a *App) initMessaging() error {
	c := a.config
	driver := c.GetString("messaging.driver")

	nsqCfg := nsq.NewConfig()
	nsqCfg.DialTimeout = c.GetSecond("messaging.nsq.producer_config.dial_timeout_seconds")
	nsqCfg.ReadTimeout = c.GetSecond("messaging.nsq.producer_config.read_timeout_seconds")
	nsqCfg.WriteTimeout = c.GetSecond("messaging.nsq.producer_config.write_timeout_seconds")

	var psOpts []option.ClientOption
	if strings.TrimSpace(driver) == messaging.DriverGooglePubSub {
		opts, err := a.pubsubOptions()
		if err != nil {
			return err
		}
		psOpts = opts
	}

	m, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		TopicPrefix: c.GetString("messaging.topic_prefix"),
		NSQ: messaging.NSQConfig{
			ProducerAddr:   c.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: nsqCfg,
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      c.GetArray("messaging.kafka.brokers"),
			WriteTimeout: c.GetSecond("messaging.kafka.write_timeout_seconds"),
			RequiredAcks: c.GetInt("messaging.kafka.required_acks"),
		},
		NATS: messaging.NATSConfig{
			URL: c.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(c.GetString("messaging.nats.name")),
				nats.MaxReconnects(c.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(c.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(c.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(c.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     c.GetString("messaging.pubsub.project_id"),
			ClientOptions: psOpts,
		},
	})
	if err != nil {
		return err
	}

	a.messaging = m
	a.onClose("messaging", func(context.Context) error { return m.Close() })
	return nil
}

func (a *App) pubsubOptions() ([]option.ClientOption, error) {
	c := a.config

	var opts []option.ClientOption
	if c.GetBool("messaging.pubsub.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if path := strings.TrimSpace(c.GetString("messaging.pubsub.credentials_file")); path != "" {
		// #nosec G304 -- path comes from the service config.
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		creds, err := google.CredentialsFromJSON(a.ctx, raw, pubsubScope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if endpoint := strings.TrimSpace(c.GetString("messaging.pubsub.endpoint")); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	return opts, nil
}

func (a *App) initHTTPServer() error {
	c := a.config
	a.router = router.NewRouter(router.Config{
		Config:     c,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   c.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              c.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       c.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: c.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      c.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       c.GetSecond("app.server.http.idle_timeout_seconds"),
	}
	return nil
}
