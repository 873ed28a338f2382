package config

import (
	"path"
	"strings"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/env"

	"go.uber.org/zap"
)

const (
	ListenAddrEnv          = "LISTEN_ADDR"
	AdminPortEnv           = "ADMIN_PORT"
	DatabaseUrlEnv         = "DATABASE_URL"
	RootPathEnv            = "ROOT_PATH"
	PollIntervalEnv        = "POLL_INTERVAL"
	PingIntervalEnv        = "PING_INTERVAL"
	InboundQueueSizeEnv    = "INBOUND_QUEUE_SIZE"
	OutboundQueueSizeEnv   = "OUTBOUND_QUEUE_SIZE"
	DisconnectQueueSizeEnv = "DISCONNECT_QUEUE_SIZE"
	LogLevelEnv            = "LOG_LEVEL"
)

const (
	DefaultListenAddr          = ":4567"
	DefaultAdminPort           = 8080
	DefaultPollInterval        = 50 * time.Millisecond
	DefaultPingInterval        = time.Second
	DefaultInboundQueueSize    = 100
	DefaultOutboundQueueSize   = 100
	DefaultDisconnectQueueSize = 1000
)

type QueueSizes struct {
	Inbound    int
	Outbound   int
	Disconnect int
}

type Config struct {
	Logger *zap.Logger

	ListenAddr     string
	AdminPort      int
	DatabaseURL    string
	MigrationsPath string

	PollInterval time.Duration
	PingInterval time.Duration

	Queues QueueSizes
}

func Load() (Config, error) {
	logger, err := newLogger(env.GetStringOrDefault(LogLevelEnv, "info"))
	if err != nil {
		return Config{}, err
	}

	dbURL := env.MustGetString(DatabaseUrlEnv)
	rootPath := env.MustGetString(RootPathEnv)

	adminPort, err := env.GetIntOrDefault(AdminPortEnv, DefaultAdminPort)
	if err != nil {
		return Config{}, err
	}

	pollInterval, err := env.GetDurationOrDefault(PollIntervalEnv, DefaultPollInterval)
	if err != nil {
		return Config{}, err
	}

	pingInterval, err := env.GetDurationOrDefault(PingIntervalEnv, DefaultPingInterval)
	if err != nil {
		return Config{}, err
	}

	queues, err := loadQueueSizes()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Logger:         logger,
		ListenAddr:     env.GetStringOrDefault(ListenAddrEnv, DefaultListenAddr),
		AdminPort:      adminPort,
		DatabaseURL:    dbURL,
		MigrationsPath: path.Join(rootPath, "db", "migrations"),
		PollInterval:   pollInterval,
		PingInterval:   pingInterval,
		Queues:         queues,
	}, nil
}

func loadQueueSizes() (QueueSizes, error) {
	inbound, err := env.GetIntOrDefault(InboundQueueSizeEnv, DefaultInboundQueueSize)
	if err != nil {
		return QueueSizes{}, err
	}

	outbound, err := env.GetIntOrDefault(OutboundQueueSizeEnv, DefaultOutboundQueueSize)
	if err != nil {
		return QueueSizes{}, err
	}

	disconnect, err := env.GetIntOrDefault(DisconnectQueueSizeEnv, DefaultDisconnectQueueSize)
	if err != nil {
		return QueueSizes{}, err
	}

	return QueueSizes{Inbound: inbound, Outbound: outbound, Disconnect: disconnect}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
