package config

import (
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/logzer"
	"github.com/sulefrederickjohne/pfememory/transit"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"
)

var (
	once sync.Once
	cfg  *Config
)

// SecVerPrefix marks encrypted secrets in config file
const SecVerPrefix = "_v1_"

// LogLevel defines levels in logrus-style
type LogLevel int

// Enum levels
const (
	Error LogLevel = iota
	Warn
	Info
	Debug
	Trace
)

func (l LogLevel) String() string {
	if l < Error || l > Trace {
		return "Unknown"
	}
	return [...]string{"Error", "Warn", "Info", "Debug", "Trace"}[l]
}

// Nats defines the embedded NATS server and publishing settings
type Nats struct {
	// NatsDisabled turns off publishing of poll results
	NatsDisabled bool `env:"NATSDISABLED" yaml:"natsDisabled"`
	// NatsHost accepts "host:port" to listen, port -1 picks a random one
	NatsHost        string `env:"NATSHOST" yaml:"natsHost"`
	NatsMaxPayload  int32  `env:"NATSMAXPAYLOAD" yaml:"-"`
	NatsMonitorPort int    `env:"NATSMONITORPORT" yaml:"-"`
	NatsStoreDir    string `env:"NATSSTOREDIR" yaml:"natsFilestoreDir"`
	// NatsStoreType accepts "FILE"|"MEMORY"
	NatsStoreType string `env:"NATSSTORETYPE" yaml:"natsStoreType"`
	// How long messages are kept
	NatsStoreMaxAge time.Duration `env:"NATSSTOREMAXAGE" yaml:"natsStoreMaxAge"`
	// How many bytes are allowed in the stream
	NatsStoreMaxBytes int64 `env:"NATSSTOREMAXBYTES" yaml:"natsStoreMaxBytes"`
	// How many messages are allowed in the stream
	NatsStoreMaxMsgs int64  `env:"NATSSTOREMAXMSGS" yaml:"natsStoreMaxMsgs"`
	NatsSubject      string `env:"NATSSUBJECT" yaml:"natsSubject"`
	// NatsServerConfigFile overrides server options (debug only)
	NatsServerConfigFile string `env:"NATSSERVERCONFIGFILE" yaml:"natsServerConfigFile"`
}

// Snmp defines SNMP session settings shared by devices
type Snmp struct {
	SnmpTimeout        time.Duration `env:"SNMPTIMEOUT" yaml:"snmpTimeout"`
	SnmpRetries        int           `env:"SNMPRETRIES" yaml:"snmpRetries"`
	SnmpMaxRepetitions uint32        `env:"SNMPMAXREPETITIONS" yaml:"snmpMaxRepetitions"`
}

// Connector defines the connector configuration
// see GetConfig() for defaults
type Connector struct {
	transit.AgentIdentity `yaml:",inline"`

	// ControllerAddr accepts value for combined "host:port"
	// used as `http.Server{Addr}`
	ControllerAddr         string        `env:"CONTROLLERADDR" yaml:"controllerAddr"`
	ControllerCertFile     string        `env:"CONTROLLERCERTFILE" yaml:"controllerCertFile"`
	ControllerKeyFile      string        `env:"CONTROLLERKEYFILE" yaml:"controllerKeyFile"`
	ControllerReadTimeout  time.Duration `env:"CONTROLLERREADTIMEOUT" yaml:"-"`
	ControllerWriteTimeout time.Duration `env:"CONTROLLERWRITETIMEOUT" yaml:"-"`
	ControllerStartTimeout time.Duration `env:"CONTROLLERSTARTTIMEOUT" yaml:"-"`
	ControllerStopTimeout  time.Duration `env:"CONTROLLERSTOPTIMEOUT" yaml:"-"`

	// CheckInterval defines poll period, CronSpec overrides it
	CheckInterval time.Duration `env:"CHECKINTERVAL" yaml:"checkInterval"`
	// CronSpec accepts cron expression with seconds field
	CronSpec string `env:"CRONSPEC" yaml:"cronSpec"`

	ExportProm bool `env:"EXPORTPROM" yaml:"exportProm"`

	// LogCondense accepts time duration for condensing similar records
	// if 0 turn off condensing
	LogCondense time.Duration `env:"LOGCONDENSE" yaml:"logCondense"`
	// LogFile accepts file path to log in addition to stdout
	LogFile        string `env:"LOGFILE" yaml:"logFile"`
	LogFileMaxSize int64  `env:"LOGFILEMAXSIZE" yaml:"logFileMaxSize"`
	// Log files are rotated count times before being removed.
	// If count is 0, old versions are removed rather than rotated.
	LogFileRotate int      `env:"LOGFILEROTATE" yaml:"logFileRotate"`
	LogLevel      LogLevel `env:"LOGLEVEL" yaml:"logLevel"`
	LogColors     bool     `env:"LOGCOLORS" yaml:"logColors"`
	LogTimeFormat string   `env:"LOGTIMEFORMAT" yaml:"logTimeFormat"`

	Nats `yaml:",inline"`
	Snmp `yaml:",inline"`
}

// Schedule returns the cron spec of polling
func (c Connector) Schedule() string {
	if c.CronSpec != "" {
		return c.CronSpec
	}
	return fmt.Sprintf("@every %s", c.CheckInterval)
}

// Config defines the connector and its devices
type Config struct {
	Connector Connector `envPrefix:"CONNECTOR_" yaml:"connector"`
	Devices   Devices   `envPrefix:"DEVICES_" yaml:"devices"`
}

func defaults() Config {
	return Config{
		Connector: Connector{
			AgentIdentity: transit.AgentIdentity{
				AgentID: "pfemem-connector",
				AppName: "pfemem",
				AppType: "PFEMEM",
			},
			ControllerAddr:         ":8099",
			ControllerReadTimeout:  time.Second * 10,
			ControllerWriteTimeout: time.Second * 20,
			ControllerStartTimeout: time.Second * 4,
			ControllerStopTimeout:  time.Second * 4,
			CheckInterval:          time.Minute,
			LogCondense:            0,
			LogFileMaxSize:         1024 * 1024 * 10, // 10MB
			LogFileRotate:          5,
			LogLevel:               Warn,
			LogColors:              false,
			LogTimeFormat:          time.RFC3339,
			Nats: Nats{
				NatsHost:          "127.0.0.1:4222",
				NatsMaxPayload:    1024 * 1024 * 8, // 8MB
				NatsMonitorPort:   0,
				NatsStoreDir:      "natsstore",
				NatsStoreType:     "FILE",
				NatsStoreMaxAge:   time.Hour * 24 * 10, // 10days
				NatsStoreMaxBytes: 1024 * 1024 * 1024,  // 1GB
				NatsStoreMaxMsgs:  1_000_000,
				NatsSubject:       "pfemem.resources",
			},
			Snmp: Snmp{
				SnmpTimeout:        time.Second * 2,
				SnmpRetries:        1,
				SnmpMaxRepetitions: 10,
			},
		},
		// create empty devices to support partial setting with struct-path
		// 4 items should be enough
		Devices: Devices{{}, {}, {}, {}},
	}
}

// GetConfig implements Singleton pattern
func GetConfig() *Config {
	once.Do(func() {
		/* buffer the logging while configuring */
		logBuf := &logzer.LogBuffer{
			Level: zerolog.TraceLevel,
			Size:  16,
		}
		log.Logger = zerolog.New(logBuf).
			With().Timestamp().Caller().Logger()
		log.Info().Msgf("Build info: %s / %s", buildTag, buildTime)

		applyFlags()
		cfg = load()

		/* init logger and flush buffer */
		w := cfg.initLogger()
		logzer.WriteLogBuffer(logBuf, w)
	})
	return cfg
}

// load merges defaults, file, and env
func load() *Config {
	c := new(Config)
	*c = defaults()
	if data, err := os.ReadFile(c.ConfigPath()); err != nil {
		log.Warn().Err(err).
			Str("configPath", c.ConfigPath()).
			Msg("could not read config")
	} else if err := yaml.Unmarshal(data, c); err != nil {
		log.Err(err).
			Str("configPath", c.ConfigPath()).
			Msg("could not parse config")
	}
	if err := applyEnv(c); err != nil {
		log.Warn().Err(err).
			Msg("could not apply env vars")
	}
	c.Devices = c.Devices.Configured()
	for _, err := range c.Devices.Validate() {
		log.Warn().Err(err).Msg("invalid device")
	}
	return c
}

// ConfigPath returns config file path
func (cfg Config) ConfigPath() string {
	configPath := os.Getenv(ConfigEnv)
	if configPath == "" {
		configPath = ConfigName
		if wd, err := os.Getwd(); err == nil {
			configPath = path.Join(wd, ConfigName)
		}
	}
	return configPath
}

// InitTracerProvider inits provider
func (cfg Config) InitTracerProvider() (*tracesdk.TracerProvider, error) {
	return initOTLP(fmt.Sprintf("%s:%s:%s",
		cfg.Connector.AppType, cfg.Connector.AppName, cfg.Connector.AgentID))
}

// Hashsum calculates FNV non-cryptographic hash suitable for checking the equality
func (cfg Config) Hashsum() ([]byte, error) {
	return Hashsum(cfg)
}

// ZerologLevel maps the configured level
func (c Connector) ZerologLevel() zerolog.Level {
	lvl := min(max(c.LogLevel, Error), Trace)
	return [...]zerolog.Level{3, 2, 1, 0, -1}[lvl]
}

func (cfg Config) initLogger() zerolog.LevelWriter {
	lvl := cfg.Connector.ZerologLevel()
	condense := cfg.Connector.LogCondense
	if lvl <= zerolog.DebugLevel {
		condense = 0
	}
	opts := []logzer.Option{
		logzer.WithColors(cfg.Connector.LogColors),
		logzer.WithCondense(condense),
		logzer.WithLastErrors(10),
		logzer.WithLevel(lvl),
		logzer.WithTimeFormat(cfg.Connector.LogTimeFormat),
	}
	if cfg.Connector.LogFile != "" {
		opts = append(opts, logzer.WithLogFile(&logzer.LogFile{
			FilePath: cfg.Connector.LogFile,
			MaxSize:  cfg.Connector.LogFileMaxSize,
			Rotate:   cfg.Connector.LogFileRotate,
		}))
	}

	/* prevent writes in global logger */
	log.Logger = zerolog.Nop()
	/* reset to defaults */
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	w := logzer.NewLoggerWriter(opts...)
	log.Logger = zerolog.New(w).
		With().Timestamp().Caller().
		Logger()
	/* route slog and standard logger */
	slog.SetDefault(slog.New(&logzer.SLogHandler{CallerSkipFrame: 3}))
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
	return w
}

// IsSecret reports whether the value is stored encrypted
func IsSecret(s string) bool {
	return strings.HasPrefix(s, SecVerPrefix)
}
