package nats

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	natsd "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StreamName is the JetStream stream holding poll results
const StreamName = "pfemem"

var (
	ErrNATS        = errors.New("nats error")
	ErrUnavailable = fmt.Errorf("%w: unavailable", ErrNATS)

	s = new(state)
)

type state struct {
	sync.Mutex

	config Config
	server *natsd.Server
	nc     *nats.Conn
	js     nats.JetStreamContext
	subs   []*nats.Subscription
}

// Config defines NATS configurable options
type Config struct {
	// Host accepts "host:port", port -1 picks a random one
	Host          string
	MaxPayload    int32
	MonitorPort   int
	StoreDir      string
	StoreType     string
	StoreMaxAge   time.Duration
	StoreMaxBytes int64
	StoreMaxMsgs  int64
	Subjects      []string
	// ConfigFile overrides server options (debug only)
	ConfigFile string
}

func (c Config) serverOptions() (*natsd.Options, error) {
	opts := &natsd.Options{}
	if c.ConfigFile != "" {
		var err error
		if opts, err = natsd.ProcessConfigFile(c.ConfigFile); err != nil {
			return nil, err
		}
	} else {
		host, port, err := net.SplitHostPort(c.Host)
		if err != nil {
			return nil, err
		}
		if opts.Port, err = strconv.Atoi(port); err != nil {
			return nil, err
		}
		opts.Host = host
		opts.MaxPayload = c.MaxPayload
		opts.HTTPHost = "127.0.0.1"
		opts.HTTPPort = c.MonitorPort
	}
	opts.JetStream = true
	opts.StoreDir = c.StoreDir
	opts.NoSigs = true
	return opts, nil
}

func (c Config) streamConfig() *nats.StreamConfig {
	storage := nats.FileStorage
	if c.StoreType == "MEMORY" {
		storage = nats.MemoryStorage
	}
	return &nats.StreamConfig{
		Name:     StreamName,
		Subjects: c.Subjects,
		Storage:  storage,
		MaxAge:   c.StoreMaxAge,
		MaxBytes: c.StoreMaxBytes,
		MaxMsgs:  c.StoreMaxMsgs,
	}
}

// StartServer runs embedded NATS with JetStream and connects the publisher
func StartServer(config Config) error {
	s.Lock()
	defer s.Unlock()

	s.config = config
	if s.server != nil {
		return nil
	}
	opts, err := config.serverOptions()
	if err != nil {
		log.Warn().Err(err).Msg("nats could not prepare options")
		return err
	}
	server, err := natsd.NewServer(opts)
	if err != nil {
		log.Warn().Err(err).Msg("nats NewServer failed")
		return err
	}
	server.SetLoggerV2(serverLogger{},
		zerolog.GlobalLevel() <= zerolog.DebugLevel,
		zerolog.GlobalLevel() <= zerolog.TraceLevel,
		false)
	go server.Start()
	if !server.ReadyForConnections(time.Second * 10) {
		server.Shutdown()
		return fmt.Errorf("%w: server not ready", ErrNATS)
	}

	nc, err := nats.Connect(server.ClientURL(), nats.Name("pfemem-publisher"))
	if err != nil {
		server.Shutdown()
		log.Warn().Err(err).Msg("nats publisher failed to connect")
		return err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		server.Shutdown()
		return err
	}
	if _, err := js.StreamInfo(StreamName); errors.Is(err, nats.ErrStreamNotFound) {
		_, err = js.AddStream(config.streamConfig())
		if err != nil {
			nc.Close()
			server.Shutdown()
			log.Warn().Err(err).Msg("nats could not add stream")
			return err
		}
	} else if err != nil {
		nc.Close()
		server.Shutdown()
		return err
	} else if _, err := js.UpdateStream(config.streamConfig()); err != nil {
		log.Warn().Err(err).Msg("nats could not update stream")
	}

	s.server, s.nc, s.js = server, nc, js
	log.Info().
		Func(func(e *zerolog.Event) {
			if zerolog.GlobalLevel() <= zerolog.DebugLevel {
				e.Interface("streamConfig", config.streamConfig())
			}
		}).
		Msgf("nats started at: %s", server.ClientURL())
	return nil
}

// StopServer shutdowns NATS
func StopServer() {
	s.Lock()
	defer s.Unlock()

	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
	if s.nc != nil {
		s.nc.Close()
		s.nc, s.js = nil, nil
	}
	if s.server != nil {
		s.server.Shutdown()
		s.server.WaitForShutdown()
		s.server = nil
	}
}

// ClientURL returns the url of running server
func ClientURL() string {
	s.Lock()
	defer s.Unlock()
	if s.server == nil {
		return ""
	}
	return s.server.ClientURL()
}

// Publish stores the message in the stream
func Publish(subject string, msg []byte) error {
	s.Lock()
	js := s.js
	s.Unlock()

	if js == nil {
		return ErrUnavailable
	}
	if _, err := js.Publish(subject, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrNATS, err)
	}
	return nil
}

// Subscribe adds a durable consumer, messages are acked if handler succeeds
func Subscribe(durable, subject string, handler func([]byte) error) error {
	s.Lock()
	defer s.Unlock()

	if s.js == nil {
		return ErrUnavailable
	}
	sub, err := s.js.Subscribe(subject,
		func(msg *nats.Msg) {
			if err := handler(msg.Data); err != nil {
				log.Info().Err(err).Str("durable", durable).Msg("nats handler failed")
				_ = msg.Nak()
				return
			}
			_ = msg.Ack()
		},
		nats.BindStream(StreamName),
		nats.Durable(durable),
		nats.ManualAck(),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNATS, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

type serverLogger struct{}

func (serverLogger) Noticef(format string, v ...any) {
	log.Info().Msgf("nats: "+format, v...)
}

func (serverLogger) Warnf(format string, v ...any) {
	log.Warn().Msgf("nats: "+format, v...)
}

func (serverLogger) Fatalf(format string, v ...any) {
	log.Error().Msgf("nats: "+format, v...)
}

func (serverLogger) Errorf(format string, v ...any) {
	log.Error().Msgf("nats: "+format, v...)
}

func (serverLogger) Debugf(format string, v ...any) {
	log.Debug().Msgf("nats: "+format, v...)
}

func (serverLogger) Tracef(format string, v ...any) {
	log.Trace().Msgf("nats: "+format, v...)
}
