package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	snmp "github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/config"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem"
)

const (
	// supported auth protocols
	md5    = "md5"
	sha    = "sha"
	sha256 = "sha256"
	sha512 = "sha512"
	// supported privacy protocols
	aes    = "aes"
	aes256 = "aes256"
	des    = "des"
)

var (
	ErrSNMP           = errors.New("snmp error")
	ErrValidation     = fmt.Errorf("%w: validation failed", ErrSNMP)
	ErrNotDetected    = fmt.Errorf("%w: device not detected", ErrSNMP)
	ErrUnknownAuth    = fmt.Errorf("%w: unknown authentication protocol", ErrSNMP)
	ErrUnknownPriv    = fmt.Errorf("%w: unknown privacy protocol", ErrSNMP)
	ErrUnknownVersion = fmt.Errorf("%w: unknown version", ErrSNMP)
)

// Target describes SNMP agent and session settings
type Target struct {
	Host string
	Port uint16
	// Version accepts "2c"|"3"
	Version string
	// Community is v2c community or v3 user name
	Community       string
	AuthProtocol    string
	AuthPassword    string
	PrivacyProtocol string
	PrivacyPassword string

	Timeout        time.Duration
	Retries        int
	MaxRepetitions uint32
}

// NewTarget returns target of the configured device
func NewTarget(device config.Device, settings config.Snmp) Target {
	return Target{
		Host:            device.Target,
		Port:            device.Port,
		Version:         device.Version,
		Community:       device.Community,
		AuthProtocol:    device.AuthProtocol,
		AuthPassword:    device.AuthPassword,
		PrivacyProtocol: device.PrivacyProtocol,
		PrivacyPassword: device.PrivacyPassword,
		Timeout:         settings.SnmpTimeout,
		Retries:         settings.SnmpRetries,
		MaxRepetitions:  settings.SnmpMaxRepetitions,
	}
}

func (t Target) isV3() bool {
	v := strings.ToLower(t.Version)
	return v == "3" || v == "v3"
}

// Session is the subset of gosnmp.GoSNMP used for fetching
type Session interface {
	GetNext(oids []string) (*snmp.SnmpPacket, error)
	BulkWalkAll(rootOid string) ([]snmp.SnmpPDU, error)
}

// DialFunc opens a session, the returned func closes it
type DialFunc func(ctx context.Context, target Target) (Session, func() error, error)

// SnmpClient fetches plugin tables
type SnmpClient struct {
	Dial DialFunc
}

// NewSnmpClient returns client with gosnmp sessions
func NewSnmpClient() *SnmpClient {
	return &SnmpClient{Dial: dial}
}

func dial(ctx context.Context, target Target) (Session, func() error, error) {
	goSnmp, err := setup(target)
	if err != nil {
		return nil, nil, err
	}
	goSnmp.Context = ctx
	if err := goSnmp.Connect(); err != nil {
		return nil, nil, fmt.Errorf("%w: connect: %w", ErrSNMP, err)
	}
	return goSnmp, goSnmp.Conn.Close, nil
}

// Fetch detects the device and walks the plugin columns into table rows
func (client *SnmpClient) Fetch(ctx context.Context, target Target, plugin pfemem.Plugin) ([]pfemem.Row, error) {
	sess, closeFn, err := client.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()

	if err := Detect(sess, plugin.Detect); err != nil {
		return nil, err
	}
	var pdus []snmp.SnmpPDU
	for _, col := range plugin.Fetch.Columns() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := sess.BulkWalkAll(col)
		if err != nil {
			return nil, fmt.Errorf("%w: walk %s: %w", ErrSNMP, col, err)
		}
		log.Debug().Str("target", target.Host).Str("oid", col).Int("pdus", len(res)).Msg("walked")
		pdus = append(pdus, res...)
	}
	return AssembleRows(plugin.Fetch, pdus), nil
}

// Detect checks the device exposes the subtree
func Detect(sess Session, prefix string) error {
	packet, err := sess.GetNext([]string{prefix})
	if err != nil {
		return fmt.Errorf("%w: detect: %w", ErrSNMP, err)
	}
	for _, pdu := range packet.Variables {
		switch pdu.Type {
		case snmp.EndOfMibView, snmp.NoSuchObject, snmp.NoSuchInstance:
			continue
		}
		if strings.HasPrefix(pdu.Name, prefix+".") {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotDetected, prefix)
}

func setup(target Target) (*snmp.GoSNMP, error) {
	if err := validate(target); err != nil {
		log.Err(err).Str("target", target.Host).Msg("could not setup snmp")
		return nil, err
	}
	port := target.Port
	if port == 0 {
		port = 161
	}
	goSnmp := &snmp.GoSNMP{
		Target:         target.Host,
		Port:           port,
		Timeout:        target.Timeout,
		Retries:        target.Retries,
		MaxRepetitions: target.MaxRepetitions,
		MaxOids:        snmp.MaxOids,
	}
	if goSnmp.Timeout == 0 {
		goSnmp.Timeout = time.Second * 2
	}
	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		goSnmp.Logger = snmp.NewLogger(&log.Logger)
	}

	if !target.isV3() {
		goSnmp.Version = snmp.Version2c
		goSnmp.Community = target.Community
		return goSnmp, nil
	}

	authProtocol, privProtocol := snmp.NoAuth, snmp.NoPriv
	msgFlags := snmp.NoAuthNoPriv
	switch strings.ToLower(target.AuthProtocol) {
	case "":
	case md5:
		authProtocol = snmp.MD5
	case sha:
		authProtocol = snmp.SHA
	case sha256:
		authProtocol = snmp.SHA256
	case sha512:
		authProtocol = snmp.SHA512
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAuth, target.AuthProtocol)
	}
	if authProtocol != snmp.NoAuth {
		msgFlags = snmp.AuthNoPriv
		switch strings.ToLower(target.PrivacyProtocol) {
		case "":
		case des:
			privProtocol = snmp.DES
		case aes:
			privProtocol = snmp.AES
		case aes256:
			privProtocol = snmp.AES256
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownPriv, target.PrivacyProtocol)
		}
		if privProtocol != snmp.NoPriv {
			msgFlags = snmp.AuthPriv
		}
	}

	goSnmp.Version = snmp.Version3
	goSnmp.SecurityModel = snmp.UserSecurityModel
	goSnmp.MsgFlags = msgFlags
	goSnmp.SecurityParameters = &snmp.UsmSecurityParameters{
		UserName:                 target.Community,
		AuthenticationProtocol:   authProtocol,
		AuthenticationPassphrase: target.AuthPassword,
		PrivacyProtocol:          privProtocol,
		PrivacyPassphrase:        target.PrivacyPassword,
	}
	return goSnmp, nil
}

func validate(target Target) error {
	var errs []string
	if target.Host == "" {
		errs = append(errs, "target required")
	}
	switch strings.ToLower(target.Version) {
	case "", "2c", "v2c", "3", "v3":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVersion, target.Version)
	}
	if target.Community == "" {
		errs = append(errs, "name required")
	}
	if target.isV3() {
		if target.AuthProtocol != "" && target.AuthPassword == "" {
			errs = append(errs, "authentication password required")
		}
		if target.PrivacyProtocol != "" && target.PrivacyPassword == "" {
			errs = append(errs, "privacy password required")
		}
		if target.PrivacyProtocol != "" && target.AuthProtocol == "" {
			errs = append(errs, "privacy requires authentication")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}
	return nil
}
