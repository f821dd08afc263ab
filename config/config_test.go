package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, data string) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "pfemem_config.yaml")
	require.NoError(t, os.WriteFile(name, []byte(data), 0644))
	t.Setenv(ConfigEnv, name)
}

func TestLoad(t *testing.T) {
	writeConfig(t, `
connector:
  agentId: "agent-1"
  controllerAddr: ":8081"
  checkInterval: 30s
  natsStoreType: "FILE"
  logLevel: 3
  snmpTimeout: 5s
devices:
  - name: "mx960"
    target: "192.0.2.1"
    community: "public"
  - target: "192.0.2.2"
    version: "3"
    community: "monitor"
    authProtocol: "sha"
    authPassword: "authpass"
`)
	t.Setenv("PFEMEM_CONNECTOR_NATSSTORETYPE", "MEMORY")

	got := load()
	assert.Equal(t, "agent-1", got.Connector.AgentID)
	assert.Equal(t, "pfemem", got.Connector.AppName)
	assert.Equal(t, ":8081", got.Connector.ControllerAddr)
	assert.Equal(t, time.Second*30, got.Connector.CheckInterval)
	assert.Equal(t, "MEMORY", got.Connector.NatsStoreType)
	assert.Equal(t, "pfemem.resources", got.Connector.NatsSubject)
	assert.Equal(t, Debug, got.Connector.LogLevel)
	assert.Equal(t, time.Second*5, got.Connector.SnmpTimeout)
	assert.Equal(t, 1, got.Connector.SnmpRetries)
	assert.Equal(t, "@every 30s", got.Connector.Schedule())

	require.Len(t, got.Devices, 2)
	assert.Equal(t, "mx960", got.Devices[0].ResourceName())
	assert.Equal(t, "192.0.2.2", got.Devices[1].ResourceName())
	assert.Equal(t, "authpass", got.Devices[1].AuthPassword)
	assert.Empty(t, got.Devices.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(ConfigEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	got := load()
	assert.Equal(t, defaults().Connector, got.Connector)
	assert.Empty(t, got.Devices)
}

func TestSchedule(t *testing.T) {
	c := Connector{CheckInterval: time.Minute}
	assert.Equal(t, "@every 1m0s", c.Schedule())
	c.CronSpec = "*/30 * * * * *"
	assert.Equal(t, "*/30 * * * * *", c.Schedule())
}

func TestDeviceSecrets(t *testing.T) {
	t.Setenv(SecKeyEnv, "SECRET")
	dd := Devices{{Target: "192.0.2.1", Community: "public", AuthPassword: "auth"}}

	output, err := yaml.Marshal(dd)
	require.NoError(t, err)
	assert.NotContains(t, string(output), "public")
	assert.NotContains(t, string(output), ": auth")
	assert.Contains(t, string(output), "community: "+SecVerPrefix)

	var got Devices
	require.NoError(t, yaml.Unmarshal(output, &got))
	assert.Equal(t, dd, got)

	t.Setenv(SecKeyEnv, "")
	assert.Error(t, yaml.Unmarshal(output, &got))
}

func TestCrypt(t *testing.T) {
	message, secret := []byte("public"), []byte("SECRET")
	encrypted, err := Encrypt(message, secret)
	require.NoError(t, err)
	decrypted, err := Decrypt(encrypted, secret)
	require.NoError(t, err)
	assert.Equal(t, message, decrypted)

	_, err = Decrypt(encrypted, []byte("OTHER"))
	assert.ErrorIs(t, err, ErrDecrypt)
	_, err = Decrypt([]byte("short"), secret)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDevicesValidate(t *testing.T) {
	dd := Devices{
		{Target: "a", Community: "public"},
		{Target: "a", Community: "public"},
		{Target: "b"},
		{Target: "c", Version: "3", Community: "user", PrivacyProtocol: "aes"},
		{Target: "d", Version: "1", Community: "public"},
	}
	errs := dd.Validate()
	assert.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrInvalidDevice)
	}

	d, ok := dd.Lookup("c")
	assert.True(t, ok)
	assert.Equal(t, "3", d.Version)
	_, ok = dd.Lookup("x")
	assert.False(t, ok)
}

func TestHashsum(t *testing.T) {
	h1, err := Hashsum(defaults())
	require.NoError(t, err)
	h2, err := defaults().Hashsum()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	c := defaults()
	c.Connector.CheckInterval = time.Hour
	h3, err := c.Hashsum()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "Debug", Debug.String())
	assert.Equal(t, "Unknown", LogLevel(7).String())
	assert.EqualValues(t, 3, Connector{LogLevel: Error}.ZerologLevel())
	assert.EqualValues(t, -1, Connector{LogLevel: 9}.ZerologLevel())
}

func TestInitTracerProvider(t *testing.T) {
	assert.Equal(t, "grpc", exporterKind("http://localhost:4317"))
	assert.Equal(t, "http", exporterKind("http://localhost:4318"))
	assert.Equal(t, "http", exporterKind("https://otel.example.com"))
	assert.Equal(t, "", exporterKind(""))

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	_, err := defaults().InitTracerProvider()
	assert.ErrorIs(t, err, ErrTelemetryNotConfigured)
}
