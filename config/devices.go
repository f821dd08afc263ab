package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Device defines SNMP agent settings of a polled router
type Device struct {
	// Name is used as resource name, defaults to Target
	Name   string `env:"NAME" yaml:"name" json:"name"`
	Target string `env:"TARGET" yaml:"target" json:"target"`
	Port   uint16 `env:"PORT" yaml:"port,omitempty" json:"port,omitempty"`
	// Version accepts "2c"|"3", "2c" by default
	Version string `env:"VERSION" yaml:"version,omitempty" json:"version,omitempty"`
	// Community is v2c community or v3 user name
	Community       string `env:"COMMUNITY" yaml:"community" json:"-"`
	AuthProtocol    string `env:"AUTHPROTOCOL" yaml:"authProtocol,omitempty" json:"authProtocol,omitempty"`
	AuthPassword    string `env:"AUTHPASSWORD" yaml:"authPassword,omitempty" json:"-"`
	PrivacyProtocol string `env:"PRIVACYPROTOCOL" yaml:"privacyProtocol,omitempty" json:"privacyProtocol,omitempty"`
	PrivacyPassword string `env:"PRIVACYPASSWORD" yaml:"privacyPassword,omitempty" json:"-"`
}

// ResourceName returns Name or Target
func (d Device) ResourceName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Target
}

// MarshalYAML implements yaml.Marshaler interface
// encrypts the secret fields if SecKeyEnv is set
func (d Device) MarshalYAML() (any, error) {
	type plain Device
	p := plain(d)
	key := os.Getenv(SecKeyEnv)
	if key == "" {
		return p, nil
	}
	for _, s := range []*string{&p.Community, &p.AuthPassword, &p.PrivacyPassword} {
		if *s == "" || IsSecret(*s) {
			continue
		}
		encrypted, err := Encrypt([]byte(*s), []byte(key))
		if err != nil {
			return nil, err
		}
		*s = fmt.Sprintf("%s%x", SecVerPrefix, encrypted)
	}
	return p, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
// decrypts the secret fields
func (d *Device) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Device
	if err := unmarshal((*plain)(d)); err != nil {
		return err
	}
	for _, s := range []*string{&d.Community, &d.AuthPassword, &d.PrivacyPassword} {
		decrypted, err := decryptSecret(*s)
		if err != nil {
			return err
		}
		*s = decrypted
	}
	return nil
}

func decryptSecret(s string) (string, error) {
	if !IsSecret(s) {
		return s, nil
	}
	key := os.Getenv(SecKeyEnv)
	if key == "" {
		return "", fmt.Errorf("unmarshaler error: %s SecKeyEnv is empty", SecVerPrefix)
	}
	var encrypted []byte
	if _, err := fmt.Sscanf(s, SecVerPrefix+"%x", &encrypted); err != nil {
		return "", err
	}
	decrypted, err := Decrypt(encrypted, []byte(key))
	if err != nil {
		return "", err
	}
	return string(decrypted), nil
}

// Devices defines a set of devices
type Devices []Device

// UnmarshalYAML implements the yaml.Unmarshaler interface.
// Applies decode to items in collection for setting only fields present in yaml.
func (dd *Devices) UnmarshalYAML(value *yaml.Node) error {
	for i, node := range value.Content {
		if len(*dd) < i+1 {
			*dd = append(*dd, Device{})
		}
		if err := node.Decode(&(*dd)[i]); err != nil {
			return err
		}
	}
	return nil
}

// Configured returns devices having a target
func (dd Devices) Configured() Devices {
	res := make(Devices, 0, len(dd))
	for _, d := range dd {
		if d.Target != "" {
			res = append(res, d)
		}
	}
	return res
}

// Lookup returns the device by resource name
func (dd Devices) Lookup(name string) (Device, bool) {
	for _, d := range dd {
		if d.ResourceName() == name {
			return d, true
		}
	}
	return Device{}, false
}

// ErrInvalidDevice is returned by Validate
var ErrInvalidDevice = errors.New("invalid device")

// Validate checks required fields and resource names uniqueness
func (dd Devices) Validate() []error {
	var errs []error
	seen := make(map[string]struct{}, len(dd))
	for _, d := range dd {
		name := d.ResourceName()
		if _, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("%w: %s: duplicate name", ErrInvalidDevice, name))
		}
		seen[name] = struct{}{}
		switch strings.ToLower(d.Version) {
		case "", "2c", "v2c":
			if d.Community == "" {
				errs = append(errs, fmt.Errorf("%w: %s: community required", ErrInvalidDevice, name))
			}
		case "3", "v3":
			if d.Community == "" {
				errs = append(errs, fmt.Errorf("%w: %s: user name required", ErrInvalidDevice, name))
			}
			if d.AuthProtocol != "" && d.AuthPassword == "" {
				errs = append(errs, fmt.Errorf("%w: %s: authentication password required", ErrInvalidDevice, name))
			}
			if d.PrivacyProtocol != "" && d.PrivacyPassword == "" {
				errs = append(errs, fmt.Errorf("%w: %s: privacy password required", ErrInvalidDevice, name))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: %s: unsupported version %q", ErrInvalidDevice, name, d.Version))
		}
	}
	return errs
}
