package config

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

var (
	// AllowFlags defines processing the cli arguments
	// true by default, false for tools with their own flags
	AllowFlags = true
	// EnvPrefix defines name prefix for environment variables
	// with struct-path selector and value, for example:
	//    PFEMEM_DEVICES_0_COMMUNITY=public
	EnvPrefix = "PFEMEM_"
	// ConfigEnv defines environment variable for config file path, overrides the ConfigName
	ConfigEnv = "PFEMEM_CONFIG"
	// ConfigName defines default filename for look in work directory if ConfigEnv is empty
	ConfigName = "pfemem_config.yaml"
	// SecKeyEnv defines environment variable for secret to crypt passwords in config file
	SecKeyEnv = "PFEMEM_SECKEY"
)

func applyFlags() {
	if !AllowFlags {
		return
	}
	/* test binaries pass their own flags, so parse errors are ignored */
	flags := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&EnvPrefix, "env-prefix", "PFEMEM_",
		`prefix for environment variables, "PFEMEM_" by default`)
	flags.StringVar(&ConfigEnv, "config-env", "PFEMEM_CONFIG",
		`environment variable for config file path, "PFEMEM_CONFIG" by default`)
	flags.StringVar(&SecKeyEnv, "seckey-env", "PFEMEM_SECKEY",
		`environment variable for secret to crypt passwords in config file, "PFEMEM_SECKEY" by default`)
	_ = flags.Parse(os.Args[1:])

	for _, s := range []*string{&ConfigEnv, &SecKeyEnv} {
		*s = strings.TrimPrefix(*s, "PFEMEM_")
		*s = strings.TrimPrefix(*s, EnvPrefix)
		*s = EnvPrefix + *s
	}
}

func applyEnv(v ...any) error {
	var errs []error
	for i := range v {
		if err := env.ParseWithOptions(v[i], env.Options{Prefix: EnvPrefix}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
