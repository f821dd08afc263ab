package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/sulefrederickjohne/pfememory/config"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem/clients"
	"github.com/sulefrederickjohne/pfememory/logzer"
)

var errUsage = errors.New("usage error")

type options struct {
	target  clients.Target
	device  string
	item    string
	walk    string
	list    bool
	verbose bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the exit code of the check state
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return int(pfemem.StateUnknown)
		}
		fmt.Fprintf(stdout, "%s - %s\n", pfemem.StateUnknown, err)
		return int(pfemem.StateUnknown)
	}

	/* config loading installs its own logger, replaced below */
	if opts.device != "" {
		if err := opts.applyDevice(); err != nil {
			fmt.Fprintf(stdout, "%s - %s\n", pfemem.StateUnknown, err)
			return int(pfemem.StateUnknown)
		}
	}
	lvl := zerolog.WarnLevel
	if opts.verbose {
		lvl = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(logzer.NewLoggerWriter(
		logzer.WithLevel(lvl),
		logzer.WithOutput(stderr),
		logzer.WithTimeFormat(time.TimeOnly),
	)).With().Timestamp().Logger()

	plugin := pfemem.PfeMemory
	rows, err := fetchRows(ctx, opts, plugin)
	if err != nil {
		fmt.Fprintf(stdout, "%s - %s\n", pfemem.StateUnknown, err)
		return int(pfemem.StateUnknown)
	}
	section := plugin.Parse(rows)
	log.Debug().Int("rows", len(rows)).Int("items", len(section)).Msg("parsed")

	if opts.list {
		for _, item := range plugin.Discover(section) {
			fmt.Fprintf(stdout, "%s\t%s\n", item, plugin.ServiceName(item))
		}
		return int(pfemem.StateOK)
	}

	if _, ok := section[opts.item]; !ok {
		fmt.Fprintf(stdout, "%s - item not found: %s\n", pfemem.StateUnknown, opts.item)
		return int(pfemem.StateUnknown)
	}
	report := plugin.Report(opts.item, section)
	fmt.Fprintln(stdout, report.Output())
	if details := report.Details(); details != "" {
		fmt.Fprintln(stdout, details)
	}
	return int(report.State)
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("pfemem-check", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.target.Host, "host", "H", "", "device address")
	fs.Uint16VarP(&opts.target.Port, "port", "p", 161, "device SNMP port")
	fs.StringVarP(&opts.target.Version, "version", "v", "2c", `SNMP version "2c"|"3"`)
	fs.StringVarP(&opts.target.Community, "community", "C", "", "community or v3 user name")
	fs.StringVar(&opts.target.AuthProtocol, "auth-protocol", "", "v3 authentication protocol md5|sha|sha256|sha512")
	fs.StringVar(&opts.target.AuthPassword, "auth-password", "", "v3 authentication passphrase")
	fs.StringVar(&opts.target.PrivacyProtocol, "privacy-protocol", "", "v3 privacy protocol des|aes|aes256")
	fs.StringVar(&opts.target.PrivacyPassword, "privacy-password", "", "v3 privacy passphrase")
	fs.DurationVarP(&opts.target.Timeout, "timeout", "t", 2*time.Second, "SNMP request timeout")
	fs.IntVar(&opts.target.Retries, "retries", 1, "SNMP request retries")
	fs.Uint32Var(&opts.target.MaxRepetitions, "max-repetitions", 10, "SNMP bulk max repetitions")
	fs.StringVarP(&opts.device, "device", "d", "", "device name from the connector config file")
	fs.StringVarP(&opts.item, "item", "i", "", "item to check, like \"FPC: MPC4E 3D 32XGE @ 0/*/* Free Memory\"")
	fs.StringVarP(&opts.walk, "walk", "w", "", "read snmpwalk output file instead of polling")
	fs.BoolVarP(&opts.list, "list", "l", false, "list discovered items")
	fs.BoolVar(&opts.verbose, "verbose", false, "debug logging to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch {
	case opts.walk == "" && opts.target.Host == "" && opts.device == "":
		return nil, fmt.Errorf("%w: one of --host, --device, --walk required", errUsage)
	case !opts.list && opts.item == "":
		return nil, fmt.Errorf("%w: --item or --list required", errUsage)
	}
	return opts, nil
}

// applyDevice takes the device settings from the connector config
func (opts *options) applyDevice() error {
	config.AllowFlags = false
	device, ok := config.GetConfig().Devices.Lookup(opts.device)
	if !ok {
		return fmt.Errorf("%w: device not configured: %s", errUsage, opts.device)
	}
	opts.target = clients.NewTarget(device, config.GetConfig().Connector.Snmp)
	return nil
}

func fetchRows(ctx context.Context, opts *options, plugin pfemem.Plugin) ([]pfemem.Row, error) {
	if opts.walk == "" {
		return clients.NewSnmpClient().Fetch(ctx, opts.target, plugin)
	}
	f, err := os.Open(opts.walk)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pdus, err := clients.ParseWalk(f)
	if err != nil {
		return nil, err
	}
	return clients.AssembleRows(plugin.Fetch, pdus), nil
}
