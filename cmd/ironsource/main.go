package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lithammer/dedent"
	ironsource "github.com/raine/ironsource-go"
	"github.com/raine/ironsource-go/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `
	Usage: ironsource [flags] <command> [args]

	Monetize:
	  apps                              list applications
	  instances <appKey>                list instances of an app
	  groups <appKey>                   list mediation groups of an app
	  placements <appKey>               list placements of an app
	  report <start> <end> [appKey]     mediation report
	  uar <date> <appKey>               user ad revenue report (CSV)

	Promote:
	  stats <start> <end>               advertiser statistics stream
	  skan <start> <end>                SKAN report stream
	  bids <campaignId>                 current bids of a campaign
	  audiences                         list audience lists
	  titles [searchTerm]               list titles

	Dates are YYYY-MM-DD. Credentials are read from IRONSOURCE_USER,
	IRONSOURCE_TOKEN and IRONSOURCE_SECRET, %s or a YAML file.

	Flags:
`

func formatMessage(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func main() {
	var (
		debug      bool
		configPath string
		format     string
	)
	flag.BoolVar(&debug, "debug", false, "Log every API call")
	flag.StringVar(&configPath, "config", "", "YAML config file (default $IRONSOURCE_CONFIG or ironsource.yaml)")
	flag.StringVar(&format, "format", "json", "Report stream format: json or csv")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), formatMessage(usage, config.EnvFileName))
		flag.PrintDefaults()
	}
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	is, err := ironsource.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := &runner{is: is, out: os.Stdout, format: format}
	if err := r.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("interrupted")
			os.Exit(130)
		}
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("command failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	config.LoadEnvFile()
	return config.LoadFile(path)
}
