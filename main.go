package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/uber-go/tally"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/resqdesk/resqdesk-api/api"
	"github.com/resqdesk/resqdesk-api/console"
	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/dispatch"
	"github.com/resqdesk/resqdesk-api/external/analyzer"
	"github.com/resqdesk/resqdesk-api/external/geocoder"
	"github.com/resqdesk/resqdesk-api/schema"
	"github.com/resqdesk/resqdesk-api/store"
	"github.com/resqdesk/resqdesk-api/utils"
)

var (
	server  *api.Server
	desk    *console.Console
	archive store.Archive
	metrics io.Closer
)

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("resqdesk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("analyzer.url", consts.DefaultAnalyzerURL)
	viper.SetDefault("analyzer.timeout", consts.DefaultAnalyzerTimeout)
	viper.SetDefault("transcript.debounce", consts.DefaultDebounce)
	viper.SetDefault("dispatch.delay", consts.DefaultDispatchDelay)
	viper.SetDefault("dispatch.countdown", consts.DefaultDispatchCountdown)
	viper.SetDefault("dispatch.confirm", consts.DefaultDispatchConfirm)
	viper.SetDefault("archive.max", consts.DefaultArchiveMax)
	viper.SetDefault("i18n.lang", consts.DefaultLanguage)
}

func loadUnits() []schema.Unit {
	var units []schema.Unit
	if err := viper.UnmarshalKey("units", &units); err != nil {
		log.WithField("prefix", "init").WithError(err).Warn("invalid unit roster, use the default units")
		return nil
	}
	return units
}

func main() {
	var configFile string

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-c
		log.Info("Server is preparing to shutdown")
		cancel()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()

		if server != nil {
			log.Info("Shutdown console api server")
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Server Shutdown:", err)
			}
		}

		if desk != nil {
			log.Info("Stopping console timers")
			desk.Close()
		}

		if archive != nil {
			log.Info("Shutting down dispatch archive")
			if err := archive.Close(); err != nil {
				log.Error(err)
			}
		}

		if metrics != nil {
			if err := metrics.Close(); err != nil {
				log.Error(err)
			}
		}

		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	utils.InitI18NBundle(viper.GetString("i18n.dir"))
	log.WithField("prefix", "init").Info("Initialized i18n bundle")

	analysisClient := analyzer.New(viper.GetString("analyzer.url"), &http.Client{
		Timeout: viper.GetDuration("analyzer.timeout"),
	})
	log.WithField("prefix", "init").Info("Analysis service: ", viper.GetString("analyzer.url"))

	// counters are read back by /api/information
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Tags: map[string]string{"service": "resqdesk-api"},
	}, 0)
	metrics = closer
	options := []console.Option{console.WithMetrics(scope)}

	if key := viper.GetString("geocoder.key"); key != "" {
		g, err := geocoder.New(key, viper.GetString("geocoder.region"), "")
		if err != nil {
			log.Panic(err)
		}
		options = append(options, console.WithGeocoder(g))
		log.WithField("prefix", "init").Info("Initialized geocoder")
	}

	if conn := viper.GetString("redis.conn"); conn != "" {
		initCtx, cancelInit := context.WithTimeout(ctx, 10*time.Second)
		a, err := store.NewRedisArchive(initCtx, conn, viper.GetInt64("archive.max"))
		cancelInit()
		if err != nil {
			log.Panic(err)
		}
		archive = a
		options = append(options, console.WithArchive(archive))
		log.WithField("prefix", "init").Info("Initialized dispatch archive")
	}

	desk = console.New(utils.SystemClock(), console.Config{
		Debounce:      viper.GetDuration("transcript.debounce"),
		DispatchDelay: viper.GetDuration("dispatch.delay"),
		Dispatch: dispatch.Config{
			Countdown: viper.GetInt("dispatch.countdown"),
			Tick:      consts.DefaultCountdownTick,
			Confirm:   viper.GetDuration("dispatch.confirm"),
		},
		AnalyzerTimeout: viper.GetDuration("analyzer.timeout"),
		Units:           loadUnits(),
		Language:        viper.GetString("i18n.lang"),
		TimeZone:        utils.GetLocation(viper.GetString("server.timezone")),
	}, analysisClient, options...)
	log.WithField("prefix", "init").Info("Initialized operator console")

	go desk.RunTicker(ctx, time.Second)

	// Init http server
	server = api.NewServer(desk)
	log.WithField("prefix", "init").Info("Initialized http server")

	log.Fatal(server.Run(":" + viper.GetString("server.port")))
}
