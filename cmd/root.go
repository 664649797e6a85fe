package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sergev/sony9pin/config"
	"github.com/sergev/sony9pin/deck"
	"github.com/sergev/sony9pin/link"
	"github.com/sergev/sony9pin/logger"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var _ deck.DeviceLink = (*link.Link)(nil)

var (
	continuous      bool
	verbose         bool
	showVersion     bool
	configFile      string
	baudRate        int
	responseTimeout time.Duration

	conf config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sony9pin [flags] PORT [COMMAND...]",
	Short: "Control a video deck over the Sony 9-pin serial protocol",
	Long: `The sony9pin tool sends transport commands and queries to a broadcast video
deck over an RS-422 serial port, and can report the deck state until it stops.

PORT is a serial port name or an index from "sony9pin ports".
Without commands it reads one command per line from standard input.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		if configFile != "" {
			conf, err = config.Load(configFile)
		} else {
			conf, err = config.Initialize()
		}
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to initialize config: %w", err))
		}

		level, _ := logger.ParseLevel(conf.LogLevel)
		if verbose {
			level = logger.DebugLevel
		}
		logger.SetLogger(logger.NewSlog(os.Stderr, level, conf.LogFormat))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Fprintf(cmd.ErrOrStderr(), "sony9pin v%s\n", version)
			return
		}
		if cmd.Flags().Changed("baud") {
			conf.Baud = baudRate
		}
		if cmd.Flags().Changed("timeout") {
			conf.ResponseTimeoutMS = int(responseTimeout / time.Millisecond)
		}
		if err := conf.Validate(); err != nil {
			cobra.CheckErr(err)
		}
		cobra.CheckErr(runDeck(cmd, args))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose mode")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.sony9pin)")
	rootCmd.Flags().BoolVarP(&continuous, "continuous", "c", false, "report deck state until stop bit is set")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "show version")
	rootCmd.Flags().IntVar(&baudRate, "baud", 38400, "serial baud rate")
	rootCmd.Flags().DurationVar(&responseTimeout, "timeout", deck.DefaultTimeout, "response timeout per command")
}

// runDeck opens the port, runs the command steps and the optional poll loop
func runDeck(cmd *cobra.Command, args []string) error {
	port, rest := splitPort(args, conf.Port)
	if port == "" {
		return errors.New("serial port is not specified, see \"sony9pin ports\"")
	}

	steps, err := parseSteps(rest)
	if err != nil {
		return err
	}
	if continuous {
		steps = dropInteractive(steps)
	} else if len(steps) == 0 {
		steps = []step{{Interactive: true}}
	}

	table, err := conf.Devices()
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	log.Debug("open device", "port", port, "baud", conf.Baud)
	l, err := link.Open(port, link.Options{
		BaudRate: conf.Baud,
		Timeout:  conf.ResponseTimeout(),
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("open device failed: %w", err)
	}
	defer l.Close()
	log.Debug("open device OK", "port", l.Name())

	session := deck.NewSession(l, deck.Options{
		Timeout:       conf.ResponseTimeout(),
		ReadyAttempts: conf.ReadyAttempts,
		Devices:       table,
		Logger:        log,
	})

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	for _, st := range steps {
		if st.Interactive {
			err = interactive(ctx, session, cmd.InOrStdin(), out)
		} else {
			err = runStep(ctx, session, st, out)
		}
		if err != nil {
			return err
		}
	}

	if continuous {
		return poll(ctx, session, out)
	}
	return nil
}

// poll reports deck state changes until the deck stops or the user interrupts
func poll(ctx context.Context, session *deck.Session, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.WaitReady(ctx); err != nil {
		return err
	}
	poller := deck.NewPoller(session, deck.PollOptions{
		Interval:    conf.PollInterval(),
		MaxFailures: conf.PollMaxFailures,
		Logger:      logger.GetLogger(),
	})
	err := poller.Run(ctx, func(c deck.Change) {
		fmt.Fprintln(out, c.String())
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
