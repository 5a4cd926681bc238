package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/midhat81/Accent-Detection/accent"
	cfg "github.com/midhat81/Accent-Detection/config"
	"github.com/midhat81/Accent-Detection/orchestrator"
	"github.com/midhat81/Accent-Detection/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfgFile string
	asJSON  bool
	v       *viper.Viper
	conf    *cfg.Root
	log     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: cfg.NewViper()}

	root := &cobra.Command{
		Use:   "accent",
		Short: "Detect a coarse English accent from a short video",
		Long: `accent extracts the speech track of a video, transcribes it through an
external ASR service and labels the transcript as American, British,
Australian or Canadian English from lexical cues.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default config/$CONFIG_ENV/config.yaml)")
	flags.BoolVar(&a.asJSON, "json", false, "print results as JSON")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("asr-url", "", "base URL of the speech-to-text service")
	flags.String("outputs", "", "directory for per-session result files")
	_ = a.v.BindPFlag(cfg.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(cfg.KeyASRURL, flags.Lookup("asr-url"))
	_ = a.v.BindPFlag(cfg.KeyOutputs, flags.Lookup("outputs"))

	root.AddCommand(
		a.classifyCmd(),
		a.analyzeCmd(),
		a.profilesCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup() error {
	conf, err := cfg.Load(a.cfgFile, a.v)
	if err != nil {
		return err
	}
	log, err := newLogger(conf.Pipeline.LogLvl, os.Stderr)
	if err != nil {
		return err
	}
	a.conf, a.log = conf, log
	return nil
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l, nil
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Score transcript text directly (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}
			text = strings.ToLower(text)
			scorer := accent.NewScorer()
			res := &orchestrator.Result{Success: true, Transcription: strings.TrimSpace(text), WordCount: accent.WordCount(text)}
			c := scorer.Classify(text)
			res.Accent, res.Confidence, res.Explanation = c.Label, c.Confidence, c.Explanation
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), struct {
					*orchestrator.Result
					Scores []accent.ScoreResult `json:"scores"`
				}{res, scorer.Ranked(text)})
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <video-file|video-url>",
		Short: "Run the full pipeline on a local video or an http(s) URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := orchestrator.NewPipeline(a.conf, orchestrator.WithLogger(a.log))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res := p.Run(ctx, args[0])
			if a.asJSON {
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				renderResult(cmd.OutOrStdout(), res)
			}
			if !res.Success {
				return errors.New("analysis failed")
			}
			return nil
		},
	}
}

func (a *app) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the accent profiles and their cues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles := accent.NewScorer().Profiles()
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), profiles)
			}
			renderProfiles(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classifier and pipeline over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scorer := accent.NewScorer()
			p, err := orchestrator.NewPipeline(a.conf,
				orchestrator.WithLogger(a.log),
				orchestrator.WithScorer(scorer),
			)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(p, scorer, a.log, a.conf.Paths.Scratch, a.conf.Server)
			return srv.ListenAndServe(ctx, a.conf.Server.Bind)
		},
	}
	cmd.Flags().String("bind", "", "listen address (default from config, :8080)")
	_ = a.v.BindPFlag(cfg.KeyBind, cmd.Flags().Lookup("bind"))
	return cmd
}
