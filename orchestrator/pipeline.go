package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/midhat81/Accent-Detection/accent"
	"github.com/midhat81/Accent-Detection/clients"
	cfg "github.com/midhat81/Accent-Detection/config"
	"github.com/midhat81/Accent-Detection/media"
	"github.com/sirupsen/logrus"
)

type Pipeline struct {
	cfg        *cfg.Root
	log        logrus.FieldLogger
	fetch      Fetcher
	extract    AudioExtractor
	transcribe Transcriber
	scorer     *accent.Scorer
}

type Option func(*Pipeline)

func WithFetcher(f Fetcher) Option { return func(p *Pipeline) { p.fetch = f } }
func WithExtractor(e AudioExtractor) Option { return func(p *Pipeline) { p.extract = e } }
func WithTranscriber(t Transcriber) Option { return func(p *Pipeline) { p.transcribe = t } }
func WithScorer(s *accent.Scorer) Option { return func(p *Pipeline) { p.scorer = s } }
func WithLogger(l logrus.FieldLogger) Option { return func(p *Pipeline) { p.log = l } }

// asrTranscriber binds the ASR service URL to the HTTP client.
type asrTranscriber struct {
	http *clients.HTTP
	url  string
}

func (a asrTranscriber) Transcribe(ctx context.Context, wavPath string) (string, error) {
	return a.http.Transcribe(ctx, a.url, wavPath)
}

// NewPipeline wires the HTTP clients and extractor described by c. Options
// replace individual stages.
func NewPipeline(c *cfg.Root, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: c, scorer: accent.NewScorer(), log: logrus.StandardLogger()}
	for _, o := range opts {
		o(p)
	}

	var h *clients.HTTP
	if p.fetch == nil || p.transcribe == nil {
		h = clients.NewHTTP(
			clients.WithTimeout(cfg.DurSeconds(c.Download.TimeoutSeconds)),
			clients.WithUserAgent(c.Download.UserAgent),
			clients.WithMaxBytes(c.Download.MaxBytes),
		)
	}
	if p.fetch == nil {
		p.fetch = h
	}
	if p.transcribe == nil {
		p.transcribe = asrTranscriber{http: h, url: c.Services.ASR.URL}
	}
	if p.extract == nil {
		ex, err := media.NewExtractor(c.Extractor.Command, c.Audio.SampleRate, c.Audio.Channels)
		if err != nil {
			return nil, err
		}
		p.extract = ex
	}
	return p, nil
}

// Run takes a local video path or an http(s) URL through download,
// extraction, transcription and classification. A failing stage stops the
// run; its error is reported in the Result and the scorer is not reached.
func (p *Pipeline) Run(ctx context.Context, source string) *Result {
	sid := newSessionID()
	log := p.log.WithField("session", sid)

	work, err := os.MkdirTemp(p.cfg.Paths.Scratch, "accent-*")
	if err != nil {
		return p.fail(log, sid, StageAcquire, err)
	}
	defer os.RemoveAll(work)

	log.WithField("stage", StageAcquire).WithField("source", source).Info("acquiring video")
	video, err := p.acquire(ctx, source, work)
	if err != nil {
		return p.fail(log, sid, StageAcquire, err)
	}

	log.WithField("stage", StageExtract).WithField("path", video).Info("extracting audio")
	wavPath, err := p.extract.Extract(ctx, video, work)
	if err != nil {
		return p.fail(log, sid, StageExtract, err)
	}

	info, err := media.InspectWAV(wavPath)
	if err == nil {
		err = info.Check(p.cfg.Audio.SampleRate, p.cfg.Audio.Channels)
	}
	if err != nil {
		return p.fail(log, sid, StageInspect, err)
	}
	log.WithFields(logrus.Fields{"stage": StageInspect, "duration": info.Duration}).Debug("audio ready")

	log.WithField("stage", StageTranscribe).Info("transcribing audio")
	text, err := p.transcribe.Transcribe(ctx, wavPath)
	if err != nil {
		return p.fail(log, sid, StageTranscribe, err)
	}

	log.WithField("stage", StageClassify).Info("detecting accent")
	res := p.classify(text)
	res.SessionID = sid
	log.WithFields(logrus.Fields{
		"accent":     res.Accent,
		"confidence": res.Confidence,
		"words":      res.WordCount,
	}).Info("analysis complete")

	p.persist(log, res)
	return res
}

func (p *Pipeline) acquire(ctx context.Context, source, work string) (string, error) {
	if clients.IsVideoURL(source) {
		return p.fetch.Download(ctx, source, work)
	}
	st, err := os.Stat(source)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		return "", fmt.Errorf("%s is a directory", source)
	}
	return source, nil
}

func (p *Pipeline) classify(text string) *Result {
	c := p.scorer.Classify(text)
	return &Result{
		Success:       true,
		Accent:        c.Label,
		Confidence:    c.Confidence,
		Explanation:   c.Explanation,
		Transcription: text,
		WordCount:     accent.WordCount(text),
	}
}

func (p *Pipeline) fail(log logrus.FieldLogger, sid, stage string, err error) *Result {
	log.WithField("stage", stage).WithError(err).Error("pipeline halted")
	res := &Result{SessionID: sid, Stage: stage, Error: fmt.Sprintf("%s: %v", stage, err)}
	p.persist(log, res)
	return res
}

func (p *Pipeline) persist(log logrus.FieldLogger, res *Result) {
	if p.cfg.Paths.Outputs == "" {
		return
	}
	path, err := persist(p.cfg.Paths.Outputs, res)
	if err != nil {
		log.WithError(err).Warn("could not write result")
		return
	}
	log.WithField("path", path).Debug("result written")
}
