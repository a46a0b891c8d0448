package di

import (
	"context"
	"fmt"
	"time"

	"PerpScout/internal/domain/models"
	drepo "PerpScout/internal/domain/repository"
	domsvc "PerpScout/internal/domain/service"
	"PerpScout/internal/handler/api"
	internalrepo "PerpScout/internal/repository"
	"PerpScout/internal/service/binance"
	"PerpScout/internal/service/gemini"
	"PerpScout/internal/service/telegram"
	"PerpScout/internal/services/screener"
	"PerpScout/internal/services/sentiment"
	"PerpScout/internal/services/synthesizer"
	"PerpScout/internal/usecase"
	"PerpScout/pkg/cache"
	pkgch "PerpScout/pkg/clickhouse"
	"PerpScout/pkg/config"
	xhttp "PerpScout/pkg/http"
	pkgkafka "PerpScout/pkg/kafka"
	applogger "PerpScout/pkg/logger"
	"PerpScout/pkg/metrics"
	"PerpScout/pkg/server"
)

// ProvideLogger builds the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache returns Redis when enabled, otherwise a process-local cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		l.Info("redis disabled, journal and scan lock are process-local")
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Memory.MaxKeys),
			cache.WithMemoryCleanup(cfg.Memory.CleanupInterval),
		), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideBinanceClient creates the futures REST client.
func ProvideBinanceClient(cfg *config.Config, l *applogger.Logger) *binance.Client {
	return binance.New(
		binance.WithBaseURL(cfg.Binance.BaseURL),
		binance.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Binance.Timeout))),
		binance.WithRateLimit(cfg.Binance.RatePerSecond, cfg.Binance.RateBurst),
		binance.WithBreaker(cfg.Binance.BreakerFails, cfg.Binance.BreakerTimeout),
		binance.WithLogger(l.With("binance")),
	)
}

// ProvideMarkPriceStream returns nil when the stream is disabled.
func ProvideMarkPriceStream(cfg *config.Config, l *applogger.Logger) drepo.MarkPriceStream {
	if !cfg.Binance.StreamEnabled {
		return nil
	}
	return binance.NewMarkPriceStream(cfg.Binance.StreamURL, cfg.Binance.ReconnectDelay, l.With("markprice"))
}

// ProvidePriceSource prefers the live stream and falls back to REST.
func ProvidePriceSource(stream drepo.MarkPriceStream, client *binance.Client) drepo.PriceSource {
	return binance.NewPriceResolver(stream, client)
}

// ProvideScreener creates the market screener with thresholds from config.
func ProvideScreener(cfg *config.Config, client *binance.Client, l *applogger.Logger) domsvc.MarketScreener {
	sc := cfg.Screener
	return screener.New(client,
		screener.WithReferenceSymbol(sc.ReferenceSymbol),
		screener.WithThresholds(screener.Thresholds{
			QuoteAsset:      sc.QuoteAsset,
			MinQuoteVolume:  sc.MinQuoteVolume,
			MinOpenInterest: sc.MinOpenInterest,
			MinVolatility:   sc.MinVolatility,
			MaxAbsFunding:   sc.MaxAbsFunding,
			MaxCandidates:   sc.MaxCandidates,
			TrendBand:       sc.TrendBand,
		}),
		screener.WithLogger(l.With("screener")),
	)
}

// ProvideCorpus loads the snippet corpus, falling back to the embedded one.
func ProvideCorpus(cfg *config.Config) (models.SnippetCorpus, error) {
	return sentiment.LoadCorpus(cfg.Sentiment.CorpusPath)
}

// ProvideSentimentAggregator merges configured terms over the default lexicon.
func ProvideSentimentAggregator(cfg *config.Config) domsvc.SentimentAggregator {
	lex := sentiment.DefaultLexicon().Merge(sentiment.Lexicon{
		Bullish:     cfg.Sentiment.Bullish,
		Bearish:     cfg.Sentiment.Bearish,
		Influencers: cfg.Sentiment.Influencers,
		Media:       cfg.Sentiment.Media,
	})
	return sentiment.NewAggregator(sentiment.NewScorer(lex))
}

// ProvideAdvisor creates the Gemini advisor.
func ProvideAdvisor(cfg *config.Config, l *applogger.Logger) (domsvc.Advisor, error) {
	g := cfg.Gemini
	if g.APIKey == "" {
		l.Warn("GEMINI_API_KEY not set, scans with candidates will fail")
	}
	return gemini.New(context.Background(), g.APIKey,
		gemini.WithModel(g.Model),
		gemini.WithTemperature(g.Temperature),
		gemini.WithMaxPicks(g.MaxPicks),
		gemini.WithTimeout(g.Timeout),
		gemini.WithLogger(l.With("gemini")),
	)
}

func ProvideSynthesizer() domsvc.RecommendationSynthesizer {
	return synthesizer.New()
}

// ProvideNotifier creates the Telegram notifier.
func ProvideNotifier(cfg *config.Config, l *applogger.Logger) domsvc.Notifier {
	t := cfg.Telegram
	return telegram.New(
		telegram.WithEndpoint(t.APIEndpoint),
		telegram.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(t.Timeout))),
		telegram.WithRateLimit(t.RatePerSecond, t.RateBurst),
		telegram.WithLogger(l.With("telegram")),
	)
}

func ProvideJournalStore(kv cache.Service) drepo.JournalStore {
	return internalrepo.NewKVJournalStore(kv)
}

// ProvideScanPublisher returns nil when Kafka is disabled.
func ProvideScanPublisher(cfg *config.Config) (drepo.ScanPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaScanPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideScanArchive connects to ClickHouse and creates the tables. Nil when disabled.
func ProvideScanArchive(cfg *config.Config, l *applogger.Logger) (drepo.ScanArchive, error) {
	ch := cfg.ClickHouse
	if !ch.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	archive := internalrepo.NewCHScanArchive(client, ch.Database, l.With("archive"))
	if err := archive.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideScanOrchestrator assembles one scan cycle.
func ProvideScanOrchestrator(
	cfg *config.Config,
	sc domsvc.MarketScreener,
	agg domsvc.SentimentAggregator,
	corpus models.SnippetCorpus,
	advisor domsvc.Advisor,
	synth domsvc.RecommendationSynthesizer,
	rec *metrics.Recorder,
	pub drepo.ScanPublisher,
	archive drepo.ScanArchive,
	l *applogger.Logger,
) *usecase.ScanOrchestrator {
	opts := []usecase.OrchestratorOption{
		usecase.WithStatusInterval(cfg.Scan.StatusInterval),
		usecase.WithOrchestratorLogger(l.With("scan")),
	}
	if pub != nil {
		opts = append(opts, usecase.WithScanPublisher(pub))
	}
	if archive != nil {
		opts = append(opts, usecase.WithScanArchive(archive))
	}
	return usecase.NewScanOrchestrator(sc, agg, corpus, advisor, synth, rec, opts...)
}

func ProvideScanService(cfg *config.Config, orch *usecase.ScanOrchestrator, kv cache.Service, l *applogger.Logger) *usecase.ScanService {
	return usecase.NewScanService(orch, kv, cfg.Scan.LockTTL, cfg.Scan.Timeout, l.With("scan"))
}

func ProvideAutoScanner(cfg *config.Config, scans *usecase.ScanService, l *applogger.Logger) *usecase.AutoScanner {
	return usecase.NewAutoScanner(scans, cfg.AutoScan.Interval, l.With("autoscan"))
}

func ProvideTradeJournal(store drepo.JournalStore, prices drepo.PriceSource, l *applogger.Logger) *usecase.TradeJournal {
	return usecase.NewTradeJournal(store, prices, l.With("journal"))
}

// ProvideSignalDispatcher seeds notifier settings from config when none are saved yet.
func ProvideSignalDispatcher(
	cfg *config.Config,
	store drepo.JournalStore,
	notifier domsvc.Notifier,
	rec *metrics.Recorder,
	l *applogger.Logger,
) (*usecase.SignalDispatcher, error) {
	d := usecase.NewSignalDispatcher(store, notifier, rec, l.With("signals"))

	seed := models.NotifierSettings{Token: cfg.Telegram.Token, ChatID: cfg.Telegram.ChatID}
	if !seed.Configured() {
		return d, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	saved, err := d.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if !saved.Configured() {
		if err := d.SaveSettings(ctx, seed); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ProvideKafkaConsumer returns nil unless the signal consumer is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	kc := cfg.Kafka.Consumer
	if !kc.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerBufferSize(kc.BufferSize),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerDLQ(kc.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaSignalsHandler forwards scan events on the scan topic to Telegram.
func ProvideKafkaSignalsHandler(cfg *config.Config, d *usecase.SignalDispatcher, rec *metrics.Recorder, l *applogger.Logger) *usecase.KafkaSignalsHandler {
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.Topic, d, cfg.Telegram.AutoNotify, rec, l.With("kafka-signals"))
}

func ProvideScanHandler(
	l *applogger.Logger,
	scans *usecase.ScanService,
	auto *usecase.AutoScanner,
	agg domsvc.SentimentAggregator,
	corpus models.SnippetCorpus,
	journal *usecase.TradeJournal,
	d *usecase.SignalDispatcher,
	archive drepo.ScanArchive,
) *api.ScanEchoHandler {
	return api.NewScanEchoHandler(l, scans, auto, agg, corpus, journal, d, archive)
}

// ProvideHTTPServer creates the echo server with the API and /metrics mounted.
func ProvideHTTPServer(cfg *config.Config, h *api.ScanEchoHandler, rec *metrics.Recorder, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsHandler(rec.Handler()),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	scans *usecase.ScanService,
	auto *usecase.AutoScanner,
	kv cache.Service,
	pub drepo.ScanPublisher,
	archive drepo.ScanArchive,
	stream drepo.MarkPriceStream,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSignalsHandler,
) *server.App {
	opts := []server.Option{server.WithClosers(kv)}
	if pub != nil {
		opts = append(opts, server.WithClosers(pub))
	}
	if archive != nil {
		opts = append(opts, server.WithClosers(archive))
	}
	if stream != nil {
		opts = append(opts, server.WithMarkPriceStream(stream))
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer, kh))
	}
	return server.New(cfg, l, srv, scans, auto, opts...)
}
