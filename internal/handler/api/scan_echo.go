package api

import (
	"context"
	"errors"

	"PerpScout/internal/domain/models"
	domrepo "PerpScout/internal/domain/repository"
	domsvc "PerpScout/internal/domain/service"
	"PerpScout/internal/usecase"
	xhttp "PerpScout/pkg/http"
	xlogger "PerpScout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScanStatus is the payload of GET /api/scan/status.
type ScanStatus struct {
	InFlight bool                   `json:"inFlight"`
	Status   string                 `json:"status"`
	AutoScan usecase.AutoScanStatus `json:"autoScan"`
}

// TelegramSettings is the masked view of the saved notifier settings.
type TelegramSettings struct {
	Configured bool   `json:"configured"`
	Token      string `json:"token,omitempty"`
	ChatID     string `json:"chatId,omitempty"`
}

// ScanEchoHandler exposes scans, the trade journal and signal delivery over REST.
type ScanEchoHandler struct {
	logger     *xlogger.Logger
	scans      *usecase.ScanService
	auto       *usecase.AutoScanner
	sentiment  domsvc.SentimentAggregator
	corpus     models.SnippetCorpus
	journal    *usecase.TradeJournal
	dispatcher *usecase.SignalDispatcher
	archive    domrepo.ScanArchive
}

// NewScanEchoHandler accepts a nil archive; the history route then answers 503.
func NewScanEchoHandler(
	logger *xlogger.Logger,
	scans *usecase.ScanService,
	auto *usecase.AutoScanner,
	sentiment domsvc.SentimentAggregator,
	corpus models.SnippetCorpus,
	journal *usecase.TradeJournal,
	dispatcher *usecase.SignalDispatcher,
	archive domrepo.ScanArchive,
) *ScanEchoHandler {
	return &ScanEchoHandler{
		logger:     logger.With("api"),
		scans:      scans,
		auto:       auto,
		sentiment:  sentiment,
		corpus:     corpus,
		journal:    journal,
		dispatcher: dispatcher,
		archive:    archive,
	}
}

func (h *ScanEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/scan", h.Scan)
	g.GET("/scan/latest", h.Latest)
	g.GET("/scan/status", h.Status)
	g.GET("/sentiment", h.Sentiment)

	g.POST("/autoscan/start", h.StartAutoScan)
	g.POST("/autoscan/stop", h.StopAutoScan)

	g.GET("/trades", h.Trades)
	g.POST("/trades", h.LogTrade)
	g.POST("/trades/:id/close", h.CloseTrade)

	g.GET("/signals", h.Signals)
	g.POST("/signals", h.SendSignal)

	g.GET("/settings/telegram", h.TelegramSettings)
	g.PUT("/settings/telegram", h.SaveTelegramSettings)

	g.GET("/scans/history", h.History)
}

func (h *ScanEchoHandler) Scan(c echo.Context) error {
	res, err := h.scans.Scan(c.Request().Context(), nil)
	if err != nil {
		return h.fail(c, "scan", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ScanEchoHandler) Latest(c echo.Context) error {
	res := h.scans.Latest()
	if res == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no scan has completed yet"))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ScanEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, ScanStatus{
		InFlight: h.scans.InFlight(),
		Status:   h.scans.Status(),
		AutoScan: h.auto.Status(),
	})
}

func (h *ScanEchoHandler) Sentiment(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sentiment.Aggregate(h.corpus))
}

func (h *ScanEchoHandler) StartAutoScan(c echo.Context) error {
	if err := h.auto.Start(c.Request().Context()); err != nil {
		return h.fail(c, "autoscan start", err)
	}
	return xhttp.SuccessResponse(c, h.auto.Status())
}

func (h *ScanEchoHandler) StopAutoScan(c echo.Context) error {
	if !h.auto.Stop() {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("auto-scan is not running"))
	}
	return xhttp.SuccessResponse(c, h.auto.Status())
}

func (h *ScanEchoHandler) Trades(c echo.Context) error {
	trades, err := h.journal.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "list trades", err)
	}
	return xhttp.ListResponse(c, trades, len(trades))
}

func (h *ScanEchoHandler) LogTrade(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rec, err := h.recommendation(req.RecommendationID)
	if err != nil {
		return h.fail(c, "log trade", err)
	}
	t, err := h.journal.Log(c.Request().Context(), rec)
	if err != nil {
		return h.fail(c, "log trade", err)
	}
	return xhttp.CreatedResponse(c, t)
}

func (h *ScanEchoHandler) CloseTrade(c echo.Context) error {
	req := &models.CloseTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, err := h.journal.Close(c.Request().Context(), req.ID, req.ClosePrice)
	if err != nil {
		return h.fail(c, "close trade", err)
	}
	return xhttp.SuccessResponse(c, t)
}

func (h *ScanEchoHandler) Signals(c echo.Context) error {
	msgs, err := h.dispatcher.Messages(c.Request().Context())
	if err != nil {
		return h.fail(c, "list signals", err)
	}
	return xhttp.ListResponse(c, msgs, len(msgs))
}

func (h *ScanEchoHandler) SendSignal(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rec, err := h.recommendation(req.RecommendationID)
	if err != nil {
		return h.fail(c, "send signal", err)
	}
	msg, err := h.dispatcher.Dispatch(c.Request().Context(), rec)
	if err != nil {
		if msg != nil {
			h.logger.Warn("signal not delivered", xlogger.String("recommendation_id", rec.ID), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("Failed to send signal: "+msg.Error).WithError(err))
		}
		return h.fail(c, "send signal", err)
	}
	return xhttp.CreatedResponse(c, msg)
}

func (h *ScanEchoHandler) TelegramSettings(c echo.Context) error {
	s, err := h.dispatcher.Settings(c.Request().Context())
	if err != nil {
		return h.fail(c, "load settings", err)
	}
	return xhttp.SuccessResponse(c, TelegramSettings{
		Configured: s.Configured(),
		Token:      maskToken(s.Token),
		ChatID:     s.ChatID,
	})
}

func (h *ScanEchoHandler) SaveTelegramSettings(c echo.Context) error {
	req := &models.TelegramSettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	s := models.NotifierSettings{Token: req.Token, ChatID: req.ChatID}
	if err := h.dispatcher.SaveSettings(c.Request().Context(), s); err != nil {
		return h.fail(c, "save settings", err)
	}
	return xhttp.SuccessResponse(c, TelegramSettings{Configured: true, Token: maskToken(s.Token), ChatID: s.ChatID})
}

func (h *ScanEchoHandler) History(c echo.Context) error {
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("scan archive is disabled"))
	}
	req := &models.ScanHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.archive.RecentCandidates(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		return h.fail(c, "scan history", err)
	}
	return xhttp.ListResponse(c, rows, len(rows))
}

func (h *ScanEchoHandler) recommendation(id string) (models.TradeRecommendation, error) {
	rec, ok := h.scans.Latest().Recommendation(id)
	if !ok {
		return models.TradeRecommendation{}, models.ErrRecommendationNotFound
	}
	return rec, nil
}

func (h *ScanEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" failed", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var (
		fetchErr    *models.DataFetchError
		advisoryErr *models.AdvisoryError
	)
	switch {
	case errors.Is(err, models.ErrScanInFlight),
		errors.Is(err, models.ErrAutoScanRunning),
		errors.Is(err, models.ErrTradeAlreadyLogged),
		errors.Is(err, models.ErrTradeClosed):
		return xhttp.ConflictError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrTradeNotFound),
		errors.Is(err, models.ErrRecommendationNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrNotifierNotConfigured):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.As(err, &fetchErr),
		errors.As(err, &advisoryErr),
		errors.Is(err, context.DeadlineExceeded):
		return xhttp.BadGatewayError(models.FailureMessage(err)).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return ""
	}
	return "****" + token[len(token)-4:]
}
