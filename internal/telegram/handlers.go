package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"frontierBot/internal/finance"
	"frontierBot/internal/openai"
	"frontierBot/internal/storage"
	"frontierBot/internal/telemetry"
)

var (
	// /frontier [w1 w2 ...] as caption of a CSV or as a reply to one
	reFrontier = regexp.MustCompile(`^/frontier(?:@[\w_]+)?(?:\s+(.*))?$`)
	// /explain [w1 w2 ...]
	reExplain = regexp.MustCompile(`^/explain(?:@[\w_]+)?(?:\s+(.*))?$`)
	// /pair SYMBOL_X SYMBOL_Y [window]
	rePair = regexp.MustCompile(`^/pair(?:@[\w_]+)?\s+([A-Za-z0-9\.^_=+-]+)\s+([A-Za-z0-9\.^_=+-]+)(?:\s+(\d+[dwmyDWMY]))?$`)
	// /usage [days]
	reUsage = regexp.MustCompile(`^/usage(?:@[\w_]+)?(?:\s+(\d+))?$`)
	// /help
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

// Options tune how the handlers compute and accept input.
type Options struct {
	OpenAIKey      string
	Precision      int
	MaxUploadBytes int64
}

type Handlers struct {
	api       *tgbotapi.BotAPI
	store     *storage.Store
	comment   *openai.Commentator
	analytics *finance.UsageAnalytics
	opts      Options
}

func NewHandlers(api *tgbotapi.BotAPI, store *storage.Store, opts Options) *Handlers {
	h := &Handlers{
		api:       api,
		store:     store,
		analytics: finance.NewUsageAnalytics(),
		opts:      opts,
	}
	if opts.OpenAIKey != "" {
		h.comment = openai.NewCommentator(opts.OpenAIKey)
	}
	return h
}

// commandText returns the command carried by a message: its text, or the
// caption when a document was sent with one.
func commandText(m *tgbotapi.Message) string {
	if txt := strings.TrimSpace(m.Text); txt != "" {
		return txt
	}
	return strings.TrimSpace(m.Caption)
}

// csvDocument returns the document attached to m or to the message it replies to.
func csvDocument(m *tgbotapi.Message) *tgbotapi.Document {
	if m.Document != nil {
		return m.Document
	}
	if m.ReplyToMessage != nil && m.ReplyToMessage.Document != nil {
		return m.ReplyToMessage.Document
	}
	return nil
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := commandText(m)
	if !strings.HasPrefix(txt, "/") {
		return
	}
	command := strings.SplitN(strings.Fields(txt)[0], "@", 2)[0]

	ctx, span := telemetry.Tracer().Start(context.Background(), "telegram"+command)
	defer span.End()
	span.SetAttributes(attribute.Int64("telegram.chat_id", m.Chat.ID))

	category := ""
	switch {
	case reFrontier.MatchString(txt):
		category = finance.CategoryFrontier
		h.handleFrontier(ctx, m, reFrontier.FindStringSubmatch(txt)[1])

	case reExplain.MatchString(txt):
		category = finance.CategoryAI
		h.handleExplain(ctx, m, reExplain.FindStringSubmatch(txt)[1])

	case rePair.MatchString(txt):
		category = finance.CategoryMarket
		g := rePair.FindStringSubmatch(txt)
		h.handlePair(ctx, m.Chat.ID, strings.ToUpper(g[1]), strings.ToUpper(g[2]), g[3])

	case reUsage.MatchString(txt):
		category = finance.CategoryMeta
		days := 7
		if g := reUsage.FindStringSubmatch(txt); g[1] != "" {
			days, _ = strconv.Atoi(g[1])
		}
		h.handleUsage(m.Chat.ID, min(max(days, 1), 90))

	case reHelp.MatchString(txt):
		category = finance.CategoryMeta
		h.handleHelp(m.Chat.ID)

	default:
		return
	}

	var userID int64
	if m.From != nil {
		userID = m.From.ID
	}
	if err := h.store.SaveUsage(m.Chat.ID, userID, command, category, int64(m.Date)); err != nil {
		log.Printf("db: save usage: %v", err)
		span.RecordError(err)
	}
}

// loadDataset downloads and parses the CSV attached to m (or to the message it replies to).
func (h *Handlers) loadDataset(ctx context.Context, m *tgbotapi.Message) (finance.Dataset, error) {
	doc := csvDocument(m)
	if doc == nil {
		return nil, errNoDocument
	}
	if h.opts.MaxUploadBytes > 0 && int64(doc.FileSize) > h.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", errFileTooLarge, doc.FileSize, h.opts.MaxUploadBytes)
	}
	url, err := h.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		log.Printf("telegram: locate file %s: %v", doc.FileID, err)
		return nil, errDownload
	}
	return downloadCSV(ctx, http.DefaultClient, url, h.opts.MaxUploadBytes)
}

// downloadCSV fetches and parses the CSV at url. The url embeds the bot token,
// so transport errors are logged and replaced by errDownload.
func downloadCSV(ctx context.Context, client *http.Client, url string, maxBytes int64) (finance.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("telegram: build download request: %v", err)
		return nil, errDownload
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("telegram: download file: %v", err)
		return nil, errDownload
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("telegram: download file: status %d", resp.StatusCode)
		return nil, errDownload
	}
	data, err := readLimited(resp.Body, maxBytes)
	if err != nil {
		return nil, err
	}
	return finance.ParseDatasetCSV(bytes.NewReader(data))
}

// readLimited reads r fully, failing with errFileTooLarge past maxBytes.
// maxBytes <= 0 means no limit.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			log.Printf("telegram: read file: %v", err)
			return nil, errDownload
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		log.Printf("telegram: read file: %v", err)
		return nil, errDownload
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (max %d bytes)", errFileTooLarge, maxBytes)
	}
	return data, nil
}

var (
	errNoDocument   = errors.New("no CSV attached")
	errDownload     = errors.New("could not download the file from Telegram")
	errFileTooLarge = errors.New("file is too large")
)

// errorText turns a frontier failure into the message shown to the user.
func errorText(err error) string {
	switch {
	case errors.Is(err, errNoDocument):
		return "Send a CSV file with columns X and Y and use /frontier as its caption, or reply to one with /frontier."
	case errors.Is(err, finance.ErrMissingColumns):
		return "CSV must contain 'X' and 'Y' columns."
	case errors.Is(err, finance.ErrEmptyDataset):
		return "The CSV has no data rows."
	case errors.Is(err, errDownload):
		return "Could not download the file from Telegram, please send it again."
	default:
		return "Frontier failed: " + err.Error()
	}
}

func (h *Handlers) fail(ctx context.Context, chatID int64, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Printf("frontier: chat_id=%d: %v", chatID, err)
	h.reply(chatID, errorText(err))
}

func (h *Handlers) handleFrontier(ctx context.Context, m *tgbotapi.Message, args string) {
	weights, err := finance.ParseWeights(args)
	if err != nil {
		h.reply(m.Chat.ID, "Invalid weights: "+err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ds, err := h.loadDataset(ctx, m)
	if err != nil {
		h.fail(ctx, m.Chat.ID, err)
		return
	}
	report, err := finance.BuildFrontierReport(ds, weights, h.opts.Precision)
	if err != nil {
		h.fail(ctx, m.Chat.ID, err)
		return
	}
	name := "frontier"
	if doc := csvDocument(m); doc != nil && doc.FileName != "" {
		name = strings.TrimSuffix(doc.FileName, ".csv")
	}
	h.sendReport(m.Chat.ID, name, report)
}

func (h *Handlers) handlePair(ctx context.Context, chatID int64, symX, symY, window string) {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	ds, err := finance.DatasetFromQuotes(ctx, symX, symY, window)
	if err != nil {
		h.fail(ctx, chatID, err)
		return
	}
	report, err := finance.BuildFrontierReport(ds, nil, h.opts.Precision)
	if err != nil {
		h.fail(ctx, chatID, err)
		return
	}
	if window == "" {
		window = "1y"
	}
	h.reply(chatID, fmt.Sprintf("X = %s, Y = %s, daily returns over %s", symX, symY, strings.ToLower(window)))
	h.sendReport(chatID, symX+"_"+symY, report)
}

func (h *Handlers) handleExplain(ctx context.Context, m *tgbotapi.Message, args string) {
	if h.comment == nil {
		h.reply(m.Chat.ID, "Commentary is not configured on this bot.")
		return
	}
	weights, err := finance.ParseWeights(args)
	if err != nil {
		h.reply(m.Chat.ID, "Invalid weights: "+err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	ds, err := h.loadDataset(ctx, m)
	if err != nil {
		h.fail(ctx, m.Chat.ID, err)
		return
	}
	report, err := finance.BuildFrontierReport(ds, weights, h.opts.Precision)
	if err != nil {
		h.fail(ctx, m.Chat.ID, err)
		return
	}
	out, err := h.comment.Explain(ctx, report)
	if err != nil {
		h.reply(m.Chat.ID, "Commentary failed: "+err.Error())
		return
	}
	msg := tgbotapi.NewMessage(m.Chat.ID, out)
	msg.ParseMode = "Markdown"
	h.api.Send(msg)
}

func (h *Handlers) handleUsage(chatID int64, days int) {
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
	stats, err := h.store.UsageStatsSince(since)
	if err != nil {
		h.reply(chatID, "Usage failed: "+err.Error())
		return
	}
	msg := tgbotapi.NewMessage(chatID, h.analytics.FormatUsageStatsText(stats, days))
	msg.ParseMode = "Markdown"
	h.api.Send(msg)
	if len(stats) == 0 {
		return
	}
	img, err := h.analytics.MakeUsageChart(stats, days)
	if err != nil {
		log.Printf("usage: chart: %v", err)
		return
	}
	h.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "usage.png", Bytes: img}))

	bucket := int64(24 * 3600)
	if days <= 2 {
		bucket = 3600
	}
	series, err := h.store.UsageTimeSeries(since, bucket)
	if err != nil {
		log.Printf("db: usage series: %v", err)
		return
	}
	line, err := h.analytics.MakeUsageTimeSeriesChart(series, days)
	if err != nil {
		log.Printf("usage: series chart: %v", err)
		return
	}
	h.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "usage_timeline.png", Bytes: line}))
}

// reportText is the statistics summary followed by the results table in a code block.
func reportText(report *finance.FrontierReport) string {
	return "📊 Basic Statistics\n" +
		finance.FormatStatisticsText(report.Statistics, report.Precision) +
		"\n📌 Efficient Frontier Results\n```\n" +
		finance.FormatFrontierTable(report.Points, report.Precision) +
		"```"
}

func (h *Handlers) sendReport(chatID int64, name string, report *finance.FrontierReport) {
	msg := tgbotapi.NewMessage(chatID, reportText(report))
	msg.ParseMode = "Markdown"
	h.api.Send(msg)

	img, err := finance.MakeFrontierChart(report.Points, "Efficient Frontier")
	if err != nil {
		// constant columns leave every risk undefined; the table already says N/A
		log.Printf("frontier: chart: %v", err)
	} else {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name + "_frontier.png", Bytes: img})
		photo.Caption = "Risk (x) vs return (y), portfolios in grid order"
		h.api.Send(photo)
	}

	bars, err := finance.MakeAllocationChart(report.Points, "")
	if err != nil {
		log.Printf("frontier: allocation chart: %v", err)
		return
	}
	h.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name + "_allocations.png", Bytes: bars}))
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /frontier [w1 w2 ...] - Send as the caption of a CSV with columns X and Y (or reply to one). " +
		"Weights are the share of X, default 0 0.2 0.4 0.6 0.8 1\n" +
		"- /pair SYM_X SYM_Y [30d|6w|3m|1y|5y] - Frontier from daily returns of two symbols (default 1y)\n" +
		"- /explain [w1 w2 ...] - Like /frontier, plus a short AI commentary\n" +
		"- /usage [days] - Command usage over the last N days (default 7)\n" +
		"\nStd devs are population (divide by N). Risk shows N/A when a column is constant."
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	h.api.Send(tgbotapi.NewMessage(chatID, text))
}
