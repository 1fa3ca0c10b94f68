package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/stream"
	"ai-trip-planner/internal/travel"
)

// Bot wraps the Telegram API around the trip planning pipeline.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	metricsStore *metrics.Store
	chatRepo     *ChatRepository
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	planApp *app.App,
	metricsStore *metrics.Store,
	chatRepo *ChatRepository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, _ := tgbotapi.NewWebhook(webhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		app:          planApp,
		metricsStore: metricsStore,
		chatRepo:     chatRepo,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch msg.Text {
	case "/metrics":
		b.handleMetricsRequest(msg)
	case "/last":
		b.handleLastRequest(msg)
	default:
		b.handlePlannerRequest(msg)
	}
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleLastRequest(msg *tgbotapi.Message) {
	plan, err := b.chatRepo.Latest(context.Background(), msg.Chat.ID)
	if err != nil {
		log.Printf("Error loading last plan for chat %d: %v", msg.Chat.ID, err)
		b.send(msg.Chat.ID, "❌ Error loading the last plan.")
		return
	}
	if plan == nil {
		b.send(msg.Chat.ID, "No plan saved for this chat yet. Send me a trip request!")
		return
	}
	b.sendPlan(msg.Chat.ID, plan)
}

func (b *Bot) handlePlannerRequest(msg *tgbotapi.Message) {
	request := strings.TrimSpace(strings.TrimPrefix(msg.Text, "/plan"))
	if request == "" {
		b.send(msg.Chat.ID, "Tell me about the trip: destination, dates, and what to include.\nExample: `/plan 3 days in Goa from Hyderabad with flights and hotels`")
		return
	}

	statusText := "🧳 *Planning your trip...* \n(Searching and building a day-by-day itinerary)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()
	log.Printf("Generating trip plan for request: %s", request)

	runID := fmt.Sprintf("tg-%d", msg.Chat.ID)
	plan := b.app.ProcessMessage(ctx, runID, request, b.progressEditor(msg.Chat.ID, sentMsg.MessageID))

	if len(plan.Itinerary.Days) == 0 && plan.Summary == "" {
		// The run ended before planning: a clarification question or a failure.
		text := plan.Notes
		if text == "" {
			text = "I could not build a plan from that request. Try adding a destination and dates."
		}
		if strings.HasPrefix(text, "planning failed:") {
			safeErr := strings.ReplaceAll(text, "`", "'")
			text = fmt.Sprintf("❌ *Error building plan:*\n```\n%s\n```", safeErr)
		}
		b.edit(msg.Chat.ID, sentMsg.MessageID, text)
		return
	}

	if err := b.chatRepo.SaveLatest(ctx, msg.Chat.ID, msg.From.UserName, &plan); err != nil {
		log.Printf("Warning: failed to save plan for chat %d: %v", msg.Chat.ID, err)
	}

	header, days := formatPlanMessages(&plan)
	b.edit(msg.Chat.ID, sentMsg.MessageID, header)
	for _, day := range days {
		b.send(msg.Chat.ID, day)
	}

	if len(plan.Errors) > 0 {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Planning Degraded*\nRequest: %s\nErrors: %s", request, strings.Join(plan.Errors, "; ")))
	}
}

// progressEditor maps pipeline events onto edits of the status message so the
// chat shows movement while the plan builds. Shimmer chunks are skipped;
// Telegram edits are rate limited.
func (b *Bot) progressEditor(chatID int64, messageID int) func(stream.Event) {
	return func(ev stream.Event) {
		var text string
		switch ev.Type {
		case stream.EventFlights:
			text = "✈️ *Found flights.* Looking further..."
		case stream.EventHotels:
			text = "🏨 *Found hotels.* Building the itinerary..."
		case stream.EventItinerary:
			text = fmt.Sprintf("🗺 *Planned day %d...*", ev.Seq+1)
		default:
			return
		}
		b.edit(chatID, messageID, text)
	}
}

func (b *Bot) sendPlan(chatID int64, plan *travel.ChatPlan) {
	header, days := formatPlanMessages(plan)
	b.send(chatID, header)
	for _, day := range days {
		b.send(chatID, day)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

// formatPlanMessages renders a plan as one header message plus one message
// per itinerary day, keeping each well under the Telegram length limit.
func formatPlanMessages(plan *travel.ChatPlan) (string, []string) {
	var hb strings.Builder
	hb.WriteString("🗺 *Your Trip Plan*\n\n")

	if plan.Summary != "" {
		hb.WriteString(plan.Summary + "\n\n")
	}

	if len(plan.Flights) > 0 {
		hb.WriteString("✈️ *Flights*\n")
		for _, f := range plan.Flights {
			hb.WriteString(formatFlightLine(f) + "\n")
		}
		hb.WriteString("\n")
	}

	if len(plan.Hotels) > 0 {
		hb.WriteString("🏨 *Hotels*\n")
		for _, h := range plan.Hotels {
			hb.WriteString(formatHotelLine(h) + "\n")
		}
		hb.WriteString("\n")
	}

	if plan.Notes != "" {
		hb.WriteString(fmt.Sprintf("_%s_\n", plan.Notes))
	}

	days := make([]string, 0, len(plan.Itinerary.Days))
	for i, day := range plan.Itinerary.Days {
		days = append(days, formatDayMarkdown(i+1, day))
	}

	return strings.TrimRight(hb.String(), "\n"), days
}

func formatFlightLine(f travel.FlightOption) string {
	line := fmt.Sprintf("• %s", f.Airline)
	if f.FlightNumber != "" {
		line += " " + f.FlightNumber
	}
	line += fmt.Sprintf(": %s → %s", f.Departure, f.Arrival)

	var details []string
	if f.Duration != "" {
		details = append(details, f.Duration)
	}
	if f.Stops == 1 {
		details = append(details, "1 stop")
	} else if f.Stops > 1 {
		details = append(details, fmt.Sprintf("%d stops", f.Stops))
	}
	if f.Price > 0 {
		details = append(details, formatMoney(f.Price, f.Currency))
	}
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	return line
}

func formatHotelLine(h travel.HotelOption) string {
	line := fmt.Sprintf("• %s", h.Name)

	var details []string
	if h.Rating > 0 {
		details = append(details, fmt.Sprintf("%.1f★", h.Rating))
	}
	if h.PricePerNight > 0 {
		details = append(details, formatMoney(h.PricePerNight, h.Currency)+"/night")
	}
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	return line
}

func formatMoney(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.0f", amount)
	}
	return fmt.Sprintf("%.0f %s", amount, currency)
}

func formatDayMarkdown(n int, day travel.ItineraryDay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Day %d: %s*\n\n", n, day.Date)

	for _, block := range day.Blocks {
		if len(block.Activities) == 0 {
			continue
		}
		fmt.Fprintf(&b, "*%s*\n", block.Time)
		for _, act := range block.Activities {
			b.WriteString("• " + act.Name)
			if act.EstimatedTime != "" {
				fmt.Fprintf(&b, " (%s)", act.EstimatedTime)
			}
			b.WriteString("\n")
			if act.Description != "" {
				fmt.Fprintf(&b, "_%s_\n", act.Description)
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.send(chatID, sb.String())
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.cfg.AdminTelegramID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}
