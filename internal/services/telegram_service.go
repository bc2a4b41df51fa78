package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/fftopup/internal/catalog"
	"github.com/example/fftopup/internal/orders"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService sends operator alerts to a Telegram chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice renders an NPR amount with thousand separators, e.g. "Rs 18,000".
func FormatPrice(amount decimal.Decimal) string {
	str := amount.Round(0).Abs().String()

	var result strings.Builder
	if amount.IsNegative() {
		result.WriteString("-")
	}
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return "Rs " + result.String()
}

func describeProduct(e orders.TimelineEntry) string {
	if e.Kind == orders.KindOffer {
		return html.EscapeString(e.OfferName)
	}
	return fmt.Sprintf("%d Diamonds", e.Diamonds)
}

// NotifyNewOrder alerts operators that a payment proof is waiting for review.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, e orders.TimelineEntry) error {
	if s.adminChatID == "" {
		return nil
	}

	txn := "-"
	if e.TransactionID != nil {
		txn = html.EscapeString(*e.TransactionID)
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>📦 Item:</b> %s
<b>💰 Amount:</b> %s
<b>🎮 UID:</b> %s
<b>👤 IGN:</b> %s
<b>💳 Payment:</b> %s
<b>🧾 Transaction:</b> %s
<b>📍 Status:</b> %s
━━━━━━━━━━━━━━━━━━
<i>%s</i>`,
		e.ID,
		describeProduct(e),
		FormatPrice(e.Amount),
		html.EscapeString(e.UID),
		html.EscapeString(e.IGN),
		html.EscapeString(e.PaymentMethod),
		txn,
		e.Status,
		catalog.StoreName,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}

// NotifyStatusChange reports an operator decision on an order.
func (s *TelegramService) NotifyStatusChange(ctx context.Context, e orders.TimelineEntry, from orders.Status) error {
	if s.adminChatID == "" {
		return nil
	}

	icon := "🔄"
	switch e.Status {
	case orders.StatusCompleted:
		icon = "✅"
	case orders.StatusRejected:
		icon = "❌"
	}

	message := fmt.Sprintf(`<b>%s ORDER %s</b>
<b>📋 Order:</b> %s
<b>📦 Item:</b> %s
<b>💰 Amount:</b> %s
<b>📍 Status:</b> %s → %s`,
		icon,
		strings.ToUpper(string(e.Status)),
		e.ID,
		describeProduct(e),
		FormatPrice(e.Amount),
		from,
		e.Status,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
