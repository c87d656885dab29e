package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// TelegramService handles sending notifications to Telegram.
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
		baseURL:     "https://api.telegram.org",
		client:      http.DefaultClient,
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

// FormatPrice prefixes the currency symbol and adds thousand separators.
func FormatPrice(amount float64, currency string) string {
	str := strconv.FormatInt(int64(amount), 10)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return currency + result.String()
}

// AppointmentCreated tells the admin chat about a new viewing request.
func (s *TelegramService) AppointmentCreated(ctx context.Context, event AppointmentEvent) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>🏠 新的预约看房</b>
<b>房源:</b> %s (%s)
<b>价格:</b> %s
<b>联系人:</b> %s
<b>电话:</b> %s
<b>时间:</b> %s %s`,
		html.EscapeString(event.PropertyName),
		html.EscapeString(event.Location),
		FormatPrice(event.Price, event.Currency),
		html.EscapeString(event.Name),
		html.EscapeString(event.Phone),
		html.EscapeString(event.PreferredDate),
		html.EscapeString(event.PreferredTime),
	)
	if event.Message != "" {
		message += "\n<b>留言:</b> " + html.EscapeString(event.Message)
	}

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
