package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fftopup/internal/orders"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(100), "Rs 100"},
		{decimal.NewFromInt(1050), "Rs 1,050"},
		{decimal.NewFromInt(18000), "Rs 18,000"},
		{decimal.NewFromInt(1234567), "Rs 1,234,567"},
		{decimal.RequireFromString("219.6"), "Rs 220"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in))
	}
}

func newTestService(t *testing.T, status int) (*TelegramService, *[]telegramMessage) {
	t.Helper()
	var got []telegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		var m telegramMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		got = append(got, m)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	s := NewTelegramService("token", "42")
	s.baseURL = srv.URL
	s.client = srv.Client()
	return s, &got
}

func TestNotifyNewOrder(t *testing.T) {
	s, got := newTestService(t, http.StatusOK)
	txn := "TX<1>"

	err := s.NotifyNewOrder(context.Background(), orders.TimelineEntry{
		Kind:          orders.KindDiamond,
		ID:            uuid.New(),
		UID:           "123456",
		IGN:           "Pro_Gamer1",
		PaymentMethod: "IME Pay",
		TransactionID: &txn,
		Status:        orders.StatusPending,
		Amount:        decimal.NewFromInt(2200),
		Diamonds:      2530,
	})
	require.NoError(t, err)
	require.Len(t, *got, 1)

	m := (*got)[0]
	assert.Equal(t, "42", m.ChatID)
	assert.Equal(t, "HTML", m.ParseMode)
	assert.Contains(t, m.Text, "2530 Diamonds")
	assert.Contains(t, m.Text, "Rs 2,200")
	assert.Contains(t, m.Text, "TX&lt;1&gt;")
}

func TestNotifyStatusChange(t *testing.T) {
	s, got := newTestService(t, http.StatusOK)

	err := s.NotifyStatusChange(context.Background(), orders.TimelineEntry{
		Kind:      orders.KindOffer,
		ID:        uuid.New(),
		OfferName: "Weekly Pass",
		Status:    orders.StatusRejected,
		Amount:    decimal.NewFromInt(220),
	}, orders.StatusPending)
	require.NoError(t, err)
	require.Len(t, *got, 1)
	assert.Contains(t, (*got)[0].Text, "ORDER REJECTED")
	assert.Contains(t, (*got)[0].Text, "pending → rejected")
}

func TestSendMessageReportsBadStatus(t *testing.T) {
	s, _ := newTestService(t, http.StatusBadRequest)
	assert.Error(t, s.SendToAdmin(context.Background(), "hi"))
}

func TestUnconfiguredServiceIsSilent(t *testing.T) {
	s := NewTelegramService("", "")
	assert.NoError(t, s.NotifyNewOrder(context.Background(), orders.TimelineEntry{}))
	assert.NoError(t, s.SendMessage(context.Background(), "1", "x"))
}
