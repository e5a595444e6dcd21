package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"StockScraper/internal/models"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	messages []string
	err      error
}

func (s *recordingSender) Send(_ context.Context, message string) error {
	s.messages = append(s.messages, message)
	return s.err
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(models.Product{Name: "Matcha A", Price: "$10", StockStatus: models.OutOfStock})
	require.Equal(t, "<b>Item:</b> Matcha A <i>Price:</i> $10 <b>Out of Stock</b>", line)
}

func TestFormatLineEscapesEveryField(t *testing.T) {
	name := `Tea & <Co> "Best" 'Blend'`
	line := FormatLine(models.Product{Name: name, Price: "<$10>", StockStatus: models.InStock})

	// Strip the formatting tags this package adds; what remains must hold no
	// raw markup characters.
	payload := line
	for _, tag := range []string{"<b>", "</b>", "<i>", "</i>"} {
		payload = strings.ReplaceAll(payload, tag, "")
	}
	for _, raw := range []string{"<", ">", `"`, "'"} {
		require.NotContains(t, payload, raw)
	}

	escapedName := EscapeHTML(name)
	require.Equal(t, "Tea &amp; &lt;Co&gt; &quot;Best&quot; &#039;Blend&#039;", escapedName)
	require.Contains(t, line, escapedName)
	require.Contains(t, line, "&lt;$10&gt;")
}

func TestEscapeHTMLEachCharacterOnce(t *testing.T) {
	escaped := EscapeHTML(`&<>"'`)
	for _, entity := range []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#039;"} {
		require.Equal(t, 1, strings.Count(escaped, entity), entity)
	}
	require.Equal(t, "&amp;&lt;&gt;&quot;&#039;", escaped)
}

func TestDigestJoinsWithBlankLine(t *testing.T) {
	digest := Digest([]models.Product{
		{Name: "A", Price: "$1", StockStatus: models.InStock},
		{Name: "B", Price: "$2", StockStatus: models.OutOfStock},
	})
	lines := strings.Split(digest, "\n\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "A")
	require.Contains(t, lines[1], "B")
}

func TestDispatchEmptySendsNothing(t *testing.T) {
	sender := &recordingSender{}
	report := NewDispatcher(sender, nil).Dispatch(context.Background(), nil)

	require.Empty(t, sender.messages)
	require.False(t, report.Sent)
	require.NoError(t, report.Err)
}

func TestDispatchSendsOneMessage(t *testing.T) {
	sender := &recordingSender{}
	products := []models.Product{
		{Name: "A", Price: "$1", StockStatus: models.InStock},
		{Name: "B", Price: "$2", StockStatus: models.OutOfStock},
		{Name: "C", Price: "$3", StockStatus: models.Unknown},
	}

	report := NewDispatcher(sender, nil).Dispatch(context.Background(), products)

	require.Len(t, sender.messages, 1)
	require.Equal(t, Digest(products), sender.messages[0])
	require.True(t, report.Sent)
	require.Equal(t, 3, report.Lines)
}

func TestDispatchFailureIsReported(t *testing.T) {
	sender := &recordingSender{err: errors.New("boom")}
	report := NewDispatcher(sender, nil).Dispatch(context.Background(), []models.Product{{Name: "A"}})

	require.False(t, report.Sent)
	require.EqualError(t, report.Err, "boom")
}

func TestTelegramSend(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(nil, srv.URL, "123:abc", "42")
	require.NoError(t, tg.Send(context.Background(), "<b>hi</b>"))

	require.Equal(t, "/bot123:abc/sendMessage", path)
	require.Equal(t, telegramMessage{ChatID: "42", Text: "<b>hi</b>", ParseMode: "HTML"}, got)
}

func TestTelegramSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: can't parse entities"}`))
	}))
	defer srv.Close()

	err := NewTelegram(nil, srv.URL, "t", "c").Send(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "can't parse entities")
}

func TestTelegramMisconfigured(t *testing.T) {
	err := NewTelegram(nil, "", "", "").Send(context.Background(), "x")
	require.ErrorIs(t, err, errTelegramMisconfigured)
}

func TestEmailSend(t *testing.T) {
	var sent *email.Email
	var sentAddr string
	m := NewEmail(SMTPConfig{
		Server:  "smtp.example.com",
		Port:    587,
		From:    "watcher@example.com",
		To:      []string{"ops@example.com"},
		Subject: "Stock changes",
	})
	m.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		sent = e
		sentAddr = addr
		require.Nil(t, auth)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "line one\n\nline two"))
	require.Equal(t, "smtp.example.com:587", sentAddr)
	require.Equal(t, "line one<br><br>line two", string(sent.HTML))
	require.Equal(t, []string{"ops@example.com"}, sent.To)
}

func TestEmailRetriesWithoutAuth(t *testing.T) {
	calls := 0
	m := NewEmail(SMTPConfig{Server: "smtp.example.com", Port: 25, Username: "u", Password: "p", To: []string{"a@b"}})
	m.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		calls++
		if auth != nil {
			return errors.New("smtp: server doesn't support AUTH")
		}
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "x"))
	require.Equal(t, 2, calls)
}
