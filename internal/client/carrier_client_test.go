package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCarrierClient_SendSMS_Success(t *testing.T) {
	t.Parallel()

	type gotReq struct {
		Method      string
		Path        string
		ContentType string
		User, Pass  string
		To          string
		From        string
		Body        string
		Callback    string
	}

	var captured gotReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.ContentType = r.Header.Get("Content-Type")
		captured.User, captured.Pass, _ = r.BasicAuth()
		_ = r.ParseForm()
		captured.To = r.PostForm.Get("To")
		captured.From = r.PostForm.Get("From")
		captured.Body = r.PostForm.Get("Body")
		captured.Callback = r.PostForm.Get("StatusCallback")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewCarrierClient(srv.URL, "AC1", "secret", time.Second).
		WithStatusCallback("https://example.com/v1/webhooks/sms")

	msg, err := c.SendSMS(context.Background(), "+15551234567", "+15550000002", "hello")
	if err != nil {
		t.Fatalf("SendSMS() error: %v", err)
	}
	if msg.SID != "SM123" || msg.Status != "queued" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if captured.Method != http.MethodPost {
		t.Fatalf("expected POST, got %q", captured.Method)
	}
	if captured.Path != "/2010-04-01/Accounts/AC1/Messages.json" {
		t.Fatalf("unexpected path %q", captured.Path)
	}
	if captured.ContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected Content-Type %q", captured.ContentType)
	}
	if captured.User != "AC1" || captured.Pass != "secret" {
		t.Fatalf("expected basic auth AC1/secret, got %q/%q", captured.User, captured.Pass)
	}
	if captured.To != "+15551234567" || captured.From != "+15550000002" || captured.Body != "hello" {
		t.Fatalf("unexpected form: %+v", captured)
	}
	if captured.Callback != "https://example.com/v1/webhooks/sms" {
		t.Fatalf("unexpected StatusCallback %q", captured.Callback)
	}
}

func TestCarrierClient_SendSMS_ErrorPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`))
	}))
	defer srv.Close()

	c := NewCarrierClient(srv.URL, "AC1", "secret", time.Second)

	_, err := c.SendSMS(context.Background(), "bad", "+1555", "hi")
	var ce *CarrierError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CarrierError, got %v", err)
	}
	if ce.StatusCode != http.StatusBadRequest || ce.Code != 21211 {
		t.Fatalf("unexpected carrier error: %+v", ce)
	}
	if !strings.Contains(ce.Message, "not a valid phone number") {
		t.Fatalf("expected carrier message preserved, got %q", ce.Message)
	}
}

func TestCarrierClient_SendSMS_NonJSONError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewCarrierClient(srv.URL, "AC1", "secret", time.Second).SendSMS(context.Background(), "+1", "+2", "hi")
	var ce *CarrierError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CarrierError, got %v", err)
	}
	if ce.Message != "upstream down" {
		t.Fatalf("expected raw body as message, got %q", ce.Message)
	}
}

func TestCarrierClient_SendSMS_MissingSID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	_, err := NewCarrierClient(srv.URL, "AC1", "secret", time.Second).SendSMS(context.Background(), "+1", "+2", "hi")
	if err == nil || !strings.Contains(err.Error(), "missing sid") {
		t.Fatalf("expected missing sid error, got %v", err)
	}
}

func TestCarrierClient_SendSMS_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	c := NewCarrierClient(srv.URL, "AC1", "secret", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.SendSMS(ctx, "+1", "+2", "hi")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "context") &&
		!strings.Contains(strings.ToLower(err.Error()), "deadline") {
		t.Fatalf("expected context/deadline error, got: %v", err)
	}
}

func TestCarrierClient_Configured(t *testing.T) {
	if NewCarrierClient("http://x", "", "", 0).Configured() {
		t.Fatalf("expected unconfigured client without credentials")
	}
	if !NewCarrierClient("http://x", "AC", "tok", 0).Configured() {
		t.Fatalf("expected configured client")
	}
}
