package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("GET /v1/scheduler/status", h.SchedulerStatus)
	mux.HandleFunc("POST /v1/scheduler/start", h.SchedulerStart)
	mux.HandleFunc("POST /v1/scheduler/stop", h.SchedulerStop)

	mux.HandleFunc("POST /v1/sms/send", h.SendSMS)
	mux.HandleFunc("POST /v1/webhooks/sms", h.SMSWebhook)
	mux.HandleFunc("GET /v1/messages/{sid}/delivery", h.MessageDelivery)

	mux.HandleFunc("GET /v1/conversations", h.ListConversations)
	mux.HandleFunc("GET /v1/conversations/{id}", h.GetConversation)
	mux.HandleFunc("GET /v1/conversations/{id}/messages", h.ListConversationMessages)
	mux.HandleFunc("POST /v1/conversations/{id}/read", h.MarkConversationRead)

	mux.HandleFunc("GET /v1/numbers", h.ListNumbers)
	mux.HandleFunc("POST /v1/numbers", h.RegisterNumber)
	mux.HandleFunc("PUT /v1/numbers/{id}/status", h.SetNumberStatus)

	mux.HandleFunc("POST /v1/campaigns/launch", h.LaunchCampaign)
	mux.HandleFunc("POST /v1/compose", h.ComposeSMS)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("campaign-builder"))
	})

	return mux
}
