package api

import (
	"fmt"
	"net/http"

	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/service"
)

type launchRequest struct {
	Name         string   `json:"name"`
	CandidateIDs []string `json:"candidate_ids"`
	Channels     []string `json:"channels"`
	SMSTemplate  string   `json:"sms_template"`
	EmailSubject string   `json:"email_subject"`
	EmailBody    string   `json:"email_body"`
}

func (in launchRequest) toService() (service.LaunchRequest, error) {
	req := service.LaunchRequest{
		Name:         in.Name,
		CandidateIDs: in.CandidateIDs,
		SMSTemplate:  in.SMSTemplate,
		EmailSubject: in.EmailSubject,
		EmailBody:    in.EmailBody,
	}
	for _, ch := range in.Channels {
		switch ch {
		case "sms":
			req.SMS = true
		case "voice":
			req.Voice = true
		case "email":
			req.Email = true
		default:
			return req, fmt.Errorf("%w: unknown channel %q", service.ErrInvalidRequest, ch)
		}
	}
	return req, nil
}

func (h *Handler) LaunchCampaign(w http.ResponseWriter, r *http.Request) {
	var in launchRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := in.toService()
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.campaigns.Launch(r.Context(), req)
	if err != nil {
		if res != nil {
			writeJSON(w, statusFor(err), map[string]any{"success": false, "campaign_id": res.CampaignID, "error": err.Error()})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type composeRequest struct {
	CandidateName string `json:"candidate_name"`
	Specialty     string `json:"specialty"`
	Role          string `json:"role"`
	Location      string `json:"location"`
	Notes         string `json:"notes"`
}

func (h *Handler) ComposeSMS(w http.ResponseWriter, r *http.Request) {
	if h.composer == nil || !h.composer.Configured() {
		writeError(w, r, fmt.Errorf("%w: composer api key is not set", service.ErrConfiguration))
		return
	}

	var in composeRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Role == "" && in.Specialty == "" {
		writeError(w, r, fmt.Errorf("%w: role or specialty is required", service.ErrInvalidRequest))
		return
	}

	text, err := h.composer.ComposeSMS(r.Context(), client.ComposeBrief{
		CandidateName: in.CandidateName,
		Specialty:     in.Specialty,
		Role:          in.Role,
		Location:      in.Location,
		Notes:         in.Notes,
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": text})
}
