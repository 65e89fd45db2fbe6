package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

const flowLead = "lead"

type createLeadPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// LeadProvider registers a lead on the trip and builds the checkout URL from
// a template; the provider does not return one for leads.
type LeadProvider struct {
	client   *client
	template string
}

func NewLeadProvider(cfg utils.WeTravelConfig, httpClient *http.Client, log *zap.Logger) *LeadProvider {
	return &LeadProvider{
		client:   newClient(cfg, httpClient, log.With(zap.String("provider", "wetravel"), zap.String("flow", flowLead))),
		template: cfg.CheckoutURLTemplate,
	}
}

func (p *LeadProvider) Name() string {
	return "wetravel-" + flowLead
}

func (p *LeadProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	payload := createLeadPayload{
		FirstName: req.Customer.FirstName,
		LastName:  req.Customer.LastName,
		Email:     req.Customer.Email,
		Phone:     req.Customer.Phone,
		Notes:     req.Note,
	}

	body, err := p.client.post(ctx, flowLead, p.client.tripURL("leads"), payload, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	fields, err := decodeFields(body)
	if err != nil {
		return nil, err
	}

	leadID := fields.first(leadReferenceKeys)
	if leadID == "" {
		return nil, fmt.Errorf("create lead: %w", ErrMissingReference)
	}

	return &Checkout{
		ReferenceID: leadID,
		CheckoutURL: CheckoutURL(p.template, p.client.tripID, leadID),
	}, nil
}

// CheckoutURL fills the {trip_id} and {lead_id} placeholders of template
// with query-escaped values.
func CheckoutURL(template, tripID, leadID string) string {
	return strings.NewReplacer(
		"{trip_id}", url.QueryEscape(tripID),
		"{lead_id}", url.QueryEscape(leadID),
	).Replace(template)
}
