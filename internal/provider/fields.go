package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Response field fallback chains, first non-empty wins.
//
//	booking flow: reference <- id, booking_id; checkout <- checkout_url, payment_url
//	lead flow:    reference <- id, lead_id;    checkout is derived, never read
var (
	bookingReferenceKeys = []string{"id", "booking_id"}
	bookingCheckoutKeys  = []string{"checkout_url", "payment_url"}
	leadReferenceKeys    = []string{"id", "lead_id"}
)

// responseFields is a decoded JSON object with stringified scalar values.
type responseFields map[string]string

func decodeFields(body []byte) (responseFields, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	fields := make(responseFields, len(raw))
	// A "data" envelope is read first so top-level keys take precedence.
	if data, ok := raw["data"].(map[string]any); ok {
		fields.collect(data)
	}
	fields.collect(raw)

	return fields, nil
}

func (f responseFields) collect(obj map[string]any) {
	for k, v := range obj {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				f[k] = s
			}
		case json.Number:
			f[k] = t.String()
		}
	}
}

// first returns the first non-empty value among keys.
func (f responseFields) first(keys []string) string {
	values := lo.Map(keys, func(k string, _ int) string { return f[k] })
	v, _ := lo.Coalesce(values...)
	return v
}
