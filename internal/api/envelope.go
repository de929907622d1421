package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes. Clients pin it.
const envelopeVersion = 1

// Envelope is the wire shape of every API response. Success responses carry
// data; error responses carry a flat error string plus the structured
// code/message/details for clients that want them.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the Envelope shape.
// Registered on the huma config so handlers return plain bodies.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if statusErr, ok := v.(huma.StatusError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   statusErr.Error(),
			Code:    statusToCode(statusErr.GetStatus()),
			Message: statusErr.Error(),
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
