package qbo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FaultError is a structured error body from the QBO API:
// {"Fault":{"Error":[{...}],"type":"ValidationFault"},"time":...}
type FaultError struct {
	StatusCode int
	Type       string
	Errors     []FaultDetail
}

type FaultDetail struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail"`
	Code    string `json:"code"`
	Element string `json:"element"`
}

func (f *FaultError) Error() string {
	parts := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		part := e.Message
		if e.Detail != "" {
			part += ": " + e.Detail
		}
		if e.Code != "" {
			part += " (code " + e.Code + ")"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("qbo fault %s (http %d)", f.Type, f.StatusCode)
	}
	return fmt.Sprintf("qbo fault %s (http %d): %s", f.Type, f.StatusCode, strings.Join(parts, "; "))
}

type faultEnvelope struct {
	Fault struct {
		Error []FaultDetail `json:"Error"`
		Type  string        `json:"type"`
	} `json:"Fault"`
}

// parseFault decodes a fault body; ok is false when the body is not a
// recognizable fault envelope.
func parseFault(statusCode int, body []byte) (*FaultError, bool) {
	var env faultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if env.Fault.Type == "" && len(env.Fault.Error) == 0 {
		return nil, false
	}
	return &FaultError{
		StatusCode: statusCode,
		Type:       env.Fault.Type,
		Errors:     env.Fault.Error,
	}, true
}
