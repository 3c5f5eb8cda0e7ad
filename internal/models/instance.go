package models

import (
	"encoding/json"
	"strings"
)

// InstanceStatus is the lifecycle state of a messaging instance as reported
// by the gateway.
type InstanceStatus string

const (
	StatusConnected    InstanceStatus = "connected"
	StatusConnecting   InstanceStatus = "connecting"
	StatusDisconnected InstanceStatus = "disconnected"
)

// NormalizeStatus folds gateway state vocabulary into one of the three
// directory statuses. Unknown values are treated as disconnected.
func NormalizeStatus(raw string) InstanceStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "connected", "open":
		return StatusConnected
	case "connecting":
		return StatusConnecting
	default:
		return StatusDisconnected
	}
}

// Instance is one managed WhatsApp connection session, identified by name.
type Instance struct {
	InstanceName string         `json:"instanceName"`
	Status       InstanceStatus `json:"status"`
	QRCode       string         `json:"qrcode,omitempty"` // base64 PNG
}

// instanceWire accepts both the flat directory shape and the nested
// InstanceInfo shape returned by Evolution-compatible gateways.
type instanceWire struct {
	InstanceName string `json:"instanceName"`
	Status       string `json:"status"`
	State        string `json:"state"`
	QRCode       string `json:"qrcode"`
	Connected    *bool  `json:"connected"`
	Instance     *struct {
		InstanceName string `json:"instanceName"`
		Owner        string `json:"owner"`
		ProfileName  string `json:"profileName"`
		Status       string `json:"status"`
		State        string `json:"state"`
	} `json:"instance"`
}

// UnmarshalJSON decodes either instance shape and normalizes the status.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var w instanceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	name, status := w.InstanceName, w.Status
	if status == "" {
		status = w.State
	}
	if w.Instance != nil {
		if name == "" {
			name = w.Instance.InstanceName
		}
		if status == "" {
			status = w.Instance.Status
		}
		if status == "" {
			status = w.Instance.State
		}
	}

	*i = Instance{
		InstanceName: name,
		Status:       NormalizeStatus(status),
		QRCode:       w.QRCode,
	}
	if w.Connected != nil && *w.Connected {
		i.Status = StatusConnected
	}
	return nil
}

// ConnectResult is the side-channel payload of a connect request.
type ConnectResult struct {
	QRCode      string `json:"base64,omitempty"` // base64 PNG, may carry a data: prefix
	Code        string `json:"code,omitempty"`   // raw pairing string encoded in the QR
	PairingCode string `json:"pairingCode,omitempty"`
}

// PNGBase64 returns the QR image payload without any data URI prefix.
func (r ConnectResult) PNGBase64() string {
	if idx := strings.Index(r.QRCode, "base64,"); idx >= 0 {
		return r.QRCode[idx+len("base64,"):]
	}
	return r.QRCode
}
