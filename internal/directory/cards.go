package directory

import "github.com/zulandar/wadash/internal/models"

// Card is the presentation of one instance.
type Card struct {
	Name        string
	Status      models.InstanceStatus
	Badge       string // exactly one of connected, connecting, disconnected
	ShowQR      bool
	QRDataURI   string
	ShowConnect bool
	ShowLogout  bool
}

// Cards derives one card per instance, in list order.
func (v *View) Cards() []Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	cards := make([]Card, 0, len(v.instances))
	for _, inst := range v.instances {
		qr := inst.QRCode
		if qr == "" {
			qr = v.qr[inst.InstanceName]
		}
		cards = append(cards, CardFor(inst, qr))
	}
	return cards
}

// CardFor derives the card for a single instance using qr as its QR
// payload.
func CardFor(inst models.Instance, qr string) Card {
	status := models.NormalizeStatus(string(inst.Status))
	c := Card{
		Name:        inst.InstanceName,
		Status:      status,
		Badge:       string(status),
		ShowConnect: status == models.StatusDisconnected,
		ShowLogout:  status != models.StatusDisconnected,
	}
	if status == models.StatusConnecting && qr != "" {
		c.ShowQR = true
		c.QRDataURI = DataURI(qr)
	}
	return c
}

// DataURI wraps a base64 PNG payload in a data URI. Payloads that already
// carry a data: prefix are returned unchanged.
func DataURI(b64 string) string {
	if len(b64) >= 5 && b64[:5] == "data:" {
		return b64
	}
	return "data:image/png;base64," + b64
}
