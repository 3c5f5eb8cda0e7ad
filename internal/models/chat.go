package models

import "encoding/json"

// Chat is read-only reference data scoped to one instance.
type Chat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts {id,name} as well as Evolution's
// {remoteJid,pushName} chat records.
func (c *Chat) UnmarshalJSON(data []byte) error {
	var w struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		RemoteJID string `json:"remoteJid"`
		PushName  string `json:"pushName"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.ID = w.ID
	if w.RemoteJID != "" {
		c.ID = w.RemoteJID
	}
	c.Name = w.Name
	if c.Name == "" {
		c.Name = w.PushName
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	return nil
}
