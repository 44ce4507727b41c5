package toolcall

import "encoding/json"

// Message is a vendor-shaped outbound message, ready to be appended to the
// vendor's next request payload by the caller's history manager.
type Message map[string]any

// Role returns the message role, or "" when absent.
func (m Message) Role() string {
	role, _ := m["role"].(string)
	return role
}

// JSON encodes the message.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(map[string]any(m))
}
