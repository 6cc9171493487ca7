package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topic names. Stations are mode scoped so a sink can follow a single mode
// or all of them.
const DisruptionsTopic = "disruptions"

func StationsTopic(mode string) string {
	return fmt.Sprintf("stations.%s", mode)
}

const ControlClear = "CLEAR"

// ControlMessage is an operator signal, not a data record. CLEAR tells a
// sink to delete every indexed document for Mode (all documents when Mode is
// empty) before it indexes the records that follow in the same cycle.
type ControlMessage struct {
	Control string `json:"control"`
	Mode    string `json:"mode,omitempty"`
}

// ParseControlMessage reports whether the payload is a control message.
// Data records never carry a "control" field.
func ParseControlMessage(payload []byte) (*ControlMessage, bool) {
	var message ControlMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return nil, false
	}
	if message.Control == "" {
		return nil, false
	}

	return &message, true
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DisruptionRecord struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	PhysicalMode string    `json:"physical_mode"`
	Status       string    `json:"status"`
	Severity     string    `json:"severity"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Period       Period    `json:"period"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UniquenessKey is the index document id. The same upstream disruption id
// can recur under different modes, so both are part of the identity.
func (r *DisruptionRecord) UniquenessKey() string {
	return fmt.Sprintf("%s::%s", r.ID, r.Mode)
}

type Coordinates struct {
	Lat float64 `json:"lat" groups:"basic"`
	Lon float64 `json:"lon" groups:"basic"`
}

type StationRecord struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	NameNormalized string       `json:"name_normalized,omitempty"`
	Label          string       `json:"label"`
	City           string       `json:"city,omitempty"`
	Mode           string       `json:"mode"`
	EmbeddedType   string       `json:"embedded_type"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
}

func (r *StationRecord) UniquenessKey() string {
	return fmt.Sprintf("%s:%s", r.Mode, r.ID)
}
