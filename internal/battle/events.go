package battle

// Event is one entry of the battle event stream. Viewers and loggers consume
// it read-only; the engine never depends on whether anyone listens.
type Event struct {
	T       float64        `json:"t"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

const (
	EvSpawn  = "Spawn"
	EvMove   = "Move"
	EvStall  = "Stall"
	EvAttack = "Attack"
	EvHit    = "Hit"
	EvFizzle = "Fizzle"
	EvDeath  = "Death"
)
