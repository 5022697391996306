package gateway

// Mode selects where data comes from.
type Mode string

const (
	ModeSimulated Mode = "simulated"
	ModeLive      Mode = "live"
)

// ParseMode reads the raw USE_MOCK_DATA value. Only the exact string "false"
// selects live data; anything else, including unset, is simulated.
func ParseMode(raw string) Mode {
	if raw == "false" {
		return ModeLive
	}
	return ModeSimulated
}
