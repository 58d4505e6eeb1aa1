package outfit

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which gateway endpoint a query uses and which panels may render.
type Mode string

const (
	ModeBasic Mode = "basic"
	ModeSmart Mode = "smart"
)

// ParseMode accepts "basic" or "smart" in any case.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeBasic:
		return ModeBasic, nil
	case ModeSmart:
		return ModeSmart, nil
	default:
		return "", fmt.Errorf("unknown mode %q", raw)
	}
}

// Query is the input to one request cycle. It is copied at submit time and never changed afterwards.
type Query struct {
	City string `json:"city"`
	Mode Mode   `json:"mode"`
}

// Service names a backend subsystem reported in the outcome's system status.
type Service string

const (
	ServiceWeather  Service = "weather"
	ServiceOutfit   Service = "outfit"
	ServiceWardrobe Service = "wardrobe"
)

// ServiceStatus is the raw status string reported for a service. Only "live" is
// treated as healthy; everything else renders as a fallback.
type ServiceStatus string

const (
	StatusLive     ServiceStatus = "live"
	StatusFallback ServiceStatus = "fallback"
)

// Weather is the current conditions part of an outcome.
type Weather struct {
	Temperature float64  `json:"temperature"`
	Condition   string   `json:"condition,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// Recommendation is the general, wardrobe independent clothing advice.
type Recommendation struct {
	Base        string   `json:"base,omitempty"`
	Layers      []string `json:"layers,omitempty"`
	Footwear    string   `json:"footwear,omitempty"`
	Accessories []string `json:"accessories,omitempty"`
	StyleTip    string   `json:"styleTip,omitempty"`
}

// Garment is a single piece of clothing picked from the user's wardrobe.
type Garment struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Type  string `json:"type,omitempty"`
}

// ActualOutfit is the wardrobe match returned by the smart endpoint.
type ActualOutfit struct {
	Top           Garment  `json:"top"`
	Bottom        Garment  `json:"bottom"`
	Layer         *Garment `json:"layer,omitempty"`
	Footwear      Garment  `json:"footwear"`
	Style         string   `json:"style,omitempty"`
	FashionAdvice string   `json:"fashionAdvice,omitempty"`
}

// Outcome is the decoded successful response for one query. Treat it as
// immutable once it has been stored in a State.
type Outcome struct {
	City                  string                    `json:"city"`
	SystemStatus          map[Service]ServiceStatus `json:"systemStatus,omitempty"`
	Weather               Weather                   `json:"weather"`
	GeneralRecommendation Recommendation            `json:"generalRecommendation"`
	ActualOutfit          *ActualOutfit             `json:"actualOutfit,omitempty"`
	WardrobeConfidence    *float64                  `json:"wardrobeConfidence,omitempty"`
	FunMessage            string                    `json:"funMessage,omitempty"`
}

// Phase is the lifecycle position of the controller.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSettled Phase = "settled"
)

// State is the controller's single piece of mutable state. Snapshots handed out
// by the controller are copies.
type State struct {
	Phase   Phase  `json:"phase"`
	Seq     uint64 `json:"seq"`
	CycleID string `json:"cycleId,omitempty"`
	Query   Query  `json:"query"`

	// Outcome is set once settled successfully. While loading it still holds the
	// previous outcome, which is never rendered.
	Outcome   *Outcome  `json:"outcome,omitempty"`
	Err       string    `json:"error,omitempty"`
	SettledAt time.Time `json:"settledAt,omitempty"`
}

// Succeeded reports whether the state is a settled success.
func (s State) Succeeded() bool {
	return s.Phase == PhaseSettled && s.Err == "" && s.Outcome != nil
}

// Failed reports whether the state is a settled failure.
func (s State) Failed() bool {
	return s.Phase == PhaseSettled && s.Err != ""
}

// Ticket identifies a submitted cycle.
type Ticket struct {
	Seq     uint64 `json:"seq"`
	CycleID string `json:"cycleId"`
	Query   Query  `json:"query"`
}

// Error codes shared by the controller and its fetchers.
const (
	CodeInvalidInput = "invalid_input"
	CodeGatewayError = "gateway_error"
	CodeDecodeError  = "decode_error"
	CodeBreakerOpen  = "breaker_open"

	// CodeServerError marks a failure whose message was supplied by the server
	// and is shown verbatim.
	CodeServerError = "server_error"
)

// GenericFailureMessage is shown when no server supplied message is available.
const GenericFailureMessage = "Failed to fetch data"
