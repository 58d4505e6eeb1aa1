package outfit

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Icon is the weather glyph chosen for a condition.
type Icon string

const (
	IconSun   Icon = "sun"
	IconCloud Icon = "cloud"
	IconRain  Icon = "rain"
	IconSnow  Icon = "snow"
)

// DefaultIcon is used for unknown or missing conditions.
const DefaultIcon = IconCloud

var conditionIcons = map[string]Icon{
	"sunny":  IconSun,
	"clear":  IconSun,
	"cloudy": IconCloud,
	"rainy":  IconRain,
	"rain":   IconRain,
	"snow":   IconSnow,
	"snowy":  IconSnow,
}

// TempBand is the color band a temperature falls into.
type TempBand string

const (
	BandCold TempBand = "cold"
	BandMild TempBand = "mild"
	BandWarm TempBand = "warm"
	BandHot  TempBand = "hot"
)

var bandColors = map[TempBand]string{
	BandCold: "blue",
	BandMild: "green",
	BandWarm: "orange",
	BandHot:  "red",
}

// Badge is the rendering of a service status.
type Badge string

const (
	BadgePositive Badge = "positive"
	BadgeFallback Badge = "fallback"
)

// ConfidenceLevel bands the wardrobe match confidence.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Display defaults for absent optional fields.
const (
	NoLayersText         = "None needed"
	NoAccessoriesText    = "None"
	DefaultFashionAdvice = "You'll look amazing!"
	UnknownConditionText = "Unknown"
	MissingHumidityText  = "N/A"
	DefaultSourceText    = "Live"
	LoadingTitle         = "AI is thinking about your outfit..."
	LoadingSubtitle      = "Analyzing weather data and matching with your wardrobe"
	ErrorTitle           = "Oops! Something went wrong"
)

var serviceOrder = map[Service]int{
	ServiceWeather:  0,
	ServiceOutfit:   1,
	ServiceWardrobe: 2,
}

var serviceLabels = map[Service]string{
	ServiceWeather:  "Weather Service",
	ServiceOutfit:   "Outfit Service",
	ServiceWardrobe: "Wardrobe Service",
}

// ViewModel is everything a renderer needs for one frame. Exactly one of
// Loading, Error and Result is set, or none of them when idle.
type ViewModel struct {
	Phase   Phase         `json:"phase"`
	Mode    Mode          `json:"mode"`
	Loading *LoadingPanel `json:"loading,omitempty"`
	Error   *ErrorPanel   `json:"error,omitempty"`
	Result  *ResultView   `json:"result,omitempty"`
}

// Empty reports that there is nothing to show.
func (v ViewModel) Empty() bool {
	return v.Loading == nil && v.Error == nil && v.Result == nil
}

// LoadingPanel is shown while a cycle is in flight.
type LoadingPanel struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// ErrorPanel carries the message of a failed cycle.
type ErrorPanel struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ResultView is the derived form of a successful outcome.
type ResultView struct {
	City       string        `json:"city"`
	Statuses   []StatusBadge `json:"statuses"`
	Weather    WeatherCard   `json:"weather"`
	General    GeneralPanel  `json:"general"`
	Smart      *SmartPanel   `json:"smart,omitempty"`
	FunMessage string        `json:"funMessage,omitempty"`
}

// StatusBadge renders one backend service status.
type StatusBadge struct {
	Service Service       `json:"service"`
	Label   string        `json:"label"`
	Status  ServiceStatus `json:"status"`
	Badge   Badge         `json:"badge"`
	Text    string        `json:"text"`
}

// WeatherCard is the current weather with icon and temperature band.
type WeatherCard struct {
	Icon            Icon     `json:"icon"`
	Temperature     float64  `json:"temperature"`
	TemperatureText string   `json:"temperatureText"`
	Band            TempBand `json:"band"`
	Color           string   `json:"color"`
	Condition       string   `json:"condition"`
	Humidity        string   `json:"humidity"`
	Source          string   `json:"source"`
}

// GeneralPanel holds the general recommendation as display text.
type GeneralPanel struct {
	Base        string `json:"base"`
	Layers      string `json:"layers"`
	Footwear    string `json:"footwear"`
	Accessories string `json:"accessories"`
	StyleTip    string `json:"styleTip,omitempty"`
}

// SmartPanel is the "your actual outfit" panel. Layer is nil when the match had no layer.
type SmartPanel struct {
	Confidence    *ConfidenceBadge `json:"confidence,omitempty"`
	Top           GarmentRow       `json:"top"`
	Bottom        GarmentRow       `json:"bottom"`
	Layer         *GarmentRow      `json:"layer,omitempty"`
	Footwear      GarmentRow       `json:"footwear"`
	Style         string           `json:"style,omitempty"`
	FashionAdvice string           `json:"fashionAdvice"`
}

// ConfidenceBadge shows how well the wardrobe matched.
type ConfidenceBadge struct {
	Level   ConfidenceLevel `json:"level"`
	Percent int             `json:"percent"`
	Label   string          `json:"label"`
}

// GarmentRow is one garment line of the smart panel.
type GarmentRow struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// DeriveView maps a state snapshot to display-ready values. It is pure and total.
func DeriveView(state State, mode Mode) ViewModel {
	view := ViewModel{Phase: state.Phase, Mode: mode}
	switch state.Phase {
	case PhaseLoading:
		view.Loading = &LoadingPanel{Title: LoadingTitle, Subtitle: LoadingSubtitle}
	case PhaseSettled:
		if state.Err != "" {
			view.Error = &ErrorPanel{Title: ErrorTitle, Message: state.Err}
			return view
		}
		if state.Outcome != nil {
			result := deriveResult(*state.Outcome, mode)
			view.Result = &result
		}
	}
	return view
}

func deriveResult(outcome Outcome, mode Mode) ResultView {
	result := ResultView{
		City:       outcome.City,
		Statuses:   statusBadges(outcome.SystemStatus, mode),
		Weather:    weatherCard(outcome.Weather),
		General:    generalPanel(outcome.GeneralRecommendation),
		FunMessage: strings.TrimSpace(outcome.FunMessage),
	}
	if mode == ModeSmart && outcome.ActualOutfit != nil {
		result.Smart = smartPanel(*outcome.ActualOutfit, outcome.WardrobeConfidence)
	}
	return result
}

// IconFor resolves a condition case-insensitively; unknown conditions get DefaultIcon.
func IconFor(condition string) Icon {
	if icon, ok := conditionIcons[strings.ToLower(strings.TrimSpace(condition))]; ok {
		return icon
	}
	return DefaultIcon
}

// BandFor places a Celsius temperature into its band. Lower bounds are inclusive.
func BandFor(celsius float64) TempBand {
	switch {
	case celsius < 10:
		return BandCold
	case celsius < 20:
		return BandMild
	case celsius < 30:
		return BandWarm
	default:
		return BandHot
	}
}

// BadgeFor renders only "live" as positive.
func BadgeFor(status ServiceStatus) Badge {
	if status == StatusLive {
		return BadgePositive
	}
	return BadgeFallback
}

// ConfidenceFor bands a 0..1 match confidence.
func ConfidenceFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence > 0.7:
		return ConfidenceHigh
	case confidence > 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func statusBadges(statuses map[Service]ServiceStatus, mode Mode) []StatusBadge {
	services := make([]Service, 0, len(statuses))
	for svc := range statuses {
		if svc == ServiceWardrobe && mode != ModeSmart {
			continue
		}
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool {
		oi, iKnown := serviceOrder[services[i]]
		oj, jKnown := serviceOrder[services[j]]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return services[i] < services[j]
		}
	})

	badges := make([]StatusBadge, 0, len(services))
	for _, svc := range services {
		status := statuses[svc]
		badge := BadgeFor(status)
		text := "Fallback"
		if badge == BadgePositive {
			text = "Live"
		}
		badges = append(badges, StatusBadge{
			Service: svc,
			Label:   serviceLabel(svc),
			Status:  status,
			Badge:   badge,
			Text:    text,
		})
	}
	return badges
}

func serviceLabel(svc Service) string {
	if label, ok := serviceLabels[svc]; ok {
		return label
	}
	name := strings.TrimSpace(string(svc))
	if name == "" {
		return "Unknown Service"
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:] + " Service"
}

func weatherCard(w Weather) WeatherCard {
	band := BandFor(w.Temperature)
	card := WeatherCard{
		Icon:            IconFor(w.Condition),
		Temperature:     w.Temperature,
		TemperatureText: formatNumber(w.Temperature) + "°C",
		Band:            band,
		Color:           bandColors[band],
		Condition:       firstNonEmpty(w.Condition, UnknownConditionText),
		Humidity:        MissingHumidityText,
		Source:          firstNonEmpty(w.Source, DefaultSourceText),
	}
	if w.Humidity != nil {
		card.Humidity = formatNumber(*w.Humidity) + "%"
	}
	return card
}

func generalPanel(rec Recommendation) GeneralPanel {
	return GeneralPanel{
		Base:        strings.TrimSpace(rec.Base),
		Layers:      joinOr(rec.Layers, NoLayersText),
		Footwear:    strings.TrimSpace(rec.Footwear),
		Accessories: joinOr(rec.Accessories, NoAccessoriesText),
		StyleTip:    strings.TrimSpace(rec.StyleTip),
	}
}

func smartPanel(actual ActualOutfit, confidence *float64) *SmartPanel {
	panel := &SmartPanel{
		Top:           garmentRow(actual.Top),
		Bottom:        garmentRow(actual.Bottom),
		Footwear:      garmentRow(actual.Footwear),
		Style:         strings.TrimSpace(actual.Style),
		FashionAdvice: firstNonEmpty(actual.FashionAdvice, DefaultFashionAdvice),
	}
	if actual.Layer != nil {
		row := garmentRow(*actual.Layer)
		panel.Layer = &row
	}
	if confidence != nil {
		percent := int(math.Round(*confidence * 100))
		panel.Confidence = &ConfidenceBadge{
			Level:   ConfidenceFor(*confidence),
			Percent: percent,
			Label:   strconv.Itoa(percent) + "% Match",
		}
	}
	return panel
}

func garmentRow(g Garment) GarmentRow {
	parts := make([]string, 0, 2)
	for _, part := range []string{g.Color, g.Type} {
		if clean := strings.TrimSpace(part); clean != "" {
			parts = append(parts, clean)
		}
	}
	return GarmentRow{
		Name:   strings.TrimSpace(g.Name),
		Detail: strings.Join(parts, " • "),
	}
}

func joinOr(items []string, fallback string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if clean := strings.TrimSpace(item); clean != "" {
			kept = append(kept, clean)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, ", ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if clean := strings.TrimSpace(v); clean != "" {
			return clean
		}
	}
	return ""
}
