package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yanqian/smart-wardrobe/internal/domain/outfit"
)

// outcomePayload accepts both the gateway's snake_case body and the camelCase
// spelling. The basic endpoint names the recommendation outfit_recommendation.
type outcomePayload struct {
	City            flexString             `json:"city"`
	RealWeather     *weatherPayload        `json:"real_weather"`
	Weather         *weatherPayload        `json:"weather"`
	SystemStatus    map[string]flexString  `json:"system_status"`
	SystemStatusAlt map[string]flexString  `json:"systemStatus"`
	General         *recommendationPayload `json:"general_recommendation"`
	GeneralAlt      *recommendationPayload `json:"generalRecommendation"`
	Basic           *recommendationPayload `json:"outfit_recommendation"`
	Actual          *actualOutfitPayload   `json:"your_actual_outfit"`
	ActualAlt       *actualOutfitPayload   `json:"actualOutfit"`
	Confidence      flexNumber             `json:"wardrobe_confidence"`
	ConfidenceAlt   flexNumber             `json:"wardrobeConfidence"`
	FunMessage      flexString             `json:"fun_message"`
	FunMessageAlt   flexString             `json:"funMessage"`
}

type weatherPayload struct {
	Temperature flexNumber `json:"temperature"`
	Condition   flexString `json:"condition"`
	Humidity    flexNumber `json:"humidity"`
	Source      flexString `json:"source"`
}

type recommendationPayload struct {
	Base        flexString `json:"base"`
	Layers      flexList   `json:"layers"`
	Footwear    flexString `json:"footwear"`
	Accessories flexList   `json:"accessories"`
	StyleTip    flexString `json:"style_tip"`
	StyleTipAlt flexString `json:"styleTip"`
}

type actualOutfitPayload struct {
	Top              *garmentPayload `json:"top"`
	Bottom           *garmentPayload `json:"bottom"`
	Layer            *garmentPayload `json:"layer"`
	Footwear         *garmentPayload `json:"footwear"`
	Style            flexString      `json:"outfit_style"`
	FashionAdvice    flexString      `json:"fashion_advice"`
	FashionAdviceAlt flexString      `json:"fashionAdvice"`
}

type garmentPayload struct {
	Name  flexString `json:"name"`
	Color flexString `json:"color"`
	Type  flexString `json:"type"`
}

type errorPayload struct {
	Error json.RawMessage `json:"error"`
}

// decodeOutcome turns a success body into an Outcome. Only a body that is not
// a JSON object fails; every field is optional.
func decodeOutcome(body []byte) (outfit.Outcome, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return outfit.Outcome{}, errors.New("response body is not a JSON object")
	}
	var raw outcomePayload
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return outfit.Outcome{}, err
	}

	out := outfit.Outcome{
		City:         strings.TrimSpace(string(raw.City)),
		SystemStatus: normalizeStatuses(raw.SystemStatus, raw.SystemStatusAlt),
		FunMessage:   firstNonEmpty(string(raw.FunMessage), string(raw.FunMessageAlt)),
	}
	if w := firstWeather(raw.RealWeather, raw.Weather); w != nil {
		out.Weather = w.toDomain()
	}
	if rec := firstRecommendation(raw.General, raw.GeneralAlt, raw.Basic); rec != nil {
		out.GeneralRecommendation = rec.toDomain()
	}

	actual := raw.Actual
	if actual.empty() {
		actual = raw.ActualAlt
	}
	if !actual.empty() {
		out.ActualOutfit = actual.toDomain()
		confidence := raw.Confidence
		if confidence.value == nil {
			confidence = raw.ConfidenceAlt
		}
		if confidence.value != nil {
			clamped := math.Min(1, math.Max(0, *confidence.value))
			out.WardrobeConfidence = &clamped
		}
	}
	return out, nil
}

// decodeErrorMessage extracts {"error":"..."} or {"error":{"message":"..."}}.
func decodeErrorMessage(body []byte) string {
	var raw errorPayload
	if err := json.Unmarshal(body, &raw); err != nil || len(raw.Error) == 0 {
		return ""
	}
	var direct string
	if err := json.Unmarshal(raw.Error, &direct); err == nil {
		return strings.TrimSpace(direct)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw.Error, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func normalizeStatuses(sets ...map[string]flexString) map[outfit.Service]outfit.ServiceStatus {
	out := make(map[outfit.Service]outfit.ServiceStatus)
	for _, set := range sets {
		for key, value := range set {
			name := strings.ToLower(strings.TrimSpace(key))
			name = strings.TrimSuffix(name, "_service")
			if name == "" {
				continue
			}
			if _, exists := out[outfit.Service(name)]; exists {
				continue
			}
			out[outfit.Service(name)] = outfit.ServiceStatus(strings.ToLower(strings.TrimSpace(string(value))))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstWeather(candidates ...*weatherPayload) *weatherPayload {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func firstRecommendation(candidates ...*recommendationPayload) *recommendationPayload {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func (w *weatherPayload) toDomain() outfit.Weather {
	out := outfit.Weather{
		Condition: strings.TrimSpace(string(w.Condition)),
		Humidity:  w.Humidity.value,
		Source:    strings.TrimSpace(string(w.Source)),
	}
	if w.Temperature.value != nil {
		out.Temperature = *w.Temperature.value
	}
	return out
}

func (r *recommendationPayload) toDomain() outfit.Recommendation {
	return outfit.Recommendation{
		Base:        strings.TrimSpace(string(r.Base)),
		Layers:      []string(r.Layers),
		Footwear:    strings.TrimSpace(string(r.Footwear)),
		Accessories: []string(r.Accessories),
		StyleTip:    firstNonEmpty(string(r.StyleTip), string(r.StyleTipAlt)),
	}
}

func (a *actualOutfitPayload) empty() bool {
	return a == nil || (a.Top.empty() && a.Bottom.empty() && a.Layer.empty() && a.Footwear.empty())
}

func (a *actualOutfitPayload) toDomain() *outfit.ActualOutfit {
	out := &outfit.ActualOutfit{
		Top:           a.Top.toDomain(),
		Bottom:        a.Bottom.toDomain(),
		Footwear:      a.Footwear.toDomain(),
		Style:         strings.TrimSpace(string(a.Style)),
		FashionAdvice: firstNonEmpty(string(a.FashionAdvice), string(a.FashionAdviceAlt)),
	}
	if !a.Layer.empty() {
		layer := a.Layer.toDomain()
		out.Layer = &layer
	}
	return out
}

func (g *garmentPayload) empty() bool {
	return g == nil || (strings.TrimSpace(string(g.Name)) == "" && strings.TrimSpace(string(g.Color)) == "" && strings.TrimSpace(string(g.Type)) == "")
}

func (g *garmentPayload) toDomain() outfit.Garment {
	if g == nil {
		return outfit.Garment{}
	}
	return outfit.Garment{
		Name:  strings.TrimSpace(string(g.Name)),
		Color: strings.TrimSpace(string(g.Color)),
		Type:  strings.TrimSpace(string(g.Type)),
	}
}

// flexString decodes any JSON scalar into text; objects, arrays and null become "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*s = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = flexString(v)
	case '{', '[', 'n':
		*s = ""
	default:
		*s = flexString(trimmed)
	}
	return nil
}

// flexNumber decodes a JSON number or numeric string; anything else is treated as absent.
type flexNumber struct {
	value *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	n.value = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil
		}
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	n.value = &parsed
	return nil
}

// flexList accepts an array of strings or a single string. Blank items are dropped.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	*l = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		if clean := strings.TrimSpace(single); clean != "" {
			*l = flexList{clean}
		}
	case '[':
		var many []flexString
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		items := make(flexList, 0, len(many))
		for _, item := range many {
			if clean := strings.TrimSpace(string(item)); clean != "" {
				items = append(items, clean)
			}
		}
		*l = items
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if clean := strings.TrimSpace(v); clean != "" {
			return clean
		}
	}
	return ""
}
