package outfit

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestBandForBoundaries(t *testing.T) {
	cases := []struct {
		temp float64
		want TempBand
	}{
		{temp: -5, want: BandCold},
		{temp: 9.99, want: BandCold},
		{temp: 10, want: BandMild},
		{temp: 19.99, want: BandMild},
		{temp: 20, want: BandWarm},
		{temp: 29.99, want: BandWarm},
		{temp: 30, want: BandHot},
		{temp: 45, want: BandHot},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BandFor(tc.temp), "temperature %v", tc.temp)
	}
}

func TestConfidenceForBoundaries(t *testing.T) {
	cases := []struct {
		confidence float64
		want       ConfidenceLevel
	}{
		{confidence: 0.70, want: ConfidenceMedium},
		{confidence: 0.71, want: ConfidenceHigh},
		{confidence: 0.40, want: ConfidenceLow},
		{confidence: 0.41, want: ConfidenceMedium},
		{confidence: 0, want: ConfidenceLow},
		{confidence: 1, want: ConfidenceHigh},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ConfidenceFor(tc.confidence), "confidence %v", tc.confidence)
	}
}

func TestIconForIsCaseInsensitiveAndTotal(t *testing.T) {
	require.Equal(t, IconSun, IconFor("SUNNY"))
	require.Equal(t, IconSun, IconFor("Sunny"))
	require.Equal(t, IconSun, IconFor("sunny"))
	require.Equal(t, IconSun, IconFor("Clear"))
	require.Equal(t, IconRain, IconFor("rain"))
	require.Equal(t, IconRain, IconFor(" Rainy "))
	require.Equal(t, IconSnow, IconFor("snowy"))
	require.Equal(t, IconCloud, IconFor("cloudy"))
	require.Equal(t, DefaultIcon, IconFor("foggy"))
	require.Equal(t, DefaultIcon, IconFor(""))
}

func TestBadgeFor(t *testing.T) {
	require.Equal(t, BadgePositive, BadgeFor(StatusLive))
	require.Equal(t, BadgeFallback, BadgeFor(StatusFallback))
	require.Equal(t, BadgeFallback, BadgeFor("degraded"))
	require.Equal(t, BadgeFallback, BadgeFor(""))
}

func TestDeriveViewIdleAndLoading(t *testing.T) {
	idle := DeriveView(State{Phase: PhaseIdle}, ModeSmart)
	require.True(t, idle.Empty())

	prior := parisOutcome()
	loading := DeriveView(State{Phase: PhaseLoading, Outcome: &prior}, ModeSmart)
	require.NotNil(t, loading.Loading)
	require.Nil(t, loading.Result)
	require.Nil(t, loading.Error)
	require.Equal(t, LoadingTitle, loading.Loading.Title)
}

func TestDeriveViewFailureHidesData(t *testing.T) {
	view := DeriveView(State{Phase: PhaseSettled, Err: "city not found"}, ModeBasic)
	require.NotNil(t, view.Error)
	require.Equal(t, "city not found", view.Error.Message)
	require.Equal(t, ErrorTitle, view.Error.Title)
	require.Nil(t, view.Result)
	require.Nil(t, view.Loading)
}

func TestDeriveViewParisRoundTrip(t *testing.T) {
	outcome := parisOutcome()
	view := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, ModeSmart)
	require.NotNil(t, view.Result)
	res := view.Result

	require.Equal(t, "Paris", res.City)
	require.Equal(t, BandMild, res.Weather.Band)
	require.Equal(t, "green", res.Weather.Color)
	require.Equal(t, "14°C", res.Weather.TemperatureText)
	require.Equal(t, IconCloud, res.Weather.Icon)
	require.Equal(t, MissingHumidityText, res.Weather.Humidity)
	require.Equal(t, DefaultSourceText, res.Weather.Source)

	require.Len(t, res.Statuses, 3)
	require.Equal(t, ServiceWeather, res.Statuses[0].Service)
	require.Equal(t, BadgePositive, res.Statuses[0].Badge)
	require.Equal(t, ServiceOutfit, res.Statuses[1].Service)
	require.Equal(t, ServiceWardrobe, res.Statuses[2].Service)
	require.Equal(t, BadgeFallback, res.Statuses[2].Badge)
	require.Equal(t, "Fallback", res.Statuses[2].Text)

	require.Equal(t, "t-shirt", res.General.Base)
	require.Equal(t, "jacket", res.General.Layers)
	require.Equal(t, "sneakers", res.General.Footwear)
	require.Equal(t, NoAccessoriesText, res.General.Accessories)

	require.NotNil(t, res.Smart)
	require.NotNil(t, res.Smart.Confidence)
	require.Equal(t, ConfidenceMedium, res.Smart.Confidence.Level)
	require.Equal(t, 55, res.Smart.Confidence.Percent)
	require.Equal(t, "55% Match", res.Smart.Confidence.Label)
	require.Equal(t, "Blue Shirt", res.Smart.Top.Name)
	require.Equal(t, "blue", res.Smart.Top.Detail)
	require.Equal(t, "Jeans", res.Smart.Bottom.Name)
	require.Equal(t, "Sneakers", res.Smart.Footwear.Name)
	require.Nil(t, res.Smart.Layer)
	require.Equal(t, DefaultFashionAdvice, res.Smart.FashionAdvice)
	require.Empty(t, res.FunMessage)
}

func TestDeriveViewBasicModeNeverRendersSmartOnlyParts(t *testing.T) {
	outcome := parisOutcome()
	view := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, ModeBasic)
	require.NotNil(t, view.Result)
	require.Nil(t, view.Result.Smart)
	for _, badge := range view.Result.Statuses {
		require.NotEqual(t, ServiceWardrobe, badge.Service)
	}
	require.Len(t, view.Result.Statuses, 2)
}

func TestDeriveViewSmartWithoutActualOutfit(t *testing.T) {
	outcome := parisOutcome()
	outcome.ActualOutfit = nil
	outcome.WardrobeConfidence = nil

	view := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, ModeSmart)
	require.NotNil(t, view.Result)
	require.Nil(t, view.Result.Smart)
	require.Equal(t, "t-shirt", view.Result.General.Base)
	require.Equal(t, "jacket", view.Result.General.Layers)
}

func TestDeriveViewDefaultsForSparseOutcome(t *testing.T) {
	outcome := Outcome{
		City:         "Nowhere",
		SystemStatus: map[Service]ServiceStatus{"billing": "warming-up", ServiceWeather: "LIVE"},
		Weather:      Weather{Temperature: 31, Condition: "Haze"},
	}
	view := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, ModeSmart)
	res := view.Result
	require.NotNil(t, res)

	require.Equal(t, DefaultIcon, res.Weather.Icon)
	require.Equal(t, BandHot, res.Weather.Band)
	require.Equal(t, "Haze", res.Weather.Condition)
	require.Equal(t, NoLayersText, res.General.Layers)
	require.Equal(t, NoAccessoriesText, res.General.Accessories)

	require.Len(t, res.Statuses, 2)
	require.Equal(t, ServiceWeather, res.Statuses[0].Service)
	require.Equal(t, BadgeFallback, res.Statuses[0].Badge)
	require.Equal(t, Service("billing"), res.Statuses[1].Service)
	require.Equal(t, "Billing Service", res.Statuses[1].Label)
}

func TestDeriveViewLayerAndHumidityRows(t *testing.T) {
	humidity := 62.0
	confidence := 0.9
	outcome := parisOutcome()
	outcome.Weather.Humidity = &humidity
	outcome.Weather.Source = "OpenWeatherMap API"
	outcome.WardrobeConfidence = &confidence
	outcome.ActualOutfit.Layer = &Garment{Name: "Red Jacket", Color: "red", Type: "layer"}
	outcome.ActualOutfit.FashionAdvice = "Rock it"
	outcome.FunMessage = "Cloudy skies but your style will shine!"

	res := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, ModeSmart).Result
	require.Equal(t, "62%", res.Weather.Humidity)
	require.Equal(t, "OpenWeatherMap API", res.Weather.Source)
	require.NotNil(t, res.Smart.Layer)
	require.Equal(t, "Red Jacket", res.Smart.Layer.Name)
	require.Equal(t, "red • layer", res.Smart.Layer.Detail)
	require.Equal(t, "Rock it", res.Smart.FashionAdvice)
	require.Equal(t, ConfidenceHigh, res.Smart.Confidence.Level)
	require.Equal(t, 90, res.Smart.Confidence.Percent)
	require.Equal(t, "Cloudy skies but your style will shine!", res.FunMessage)
}

func TestDeriveViewZeroHumidityIsShown(t *testing.T) {
	humidity := 0.0
	outcome := parisOutcome()
	outcome.Weather.Humidity = &humidity

	res := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, ModeBasic).Result
	require.Equal(t, "0%", res.Weather.Humidity)
}

func TestDeriveViewIsTotalOverOddOutcomes(t *testing.T) {
	outcomes := []Outcome{
		{},
		{SystemStatus: map[Service]ServiceStatus{"": ""}},
		{ActualOutfit: &ActualOutfit{}},
		{Weather: Weather{Condition: "  "}, GeneralRecommendation: Recommendation{Layers: []string{" ", ""}}},
	}
	for _, mode := range []Mode{ModeBasic, ModeSmart} {
		for i := range outcomes {
			outcome := outcomes[i]
			require.NotPanics(t, func() {
				view := DeriveView(State{Phase: PhaseSettled, Outcome: &outcome}, mode)
				require.NotNil(t, view.Result)
				require.NotEmpty(t, view.Result.Weather.Icon)
				require.NotEmpty(t, view.Result.Weather.Band)
			})
		}
	}
}

func parisOutcome() Outcome {
	confidence := 0.55
	return Outcome{
		City: "Paris",
		SystemStatus: map[Service]ServiceStatus{
			ServiceWeather:  StatusLive,
			ServiceOutfit:   StatusLive,
			ServiceWardrobe: StatusFallback,
		},
		Weather: Weather{Temperature: 14, Condition: "cloudy"},
		GeneralRecommendation: Recommendation{
			Base:        "t-shirt",
			Layers:      []string{"jacket"},
			Footwear:    "sneakers",
			Accessories: []string{},
		},
		ActualOutfit: &ActualOutfit{
			Top:      Garment{Name: "Blue Shirt", Color: "blue"},
			Bottom:   Garment{Name: "Jeans", Color: "indigo"},
			Footwear: Garment{Name: "Sneakers", Color: "white"},
		},
		WardrobeConfidence: &confidence,
	}
}

func TestServiceLabelCapitalisesFirstRune(t *testing.T) {
	label := serviceLabel(Service("été"))
	require.True(t, utf8.ValidString(label))
	require.Equal(t, "Été Service", label)
	require.Equal(t, "Unknown Service", serviceLabel(Service("  ")))
	require.Equal(t, "Weather Service", serviceLabel(ServiceWeather))
}
