package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/errs"
	"github.com/miqat-dev/miqat/internal/model"
)

// Calculator computes one day's prayer times. Treated as a pure,
// deterministic function of its inputs for caching purposes.
type Calculator interface {
	Compute(ctx context.Context, day string, lat, lon float64, method, legalSchool string) (model.DailyTimes, error)
}

// HTTPCalculator calls an AlAdhan-compatible timings API.
type HTTPCalculator struct {
	baseURL  string
	client   *http.Client
	timezone *time.Location
}

var _ Calculator = (*HTTPCalculator)(nil)

func NewHTTPCalculator(baseURL string, tz *time.Location) *HTTPCalculator {
	return &HTTPCalculator{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		timezone: tz,
	}
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Hijri struct {
				Date string `json:"date"`
			} `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

// slot names as the API reports them
var apiSlotNames = map[model.PrayerID]string{
	model.PrayerFajr:    "Fajr",
	model.PrayerSunrise: "Sunrise",
	model.PrayerDhuhr:   "Dhuhr",
	model.PrayerAsr:     "Asr",
	model.PrayerMaghrib: "Maghrib",
	model.PrayerIsha:    "Isha",
}

func (c *HTTPCalculator) Compute(ctx context.Context, day string, lat, lon float64, method, legalSchool string) (model.DailyTimes, error) {
	date, err := time.ParseInLocation(model.DayFormat, day, c.timezone)
	if err != nil {
		return model.DailyTimes{}, errs.PrayerData("parse day", err)
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("method", method)
	q.Set("school", legalSchool)
	// API expects DD-MM-YYYY in the path
	endpoint := fmt.Sprintf("%s/v1/timings/%s?%s", c.baseURL, date.Format("02-01-2006"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.DailyTimes{}, errs.PrayerData("build request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.DailyTimes{}, errs.PrayerData("call calculator", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.DailyTimes{}, errs.PrayerData(fmt.Sprintf("calculator returned %d", resp.StatusCode), nil)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.DailyTimes{}, errs.PrayerData("decode response", err)
	}

	times := model.DailyTimes{Day: day, HijriDate: body.Data.Date.Hijri.Date}
	for _, id := range model.PrayerOrder {
		raw, ok := body.Data.Timings[apiSlotNames[id]]
		if !ok {
			continue
		}
		t, err := parseClock(raw, date, c.timezone)
		if err != nil {
			// one bad slot does not fail the day; it stays nil
			log.Warn().Str("prayer", string(id)).Str("raw", raw).Msg("unparseable slot time")
			continue
		}
		setSlot(&times, id, t)
	}
	return times, nil
}

// parseClock turns "05:12" (optionally with a trailing timezone hint like
// "05:12 (EET)") into an absolute time on the given date.
func parseClock(raw string, date time.Time, tz *time.Location) (time.Time, error) {
	if len(raw) > 5 {
		raw = raw[:5]
	}
	clock, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, tz), nil
}

func setSlot(d *model.DailyTimes, id model.PrayerID, t time.Time) {
	switch id {
	case model.PrayerFajr:
		d.Fajr = &t
	case model.PrayerSunrise:
		d.Sunrise = &t
	case model.PrayerDhuhr:
		d.Dhuhr = &t
	case model.PrayerAsr:
		d.Asr = &t
	case model.PrayerMaghrib:
		d.Maghrib = &t
	case model.PrayerIsha:
		d.Isha = &t
	}
}
