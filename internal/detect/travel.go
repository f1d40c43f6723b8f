package detect

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TravelFinding is one pair of successful logins too far apart geographically
// for the time between them.
type TravelFinding struct {
	UserID        string    `json:"user_id"`
	FromCountry   string    `json:"from_country"`
	FromCity      string    `json:"from_city"`
	ToCountry     string    `json:"to_country"`
	ToCity        string    `json:"to_city"`
	FromIP        string    `json:"from_ip"`
	ToIP          string    `json:"to_ip"`
	FirstAuth     time.Time `json:"first_auth"`
	SecondAuth    time.Time `json:"second_auth"`
	HoursBetween  float64   `json:"hours_between"`
	MinPlausible  float64   `json:"min_plausible_hours"`
}

// DetectImpossibleTravel walks each user's successful logins in time order and
// flags adjacent pairs whose location changed faster than travel allows. A
// country change needs at least the international floor between logins, a
// same-country city change at least the city floor. Pairs separated by more
// than hoursThreshold are never considered.
func (e *Engine) DetectImpossibleTravel(ctx context.Context, epochID string, hoursThreshold int) ([]TravelFinding, error) {
	if hoursThreshold <= 0 {
		return nil, fmt.Errorf("%w: hoursThreshold=%d", ErrInvalidWindow, hoursThreshold)
	}

	events, err := e.reader.AuthEventsSince(ctx, epochID, e.windowStart(e.cfg.BaselineWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load auth events: %w", err)
	}

	type login struct {
		at       time.Time
		country  string
		city     string
		sourceIP string
	}
	byUser := map[string][]login{}
	for _, ev := range events {
		if !ev.Succeeded() {
			continue
		}
		byUser[ev.UserID] = append(byUser[ev.UserID], login{
			at:       ev.EventTime,
			country:  ev.GeoCountry,
			city:     ev.GeoCity,
			sourceIP: ev.SourceIP,
		})
	}

	findings := []TravelFinding{}
	for userID, logins := range byUser {
		sort.Slice(logins, func(i, j int) bool { return logins[i].at.Before(logins[j].at) })

		for i := 1; i < len(logins); i++ {
			prev, cur := logins[i-1], logins[i]
			if prev.country == cur.country && prev.city == cur.city {
				continue
			}

			floor := e.cfg.CityFloorHours
			if prev.country != cur.country {
				floor = e.cfg.InternationalFloorHours
			}

			hours := cur.at.Sub(prev.at).Hours()
			if hours <= 0 || hours >= floor || hours >= float64(hoursThreshold) {
				continue
			}

			findings = append(findings, TravelFinding{
				UserID:       userID,
				FromCountry:  prev.country,
				FromCity:     prev.city,
				ToCountry:    cur.country,
				ToCity:       cur.city,
				FromIP:       prev.sourceIP,
				ToIP:         cur.sourceIP,
				FirstAuth:    prev.at,
				SecondAuth:   cur.at,
				HoursBetween: hours,
				MinPlausible: floor,
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].HoursBetween != findings[j].HoursBetween {
			return findings[i].HoursBetween < findings[j].HoursBetween
		}
		return findings[i].UserID < findings[j].UserID
	})
	return findings, nil
}
