package espn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wire types for the ESPN site API. Only the fields the hub reads are decoded.

type scoreboardResponse struct {
	Events []event `json:"events"`
}

type scheduleResponse struct {
	Events []event `json:"events"`
}

type summaryResponse struct {
	Header event `json:"header"`
}

type event struct {
	Id           string        `json:"id"`
	Date         espnTime      `json:"date"`
	Name         string        `json:"name"`
	ShortName    string        `json:"shortName"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Id          string       `json:"id"`
	Date        espnTime     `json:"date"`
	Venue       venue        `json:"venue"`
	Competitors []competitor `json:"competitors"`
	Status      status       `json:"status"`
}

type venue struct {
	FullName string `json:"fullName"`
	Address  struct {
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"address"`
}

type competitor struct {
	Id       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Winner   bool   `json:"winner"`
	Score    score  `json:"score"`
	Team     team   `json:"team"`
}

type team struct {
	Id               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
	Abbreviation     string `json:"abbreviation"`
	Color            string `json:"color"`
	AlternateColor   string `json:"alternateColor"`
	Logo             string `json:"logo"`
	Logos            []struct {
		Href string `json:"href"`
	} `json:"logos"`
	Record struct {
		Items []recordItem `json:"items"`
	} `json:"record"`
}

type recordItem struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Summary     string `json:"summary"`
}

func (t team) logo() string {
	if t.Logo != "" {
		return t.Logo
	}
	if len(t.Logos) > 0 {
		return t.Logos[0].Href
	}
	return ""
}

type status struct {
	Clock        float64 `json:"clock"`
	DisplayClock string  `json:"displayClock"`
	Period       int     `json:"period"`
	Type         struct {
		Name        string `json:"name"`
		State       string `json:"state"`
		Completed   bool   `json:"completed"`
		Description string `json:"description"`
		Detail      string `json:"detail"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

type teamResponse struct {
	Team team `json:"team"`
}

type rosterResponse struct {
	// Flat for basketball and baseball, grouped by unit for football
	Athletes []json.RawMessage `json:"athletes"`
}

type athleteGroup struct {
	Items []athlete `json:"items"`
}

type athlete struct {
	Id          string `json:"id"`
	FullName    string `json:"fullName"`
	DisplayName string `json:"displayName"`
	Jersey      string `json:"jersey"`
	Position    struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	Headshot struct {
		Href string `json:"href"`
	} `json:"headshot"`
}

type standingsResponse struct {
	Standings standingsTable `json:"standings"`
	Children  []struct {
		Standings standingsTable `json:"standings"`
	} `json:"children"`
}

type standingsTable struct {
	Entries []struct {
		Team  team `json:"team"`
		Stats []struct {
			Name         string  `json:"name"`
			Value        float64 `json:"value"`
			DisplayValue string  `json:"displayValue"`
		} `json:"stats"`
	} `json:"entries"`
}

// score accepts "78" from the scoreboard and {"value":78,"displayValue":"78"}
// from the schedule endpoint. Missing or empty scores decode to zero.
type score int

func (s *score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		return s.fromString(raw)
	case '{':
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Value != nil {
			*s = score(*obj.Value)
			return nil
		}
		return s.fromString(obj.DisplayValue)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = score(n)
		return nil
	}
}

func (s *score) fromString(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", raw, err)
	}
	*s = score(n)
	return nil
}

// espnTime handles ESPN's minute-precision timestamps ("2024-11-04T19:00Z")
// as well as full RFC 3339.
type espnTime struct {
	time.Time
}

var espnTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

func (t *espnTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range espnTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}
