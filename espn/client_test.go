package espn_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"wolfhub/cache"
	"wolfhub/espn"
	"wolfhub/models"
	"wolfhub/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardJSON = `{
  "events": [
    {
      "id": "401",
      "date": "2024-11-04T19:00Z",
      "name": "Duke Blue Devils at UNC Tar Heels",
      "shortName": "DUKE @ UNC",
      "competitions": [{
        "id": "401",
        "venue": {"fullName": "Dean Smith Center", "address": {"city": "Chapel Hill", "state": "NC"}},
        "competitors": [
          {"id": "153", "homeAway": "home", "score": "70", "team": {"id": "153", "displayName": "North Carolina Tar Heels", "shortDisplayName": "UNC", "abbreviation": "UNC"}},
          {"id": "150", "homeAway": "away", "score": "68", "team": {"id": "150", "displayName": "Duke Blue Devils", "shortDisplayName": "Duke", "abbreviation": "DUKE"}}
        ],
        "status": {"displayClock": "4:12", "period": 2, "type": {"state": "in", "completed": false, "description": "In Progress", "shortDetail": "4:12 - 2nd Half"}}
      }]
    },
    {
      "id": "402",
      "date": "2024-11-04T23:30Z",
      "name": "Wake Forest at NC State",
      "shortName": "WAKE @ NCST",
      "competitions": [{
        "id": "402",
        "venue": {"fullName": "Lenovo Center", "address": {"city": "Raleigh", "state": "NC"}},
        "competitors": [
          {"id": "152", "homeAway": "home", "score": "81", "winner": true, "team": {"id": "152", "displayName": "NC State Wolfpack", "shortDisplayName": "NC State", "abbreviation": "NCST", "logo": "https://a.espncdn.com/ncst.png"}},
          {"id": "154", "homeAway": "away", "score": "77", "winner": false, "team": {"id": "154", "displayName": "Wake Forest Demon Deacons", "shortDisplayName": "Wake Forest", "abbreviation": "WAKE"}}
        ],
        "status": {"period": 2, "type": {"state": "post", "completed": true, "description": "Final", "shortDetail": "Final"}}
      }]
    },
    {
      "id": "403",
      "date": "2024-11-05T00:00Z",
      "name": "NC State at Clemson",
      "shortName": "NCST @ CLEM",
      "competitions": [{
        "id": "403",
        "competitors": [
          {"id": "228", "homeAway": "home", "score": "10", "team": {"id": "228", "displayName": "Clemson Tigers", "shortDisplayName": "Clemson", "abbreviation": "CLEM"}},
          {"id": "152", "homeAway": "away", "score": "14", "team": {"id": "152", "displayName": "NC State Wolfpack", "shortDisplayName": "NC State", "abbreviation": "NCST"}}
        ],
        "status": {"displayClock": "0:45", "period": 1, "type": {"state": "in", "completed": false, "description": "In Progress"}}
      }]
    },
    {
      "id": "404",
      "date": "2024-11-05T01:00Z",
      "name": "Malformed",
      "competitions": [{
        "competitors": [
          {"id": "152", "homeAway": "home", "score": "", "team": {"id": "152", "displayName": "NC State Wolfpack"}}
        ],
        "status": {"type": {"state": "pre"}}
      }]
    },
    {"id": "405", "date": "2024-11-05T02:00Z", "name": "No competitions", "competitions": []}
  ]
}`

func scheduleJSON(now time.Time) string {
	game := func(id string, date time.Time, state string) string {
		return fmt.Sprintf(`{
      "id": %q,
      "date": %q,
      "name": "Game %s",
      "competitions": [{
        "competitors": [
          {"homeAway": "home", "score": {"value": 3.0, "displayValue": "3"}, "team": {"id": "152", "displayName": "NC State Wolfpack", "logos": [{"href": "https://a.espncdn.com/ncst-logo.png"}]}},
          {"homeAway": "away", "score": {"displayValue": "1"}, "team": {"id": "99", "displayName": "Opponent"}}
        ],
        "status": {"type": {"state": %q}}
      }]
    }`, id, date.UTC().Format("2006-01-02T15:04Z"), id, state)
	}

	return fmt.Sprintf(`{"events": [%s, %s, %s, %s]}`,
		game("past-far", now.Add(-10*24*time.Hour), "post"),
		game("past-near", now.Add(-2*24*time.Hour), "post"),
		game("future-near", now.Add(3*24*time.Hour), "pre"),
		game("future-far", now.Add(20*24*time.Hour), "pre"),
	)
}

type fakeESPN struct {
	server   *httptest.Server
	requests atomic.Int32
	paths    map[string]string
	status   int
}

func newFakeESPN(t *testing.T, paths map[string]string) *fakeESPN {
	f := &fakeESPN{paths: paths, status: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		body, ok := f.paths[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newClient(f *fakeESPN, now time.Time) *espn.Client {
	return espn.New(
		espn.Config{BaseURL: f.server.URL, TeamId: "152"},
		cache.New(),
		upstream.New(upstream.Config{}),
		espn.WithClock(func() time.Time { return now }),
	)
}

func TestLiveGamesFiltersTrackedTeam(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/basketball/mens-college-basketball/scoreboard": scoreboardJSON,
	})
	c := newClient(f, time.Now())

	games, err := c.LiveGames(context.Background(), espn.Basketball)
	require.NoError(t, err)
	require.Len(t, games, 2)

	home := games[0]
	assert.Equal(t, "402", home.Id)
	assert.Equal(t, "basketball", home.Sport)
	assert.Equal(t, "152", home.Team.TeamId)
	assert.Equal(t, "154", home.Opponent.TeamId)
	assert.Equal(t, "Wake Forest", home.Opponent.ShortDisplayName)
	assert.True(t, home.IsHome)
	assert.True(t, home.IsWin)
	assert.Equal(t, 81, home.TeamScore)
	assert.Equal(t, 77, home.OpponentScore)
	assert.Equal(t, models.StatusCompleted, home.Status)
	assert.Equal(t, "Lenovo Center", home.Venue.Name)
	assert.Equal(t, "https://a.espncdn.com/ncst.png", home.Home.Logo)
	assert.Equal(t, time.Date(2024, 11, 4, 23, 30, 0, 0, time.UTC), home.Date.UTC())

	away := games[1]
	assert.Equal(t, "403", away.Id)
	assert.Equal(t, "228", away.Opponent.TeamId)
	assert.False(t, away.IsHome)
	assert.False(t, away.IsWin, "a game in progress is never a win")
	assert.Equal(t, models.StatusLive, away.Status)
	assert.Equal(t, "0:45", away.Clock)
	assert.Equal(t, 1, away.Period)

	for _, g := range games {
		assert.NotEqual(t, g.Team.TeamId, g.Opponent.TeamId)
	}
}

func TestLiveGamesWarmReadsHitNetworkOnce(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/basketball/mens-college-basketball/scoreboard": scoreboardJSON,
	})
	c := newClient(f, time.Now())

	_, err := c.LiveGames(context.Background(), espn.Basketball)
	require.NoError(t, err)
	_, err = c.LiveGames(context.Background(), espn.Basketball)
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.requests.Load())
}

func TestLiveGamesRefetchesAfterTTL(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/football/college-football/scoreboard": scoreboardJSON,
	})
	now := time.Date(2024, 11, 4, 19, 0, 0, 0, time.UTC)
	store := cache.New(cache.WithClock(func() time.Time { return now }))
	c := espn.New(espn.Config{BaseURL: f.server.URL, TTL: 5 * time.Minute}, store, upstream.New(upstream.Config{}))

	_, err := c.LiveGames(context.Background(), espn.Football)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	_, err = c.LiveGames(context.Background(), espn.Football)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.requests.Load())
}

func TestLiveGamesUpstreamFailure(t *testing.T) {
	f := newFakeESPN(t, nil)
	f.status = http.StatusServiceUnavailable
	c := newClient(f, time.Now())

	games, err := c.LiveGames(context.Background(), espn.Baseball)
	assert.Nil(t, games)
	require.Error(t, err)
	assert.True(t, upstream.IsNetworkError(err))
	assert.Contains(t, err.Error(), "baseball scoreboard")

	// Failures are not cached: the next poll tries again
	_, err = c.LiveGames(context.Background(), espn.Baseball)
	require.Error(t, err)
	assert.Equal(t, int32(2), f.requests.Load())
}

func TestLiveGamesMalformedPayload(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/basketball/mens-college-basketball/scoreboard": `{"events": "nope"}`,
	})
	c := newClient(f, time.Now())

	_, err := c.LiveGames(context.Background(), espn.Basketball)
	assert.True(t, upstream.IsParseError(err))
}

func TestIsPlaying(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/basketball/mens-college-basketball/scoreboard": scoreboardJSON,
	})
	c := newClient(f, time.Now())

	playing, err := c.IsPlaying(context.Background(), espn.Basketball)
	require.NoError(t, err)
	assert.True(t, playing)
}

func TestUpcomingAndRecentGames(t *testing.T) {
	now := time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)
	f := newFakeESPN(t, map[string]string{
		"/football/college-football/teams/152/schedule": scheduleJSON(now),
	})
	c := newClient(f, now)

	upcoming, err := c.UpcomingGames(context.Background(), espn.Football)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "future-near", upcoming[0].Id)
	assert.Equal(t, models.StatusUpcoming, upcoming[0].Status)

	recent, err := c.RecentGames(context.Background(), espn.Football)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "past-near", recent[0].Id)
	assert.Equal(t, 3, recent[0].TeamScore)
	assert.Equal(t, 1, recent[0].OpponentScore)
	assert.Equal(t, "https://a.espncdn.com/ncst-logo.png", recent[0].Team.Logo)

	// Both views share one cached schedule
	assert.Equal(t, int32(1), f.requests.Load())
}

func TestScheduleWithSeason(t *testing.T) {
	now := time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)
	f := newFakeESPN(t, map[string]string{
		"/baseball/college-baseball/teams/152/schedule?season=2023": scheduleJSON(now),
	})
	c := newClient(f, now)

	games, err := c.Schedule(context.Background(), espn.Baseball, 2023)
	require.NoError(t, err)
	assert.Len(t, games, 4)
}

func TestTeamAndRoster(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/football/college-football/teams/152": `{"team": {"id": "152", "displayName": "NC State Wolfpack", "abbreviation": "NCST", "color": "cc0000",
			"logos": [{"href": "https://a.espncdn.com/ncst.png"}],
			"record": {"items": [{"description": "Overall Record", "type": "total", "summary": "6-6"}]}}}`,
		"/football/college-football/teams/152/roster": `{"athletes": [
			{"position": "offense", "items": [{"id": "1", "fullName": "Quarter Back", "jersey": "1", "position": {"abbreviation": "QB"}, "headshot": {"href": "qb.png"}}]},
			{"position": "defense", "items": [{"id": "2", "fullName": "Line Backer", "position": {"abbreviation": "LB"}}]}
		]}`,
		"/basketball/mens-college-basketball/teams/152/roster": `{"athletes": [
			{"id": "3", "fullName": "Point Guard", "jersey": "3", "position": {"abbreviation": "G"}}
		]}`,
	})
	c := newClient(f, time.Now())

	team, err := c.Team(context.Background(), espn.Football)
	require.NoError(t, err)
	assert.Equal(t, "NC State Wolfpack", team.DisplayName)
	assert.Equal(t, "https://a.espncdn.com/ncst.png", team.Logo)
	require.Len(t, team.Records, 1)
	assert.Equal(t, "6-6", team.Records[0].Summary)

	football, err := c.Roster(context.Background(), espn.Football)
	require.NoError(t, err)
	require.Len(t, football, 2)
	assert.Equal(t, "QB", football[0].Position)
	assert.Equal(t, "qb.png", football[0].Headshot)

	basketball, err := c.Roster(context.Background(), espn.Basketball)
	require.NoError(t, err)
	require.Len(t, basketball, 1)
	assert.Equal(t, "Point Guard", basketball[0].FullName)
}

func TestGameDetails(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/basketball/mens-college-basketball/summary?event=402": `{"header": {"id": "402", "competitions": [{
			"date": "2024-11-04T23:30Z",
			"competitors": [
				{"homeAway": "home", "score": "81", "winner": true, "team": {"id": "152", "displayName": "NC State Wolfpack"}},
				{"homeAway": "away", "score": "77", "team": {"id": "154", "displayName": "Wake Forest"}}
			],
			"status": {"type": {"state": "post", "completed": true}}
		}]}}`,
	})
	c := newClient(f, time.Now())

	game, err := c.GameDetails(context.Background(), espn.Basketball, "402")
	require.NoError(t, err)
	assert.Equal(t, "402", game.Id)
	assert.True(t, game.IsWin)
	assert.Equal(t, time.Date(2024, 11, 4, 23, 30, 0, 0, time.UTC), game.Date.UTC())
}

func TestStandings(t *testing.T) {
	f := newFakeESPN(t, map[string]string{
		"/basketball/mens-college-basketball/standings?group=1": `{"children": [{"standings": {"entries": [
			{"team": {"id": "152", "displayName": "NC State Wolfpack"}, "stats": [
				{"name": "wins", "value": 12}, {"name": "losses", "value": 8},
				{"name": "winPercent", "value": 0.6}, {"name": "overall", "displayValue": "12-8"}
			]}
		]}}]}`,
	})
	c := newClient(f, time.Now())

	standings, err := c.Standings(context.Background(), espn.Basketball)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 12, standings[0].Wins)
	assert.Equal(t, 8, standings[0].Losses)
	assert.InDelta(t, 0.6, standings[0].WinPercent, 0.0001)
	assert.Equal(t, "12-8", standings[0].Summary)
}

func TestAllSports(t *testing.T) {
	now := time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)
	paths := map[string]string{}
	for _, sport := range espn.AllSports {
		base := "/" + sport.Path() + "/teams/152"
		paths[base] = `{"team": {"id": "152", "displayName": "NC State Wolfpack"}}`
		paths[base+"/schedule"] = scheduleJSON(now)
		paths[base+"/roster"] = `{"athletes": []}`
	}
	f := newFakeESPN(t, paths)
	c := newClient(f, now)

	all, err := c.AllSports(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Len(t, all[espn.Football].Games, 4)
	assert.Equal(t, "NC State Wolfpack", all[espn.Baseball].Team.DisplayName)
}

func TestAllSportsFailsOnFirstError(t *testing.T) {
	f := newFakeESPN(t, map[string]string{})
	c := newClient(f, time.Now())

	_, err := c.AllSports(context.Background())
	assert.True(t, upstream.IsNetworkError(err))
}

func TestParseSport(t *testing.T) {
	tests := []struct {
		in      string
		want    espn.Sport
		wantErr bool
	}{
		{in: "football", want: espn.Football},
		{in: " Basketball ", want: espn.Basketball},
		{in: "BASEBALL", want: espn.Baseball},
		{in: "hockey", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := espn.ParseSport(tt.in)
			if tt.wantErr {
				var invalid *espn.InvalidSportError
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
