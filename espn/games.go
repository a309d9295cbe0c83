package espn

import (
	"time"
	"wolfhub/models"

	"github.com/samber/lo"
)

func gameStatus(s status) models.GameStatus {
	if s.Type.Completed {
		return models.StatusCompleted
	}
	switch s.Type.State {
	case "in":
		return models.StatusLive
	case "post":
		return models.StatusCompleted
	default:
		return models.StatusUpcoming
	}
}

func toCompetitor(c competitor) models.Competitor {
	return models.Competitor{
		TeamId:           c.Team.Id,
		DisplayName:      c.Team.DisplayName,
		ShortDisplayName: c.Team.ShortDisplayName,
		Abbreviation:     c.Team.Abbreviation,
		Logo:             c.Team.logo(),
		Color:            c.Team.Color,
		Score:            int(c.Score),
		HomeAway:         c.HomeAway,
		Winner:           c.Winner,
	}
}

// baseGame converts an event without looking at the tracked team.
// Events without a competition carry no game and are skipped.
func baseGame(e event, sport Sport) (models.Game, bool) {
	if len(e.Competitions) == 0 {
		return models.Game{}, false
	}
	comp := e.Competitions[0]

	date := e.Date.Time
	if date.IsZero() {
		date = comp.Date.Time
	}

	game := models.Game{
		Id:           lo.Ternary(e.Id != "", e.Id, comp.Id),
		Sport:        sport.String(),
		Name:         e.Name,
		ShortName:    e.ShortName,
		Date:         date,
		Status:       gameStatus(comp.Status),
		StatusDetail: lo.Ternary(comp.Status.Type.ShortDetail != "", comp.Status.Type.ShortDetail, comp.Status.Type.Description),
		Period:       comp.Status.Period,
		Clock:        comp.Status.DisplayClock,
		Venue: models.Venue{
			Name:  comp.Venue.FullName,
			City:  comp.Venue.Address.City,
			State: comp.Venue.Address.State,
		},
	}

	for _, c := range comp.Competitors {
		switch c.HomeAway {
		case "home":
			game.Home = toCompetitor(c)
		case "away":
			game.Away = toCompetitor(c)
		}
	}

	return game, true
}

// trackedGame converts an event and derives the tracked team's view of it.
// The game is dropped when the tracked team or its opponent is missing from
// the competition.
func trackedGame(e event, sport Sport, teamId string) (models.Game, bool) {
	game, ok := baseGame(e, sport)
	if !ok {
		return models.Game{}, false
	}

	competitors := e.Competitions[0].Competitors
	tracked, found := lo.Find(competitors, func(c competitor) bool {
		return c.Team.Id == teamId
	})
	if !found {
		return models.Game{}, false
	}
	opponent, found := lo.Find(competitors, func(c competitor) bool {
		return c.Team.Id != teamId
	})
	if !found {
		return models.Game{}, false
	}

	game.Team = toCompetitor(tracked)
	game.Opponent = toCompetitor(opponent)
	game.IsHome = tracked.HomeAway == "home"
	game.IsWin = game.Status == models.StatusCompleted && tracked.Winner
	game.TeamScore = int(tracked.Score)
	game.OpponentScore = int(opponent.Score)

	return game, true
}

func trackedGames(events []event, sport Sport, teamId string) []models.Game {
	games := make([]models.Game, 0, len(events))
	for _, e := range events {
		if game, ok := trackedGame(e, sport, teamId); ok {
			games = append(games, game)
		}
	}
	return games
}

// Between keeps games dated within [from, to]
func Between(games []models.Game, from, to time.Time) []models.Game {
	return lo.Filter(games, func(g models.Game, _ int) bool {
		return !g.Date.Before(from) && !g.Date.After(to)
	})
}

// WithStatus keeps games in the given state
func WithStatus(games []models.Game, status models.GameStatus) []models.Game {
	return lo.Filter(games, func(g models.Game, _ int) bool {
		return g.Status == status
	})
}
