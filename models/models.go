package models

import "time"

// GameStatus is the coarse state of a game as shown to fans
type GameStatus string

const (
	StatusUpcoming  GameStatus = "upcoming"
	StatusLive      GameStatus = "live"
	StatusCompleted GameStatus = "completed"
)

// Competitor is one side of a game
type Competitor struct {
	TeamId           string `json:"teamId"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
	Abbreviation     string `json:"abbreviation"`
	Logo             string `json:"logo,omitempty"`
	Color            string `json:"color,omitempty"`
	Score            int    `json:"score"`
	HomeAway         string `json:"homeAway"`
	Winner           bool   `json:"winner"`
}

type Venue struct {
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// Game is a single game involving the tracked team. Team and Opponent are
// derived from the home and away competitors.
type Game struct {
	Id           string     `json:"id"`
	Sport        string     `json:"sport"`
	Name         string     `json:"name"`
	ShortName    string     `json:"shortName"`
	Date         time.Time  `json:"date"`
	Status       GameStatus `json:"status"`
	StatusDetail string     `json:"statusDetail,omitempty"`
	Period       int        `json:"period"`
	Clock        string     `json:"clock,omitempty"`
	Venue        Venue      `json:"venue"`
	Home         Competitor `json:"home"`
	Away         Competitor `json:"away"`

	Team          Competitor `json:"team"`
	Opponent      Competitor `json:"opponent"`
	IsHome        bool       `json:"isHome"`
	IsWin         bool       `json:"isWin"`
	TeamScore     int        `json:"teamScore"`
	OpponentScore int        `json:"opponentScore"`
}

type Team struct {
	Id               string   `json:"id"`
	DisplayName      string   `json:"displayName"`
	ShortDisplayName string   `json:"shortDisplayName"`
	Abbreviation     string   `json:"abbreviation"`
	Color            string   `json:"color,omitempty"`
	AlternateColor   string   `json:"alternateColor,omitempty"`
	Logo             string   `json:"logo,omitempty"`
	Records          []Record `json:"records,omitempty"`
}

type Record struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Summary     string `json:"summary"`
}

type Athlete struct {
	Id          string `json:"id"`
	FullName    string `json:"fullName"`
	DisplayName string `json:"displayName"`
	Jersey      string `json:"jersey,omitempty"`
	Position    string `json:"position,omitempty"`
	Headshot    string `json:"headshot,omitempty"`
}

// Standing is one row of a conference standings table
type Standing struct {
	TeamId      string  `json:"teamId"`
	DisplayName string  `json:"displayName"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinPercent  float64 `json:"winPercent"`
	Summary     string  `json:"summary,omitempty"`
}

// SportBundle groups everything the hub shows for one sport
type SportBundle struct {
	Sport  string    `json:"sport"`
	Games  []Game    `json:"games"`
	Team   Team      `json:"team"`
	Roster []Athlete `json:"roster"`
}

// Article is a single news item. Articles are never modified after parsing.
type Article struct {
	Id          string    `json:"id"`
	Guid        string    `json:"guid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"publishedAt"`
	Author      string    `json:"author"`
	Categories  []string  `json:"categories"`
	ImageUrl    string    `json:"imageUrl,omitempty"`
}

type Feed struct {
	Url           string    `json:"url"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	LastBuildDate time.Time `json:"lastBuildDate"`
	Items         []Article `json:"items"`
}

// FeedInfo is the metadata part of a Feed
type FeedInfo struct {
	Url           string    `json:"url"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	LastBuildDate time.Time `json:"lastBuildDate"`
	ItemCount     int       `json:"itemCount"`
}

// LiveGamesEvent is emitted by the poller after each scoreboard refresh
type LiveGamesEvent struct {
	Sport     string    `json:"sport"`
	Games     []Game    `json:"games"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// NewsEvent is emitted by the poller after each news refresh
type NewsEvent struct {
	Articles  []Article `json:"articles"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}
