package server

import (
	"sync"
	"wolfhub/models"

	log "github.com/sirupsen/logrus"
)

type gamesClient struct {
	sport  string
	events chan models.LiveGamesEvent
}

// Broadcaster fans poller results out to SSE clients. It remembers the last
// event per sport so new clients start with current scores.
type Broadcaster struct {
	sync.RWMutex
	gamesClients map[string]gamesClient
	newsClients  map[string]chan models.NewsEvent
	latestGames  map[string]models.LiveGamesEvent
	latestNews   *models.NewsEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		gamesClients: make(map[string]gamesClient),
		newsClients:  make(map[string]chan models.NewsEvent),
		latestGames:  make(map[string]models.LiveGamesEvent),
	}
}

// PublishLiveGames sends event to every client following its sport
func (b *Broadcaster) PublishLiveGames(event models.LiveGamesEvent) {
	b.Lock()
	b.latestGames[event.Sport] = event
	b.Unlock()

	b.RLock()
	defer b.RUnlock()
	for key, client := range b.gamesClients {
		if client.sport != event.Sport {
			continue
		}
		select {
		case client.events <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping games event for client: %v", key)
		}
	}
}

func (b *Broadcaster) PublishNews(event models.NewsEvent) {
	b.Lock()
	b.latestNews = &event
	b.Unlock()

	b.RLock()
	defer b.RUnlock()
	for key, client := range b.newsClients {
		select {
		case client <- event:
		default:
			log.Warnf("Client channel full, skipping news event for client: %v", key)
		}
	}
}

// LatestGames returns the last event published for sport, if any
func (b *Broadcaster) LatestGames(sport string) (models.LiveGamesEvent, bool) {
	b.RLock()
	defer b.RUnlock()
	event, ok := b.latestGames[sport]
	return event, ok
}

func (b *Broadcaster) LatestNews() (models.NewsEvent, bool) {
	b.RLock()
	defer b.RUnlock()
	if b.latestNews == nil {
		return models.NewsEvent{}, false
	}
	return *b.latestNews, true
}

func (b *Broadcaster) AddGamesClient(key string, sport string, events chan models.LiveGamesEvent) {
	b.Lock()
	defer b.Unlock()
	b.gamesClients[key] = gamesClient{sport: sport, events: events}
	log.WithFields(log.Fields{
		"key":   key,
		"sport": sport,
		"count": len(b.gamesClients),
	}).Info("Adding games client to broadcaster")
}

func (b *Broadcaster) AddNewsClient(key string, events chan models.NewsEvent) {
	b.Lock()
	defer b.Unlock()
	b.newsClients[key] = events
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.newsClients),
	}).Info("Adding news client to broadcaster")
}

// RemoveClient closes the client's channel, which ends its stream. Unknown
// keys are ignored.
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.gamesClients[key]; ok {
		close(client.events)
		delete(b.gamesClients, key)
	}
	if client, ok := b.newsClients[key]; ok {
		close(client)
		delete(b.newsClients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.gamesClients) + len(b.newsClients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) ClientCount() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.gamesClients) + len(b.newsClients)
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.gamesClients {
		close(client.events)
		delete(b.gamesClients, key)
	}
	for key, client := range b.newsClients {
		close(client)
		delete(b.newsClients, key)
	}
}
