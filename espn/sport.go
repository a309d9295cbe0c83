package espn

import (
	"fmt"
	"strings"
)

type Sport string

const (
	Football   Sport = "football"
	Basketball Sport = "basketball"
	Baseball   Sport = "baseball"
)

var sportPaths = map[Sport]string{
	Football:   "football/college-football",
	Basketball: "basketball/mens-college-basketball",
	Baseball:   "baseball/college-baseball",
}

// AllSports lists the sports the hub follows, in display order
var AllSports = []Sport{Football, Basketball, Baseball}

// InvalidSportError is returned for a sport name the hub does not follow
type InvalidSportError struct {
	Name string
}

func (e *InvalidSportError) Error() string {
	return fmt.Sprintf("unknown sport %q (expected football, basketball or baseball)", e.Name)
}

// ParseSport is case-insensitive and ignores surrounding whitespace
func ParseSport(name string) (Sport, error) {
	sport := Sport(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := sportPaths[sport]; !ok {
		return "", &InvalidSportError{Name: name}
	}
	return sport, nil
}

// Path is the ESPN URL segment for the sport
func (s Sport) Path() string {
	return sportPaths[s]
}

func (s Sport) String() string {
	return string(s)
}
