// Package extract turns raw map-scan payloads into targets and oases
package extract

import (
	"encoding/json"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/esemi/travian-manager/internal/models"
)

// ExtractionError is returned when a scan payload is not a valid envelope.
// It is fatal to that scan only.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("malformed scan payload: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Fill states that denote a raidable nature garrison
const (
	Fill25 = 25
	Fill50 = 50
)

type position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type oasisState struct {
	Occupied bool `json:"occupied"`
	Fill     int  `json:"fill"`
}

type tile struct {
	Position position    `json:"position"`
	UID      *int        `json:"uid"`
	AID      *int        `json:"aid"`
	DID      *int        `json:"did"`
	Title    string      `json:"title"`
	Text     string      `json:"text"`
	Oasis    *oasisState `json:"oasis"`
}

type envelope struct {
	Tiles *[]tile `json:"tiles"`
}

// Sub-patterns of the templated tile text
var (
	populationRe = regexp.MustCompile(`\{k\.einwohner\}\s*(\d+)`)
	playerRe     = regexp.MustCompile(`\{k\.spieler\}\s*([^<{]*)`)
	allianceRe   = regexp.MustCompile(`\{k\.allianz\}\s*([^<{]*)`)
	raceRe       = regexp.MustCompile(`\{a\.v(\d+)\}`)
	villageRe    = regexp.MustCompile(`\{k\.dt\}\s*(.*)`)
)

func decode(payload []byte) ([]tile, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &ExtractionError{Err: err}
	}
	if env.Tiles == nil {
		return nil, &ExtractionError{Err: fmt.Errorf("missing tiles array")}
	}
	return *env.Tiles, nil
}

// Targets validates the envelope and returns a lazy sequence of the owned
// villages in it, in payload order. Tiles without a population figure are
// oases and are skipped.
func Targets(payload []byte) (iter.Seq[models.Target], error) {
	tiles, err := decode(payload)
	if err != nil {
		return nil, err
	}

	return func(yield func(models.Target) bool) {
		for _, t := range tiles {
			target, ok := parseTarget(t)
			if !ok {
				continue
			}
			if !yield(target) {
				return
			}
		}
	}, nil
}

func parseTarget(t tile) (models.Target, bool) {
	if t.UID == nil || *t.UID <= 0 {
		return models.Target{}, false
	}
	pop := populationRe.FindStringSubmatch(t.Text)
	if pop == nil {
		return models.Target{}, false
	}
	population, err := strconv.Atoi(pop[1])
	if err != nil {
		return models.Target{}, false
	}

	target := models.Target{
		X:          t.Position.X,
		Y:          t.Position.Y,
		Population: population,
		Name:       firstGroup(playerRe, t.Text),
		Ally:       firstGroup(allianceRe, t.Text),
	}
	if t.DID != nil {
		target.ID = *t.DID
	}
	if race := firstGroup(raceRe, t.Text); race != "" {
		target.Race, _ = strconv.Atoi(race)
	}
	target.VillageName = firstGroup(villageRe, t.Title)
	if target.VillageName == "" {
		target.VillageName = strings.TrimSpace(t.Title)
	}
	return target, true
}

// Oases returns the unowned, unoccupied oases at 25% or 50% fill
func Oases(payload []byte) ([]models.OasisTile, error) {
	tiles, err := decode(payload)
	if err != nil {
		return nil, err
	}

	var oases []models.OasisTile
	for _, t := range tiles {
		if t.Oasis == nil || t.Oasis.Occupied {
			continue
		}
		if t.UID != nil && *t.UID > 0 {
			continue
		}
		if t.Oasis.Fill != Fill25 && t.Oasis.Fill != Fill50 {
			continue
		}
		oases = append(oases, models.OasisTile{X: t.Position.X, Y: t.Position.Y})
	}
	return oases, nil
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
