package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/esemi/travian-manager/internal/models"
)

// Login submits the login form. It fails with *LoginError when the form is
// rejected and with *TokenMissingError when no session token came back.
func (c *Client) Login(ctx context.Context, host, login, password string) error {
	var res loginResult
	err := c.Call(ctx, MethodLogin, loginParams{Host: host, Login: login, Password: password}, &res)
	if err != nil {
		return &LoginError{User: login, Err: err}
	}
	if res.Token == "" {
		return &TokenMissingError{Page: res.Page}
	}

	c.mu.Lock()
	c.token = res.Token
	c.mu.Unlock()
	return nil
}

// Sanitize dismisses stray dialogs and returns to the main page
func (c *Client) Sanitize(ctx context.Context) error {
	return c.Call(ctx, MethodSanitize, nil, nil)
}

// ScanTiles returns the raw map-scan payload around (x, y)
func (c *Client) ScanTiles(ctx context.Context, x, y, zoom int) ([]byte, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, MethodScanTiles, coordParams{X: x, Y: y, Zoom: zoom}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TileDetail returns the garrison rows shown on a tile's detail view
func (c *Client) TileDetail(ctx context.Context, x, y int) ([]models.GarrisonRow, error) {
	var res struct {
		Units []models.GarrisonRow `json:"units"`
	}
	if err := c.Call(ctx, MethodTileDetail, coordParams{X: x, Y: y}, &res); err != nil {
		return nil, err
	}
	return res.Units, nil
}

// Villages lists the player's own villages
func (c *Client) Villages(ctx context.Context) ([]models.Village, error) {
	var villages []models.Village
	if err := c.Call(ctx, MethodVillages, nil, &villages); err != nil {
		return nil, err
	}
	return villages, nil
}

// FarmLists returns every farm list header with its capacity counter
func (c *Client) FarmLists(ctx context.Context) ([]models.FarmList, error) {
	var wire []wireList
	if err := c.Call(ctx, MethodFarmLists, nil, &wire); err != nil {
		return nil, err
	}
	lists := make([]models.FarmList, 0, len(wire))
	for _, w := range wire {
		lists = append(lists, c.convertList(w, false))
	}
	return lists, nil
}

// ListView reads one farm list with all its slots
func (c *Client) ListView(ctx context.Context, listID string) (*models.FarmList, error) {
	var wire wireList
	if err := c.Call(ctx, MethodListView, listParams{ListID: listID}, &wire); err != nil {
		return nil, err
	}
	l := c.convertList(wire, true)
	return &l, nil
}

func (c *Client) convertList(w wireList, withSlots bool) models.FarmList {
	used, total := ParseCapacity(w.Capacity)
	l := models.FarmList{
		ID:      w.ID,
		Name:    w.Name,
		Village: w.Village,
		Used:    used,
		Total:   total,
	}
	if withSlots {
		for _, s := range w.Slots {
			l.Slots = append(l.Slots, c.lang.ParseSlot(s))
		}
	}
	return l
}

// CreateList creates an empty farm list for a village and returns its id
func (c *Client) CreateList(ctx context.Context, villageID, name string) (string, error) {
	var res createListResult
	if err := c.Call(ctx, MethodCreateList, createListParams{VillageID: villageID, Name: name}, &res); err != nil {
		return "", err
	}
	if res.ListID == "" {
		return "", fmt.Errorf("%s: bridge returned no list id", MethodCreateList)
	}
	return res.ListID, nil
}

// AddSlot adds a target to a list bound to a troop type and count
func (c *Client) AddSlot(ctx context.Context, listID string, x, y, troopID, troopCount int) error {
	var res okResult
	params := addSlotParams{ListID: listID, X: x, Y: y, TroopID: troopID, TroopCount: troopCount}
	if err := c.Call(ctx, MethodAddSlot, params, &res); err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%s: slot (%d|%d) rejected", MethodAddSlot, x, y)
	}
	return nil
}

// Send starts the raid for the selected slots. The result text is empty
// when the page showed no confirmation.
func (c *Client) Send(ctx context.Context, listID string, slotIDs []string) (string, error) {
	var res sendResult
	if err := c.Call(ctx, MethodSend, listParams{ListID: listID, SlotIDs: slotIDs}, &res); err != nil {
		return "", err
	}
	if res.Text == nil {
		return "", nil
	}
	return *res.Text, nil
}

// ClearList removes every slot of a list
func (c *Client) ClearList(ctx context.Context, listID string) error {
	return c.Call(ctx, MethodClearList, listParams{ListID: listID}, nil)
}

// SendEscort raids a single target from the rally point with an escort army
func (c *Client) SendEscort(ctx context.Context, villageID string, x, y, unit, count int) error {
	return c.Call(ctx, MethodEscort, escortParams{VillageID: villageID, X: x, Y: y, Unit: unit, Count: count}, nil)
}

// BuildTroops queues units in a village barracks
func (c *Client) BuildTroops(ctx context.Context, village string, unit, count int) error {
	return c.Call(ctx, MethodBuildTroops, buildParams{Village: village, Unit: unit, Count: count}, nil)
}

// CleanupReports deletes read reports and returns how many went
func (c *Client) CleanupReports(ctx context.Context) (int, error) {
	var res countResult
	if err := c.Call(ctx, MethodCleanupReports, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// IncomingAttacks lists hostile movements towards own villages
func (c *Client) IncomingAttacks(ctx context.Context) ([]models.IncomingAttack, error) {
	var attacks []models.IncomingAttack
	if err := c.Call(ctx, MethodIncoming, nil, &attacks); err != nil {
		return nil, err
	}
	return attacks, nil
}

// HeroStatus reads the hero page
func (c *Client) HeroStatus(ctx context.Context) (*models.HeroStatus, error) {
	var status models.HeroStatus
	if err := c.Call(ctx, MethodHeroStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SendHeroToAdventure starts the first listed adventure. It reports false
// when no adventure was available.
func (c *Client) SendHeroToAdventure(ctx context.Context) (bool, error) {
	var res okResult
	err := c.Call(ctx, MethodHeroAdventure, nil, &res)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// SendHero sends the hero alone to attack the tile at (x, y)
func (c *Client) SendHero(ctx context.Context, village string, x, y int) error {
	return c.Call(ctx, MethodHeroSend, escortParams{VillageID: village, X: x, Y: y}, nil)
}

// CompleteQuests collects every finished quest reward
func (c *Client) CompleteQuests(ctx context.Context) (int, error) {
	var res countResult
	if err := c.Call(ctx, MethodQuests, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// SendResources dispatches merchants between two own villages
func (c *Client) SendResources(ctx context.Context, from, to string, resources [4]int) error {
	return c.Call(ctx, MethodMarketSend, marketParams{From: from, To: to, Resources: resources}, nil)
}
