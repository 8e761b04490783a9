// Package portaltest provides an in-memory Game Portal for tests
package portaltest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/portal"
)

// Tile describes one map tile the fake serves in scan payloads
type Tile struct {
	X, Y       int
	UID        int // owner, 0 when unowned
	AID        int
	DID        int // village id, -1 for oases
	Player     string
	Ally       string
	Race       int
	Population int
	Village    string
	Oasis      bool
	Occupied   bool
	Fill       int
}

// BulkSend records one farm-list send action
type BulkSend struct {
	ListID  string
	SlotIDs []string
}

// Dispatch records a single-target send (escort or hero)
type Dispatch struct {
	Village string
	X, Y    int
	Unit    int
	Count   int
}

// Fake is an in-memory Game Portal. All fields are safe to set before use;
// the methods lock the fake so a test can inspect it afterwards.
type Fake struct {
	mu sync.Mutex

	OwnVillages []models.Village
	Lists       map[string]*models.FarmList
	Details     map[[2]int][]models.GarrisonRow
	Attacks     []models.IncomingAttack
	Hero        models.HeroStatus
	Adventures  int
	Quests      int
	Reports     int
	Troops      map[string]int // village id -> units available for escorts
	LoginToken  string
	SendResult  string

	Calls     []string
	Sends     []BulkSend
	Escorts   []Dispatch
	HeroSends []Dispatch
	Built     []Dispatch
	Trades    []string
	Cleared   []string
	Sanitized int
	Closed    bool
	Detached  bool

	order  []string
	scans  map[[2]int][]byte
	names  map[[2]int]string
	errs   map[string]error
	nextID int
}

// New creates an empty fake
func New() *Fake {
	return &Fake{
		Lists:      make(map[string]*models.FarmList),
		scans:      make(map[[2]int][]byte),
		names:      make(map[[2]int]string),
		Details:    make(map[[2]int][]models.GarrisonRow),
		Troops:     make(map[string]int),
		errs:       make(map[string]error),
		LoginToken: "token",
		SendResult: "raid started",
	}
}

// Fail makes every later call of method return err
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
}

// AddVillage registers an own village
func (f *Fake) AddVillage(v models.Village) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OwnVillages = append(f.OwnVillages, v)
}

// AddList creates a list with the given capacity and slots, returning its id
func (f *Fake) AddList(village, name string, total int, slots ...models.Slot) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addListLocked(village, name, total, slots)
}

func (f *Fake) addListLocked(village, name string, total int, slots []models.Slot) string {
	f.nextID++
	id := fmt.Sprintf("list-%d", f.nextID)
	f.Lists[id] = &models.FarmList{
		ID:      id,
		Name:    name,
		Village: village,
		Used:    len(slots),
		Total:   total,
		Slots:   append([]models.Slot(nil), slots...),
	}
	f.order = append(f.order, id)
	return id
}

// ListByName returns the first list with the exact name
func (f *Fake) ListByName(name string) *models.FarmList {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if f.Lists[id].Name == name {
			return f.Lists[id]
		}
	}
	return nil
}

// SetScan makes a scan centred on (x, y) return the given tiles
func (f *Fake) SetScan(x, y int, tiles ...Tile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans[[2]int{x, y}] = Payload(tiles...)
	for _, t := range tiles {
		if t.Village != "" {
			f.names[[2]int{t.X, t.Y}] = t.Village
		}
	}
}

// SetRawScan makes a scan centred on (x, y) return payload verbatim
func (f *Fake) SetRawScan(x, y int, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans[[2]int{x, y}] = payload
}

// Payload renders tiles in the bridge's map-scan format
func Payload(tiles ...Tile) []byte {
	type position struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	type oasis struct {
		Occupied bool `json:"occupied"`
		Fill     int  `json:"fill"`
	}
	type wireTile struct {
		Position position `json:"position"`
		UID      *int     `json:"uid,omitempty"`
		AID      *int     `json:"aid,omitempty"`
		DID      int      `json:"did"`
		Title    string   `json:"title"`
		Text     string   `json:"text"`
		Oasis    *oasis   `json:"oasis,omitempty"`
	}

	out := struct {
		Tiles []wireTile `json:"tiles"`
	}{Tiles: []wireTile{}}

	for _, t := range tiles {
		w := wireTile{Position: position{X: t.X, Y: t.Y}, DID: t.DID}
		if t.UID != 0 {
			uid, aid := t.UID, t.AID
			w.UID, w.AID = &uid, &aid
		}
		if t.Oasis {
			w.DID = -1
			w.Title = "{k.fo}"
			if t.Occupied {
				w.Title = "{k.bt}"
			}
			w.Oasis = &oasis{Occupied: t.Occupied, Fill: t.Fill}
		} else {
			w.Title = "{k.dt} " + t.Village
			var b strings.Builder
			fmt.Fprintf(&b, "{k.spieler} %s<br />", t.Player)
			if t.Population > 0 {
				fmt.Fprintf(&b, "{k.einwohner} %d<br />", t.Population)
			}
			fmt.Fprintf(&b, "{k.allianz} %s<br />", t.Ally)
			fmt.Fprintf(&b, "{k.volk} {a.v%d}", t.Race)
			w.Text = b.String()
		}
		out.Tiles = append(out.Tiles, w)
	}

	data, _ := json.Marshal(out)
	return data
}

func (f *Fake) call(method string) error {
	f.Calls = append(f.Calls, method)
	if err, ok := f.errs[method]; ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (f *Fake) Login(ctx context.Context, host, login, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodLogin); err != nil {
		return &portal.LoginError{User: login, Err: err}
	}
	if f.LoginToken == "" {
		return &portal.TokenMissingError{Page: "dorf1"}
	}
	return nil
}

func (f *Fake) Sanitize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sanitized++
	return f.call(portal.MethodSanitize)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *Fake) Detach() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Detached = true
	return nil
}

func (f *Fake) ScanTiles(ctx context.Context, x, y, zoom int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodScanTiles); err != nil {
		return nil, err
	}
	if p, ok := f.scans[[2]int{x, y}]; ok {
		return p, nil
	}
	return Payload(), nil
}

func (f *Fake) TileDetail(ctx context.Context, x, y int) ([]models.GarrisonRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodTileDetail); err != nil {
		return nil, err
	}
	rows, ok := f.Details[[2]int{x, y}]
	if !ok {
		return nil, portal.ErrNotFound
	}
	return rows, nil
}

func (f *Fake) Villages(ctx context.Context) ([]models.Village, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodVillages); err != nil {
		return nil, err
	}
	return append([]models.Village(nil), f.OwnVillages...), nil
}

func (f *Fake) FarmLists(ctx context.Context) ([]models.FarmList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodFarmLists); err != nil {
		return nil, err
	}
	lists := make([]models.FarmList, 0, len(f.order))
	for _, id := range f.order {
		l := *f.Lists[id]
		l.Slots = nil
		lists = append(lists, l)
	}
	return lists, nil
}

func (f *Fake) ListView(ctx context.Context, listID string) (*models.FarmList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodListView); err != nil {
		return nil, err
	}
	l, ok := f.Lists[listID]
	if !ok {
		return nil, portal.ErrNotFound
	}
	view := *l
	view.Slots = append([]models.Slot(nil), l.Slots...)
	return &view, nil
}

func (f *Fake) CreateList(ctx context.Context, villageID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodCreateList); err != nil {
		return "", err
	}
	village := villageID
	for _, v := range f.OwnVillages {
		if v.ID == villageID {
			village = v.Name
		}
	}
	return f.addListLocked(village, name, 100, nil), nil
}

func (f *Fake) AddSlot(ctx context.Context, listID string, x, y, troopID, troopCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodAddSlot); err != nil {
		return err
	}
	l, ok := f.Lists[listID]
	if !ok {
		return portal.ErrNotFound
	}
	if !l.HasCapacity() {
		return fmt.Errorf("list %s is full", listID)
	}
	name, ok := f.names[[2]int{x, y}]
	if !ok {
		name = fmt.Sprintf("(%d|%d)", x, y)
	}
	l.Slots = append(l.Slots, models.Slot{
		CheckboxID:  fmt.Sprintf("%s-slot-%d", listID, len(l.Slots)+1),
		VillageName: name,
		X:           x,
		Y:           y,
	})
	l.Used++
	return nil
}

func (f *Fake) Send(ctx context.Context, listID string, slotIDs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodSend); err != nil {
		return "", err
	}
	f.Sends = append(f.Sends, BulkSend{ListID: listID, SlotIDs: append([]string(nil), slotIDs...)})
	return f.SendResult, nil
}

func (f *Fake) ClearList(ctx context.Context, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodClearList); err != nil {
		return err
	}
	l, ok := f.Lists[listID]
	if !ok {
		return portal.ErrNotFound
	}
	l.Slots = nil
	l.Used = 0
	f.Cleared = append(f.Cleared, listID)
	return nil
}

func (f *Fake) SendEscort(ctx context.Context, villageID string, x, y, unit, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodEscort); err != nil {
		return err
	}
	if f.Troops[villageID] < count {
		return fmt.Errorf("%s: %w", portal.MethodEscort, portal.ErrInsufficientTroops)
	}
	f.Troops[villageID] -= count
	f.Escorts = append(f.Escorts, Dispatch{Village: villageID, X: x, Y: y, Unit: unit, Count: count})
	return nil
}

func (f *Fake) BuildTroops(ctx context.Context, village string, unit, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodBuildTroops); err != nil {
		return err
	}
	f.Built = append(f.Built, Dispatch{Village: village, Unit: unit, Count: count})
	return nil
}

func (f *Fake) CleanupReports(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodCleanupReports); err != nil {
		return 0, err
	}
	n := f.Reports
	f.Reports = 0
	return n, nil
}

func (f *Fake) IncomingAttacks(ctx context.Context) ([]models.IncomingAttack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodIncoming); err != nil {
		return nil, err
	}
	return append([]models.IncomingAttack(nil), f.Attacks...), nil
}

func (f *Fake) HeroStatus(ctx context.Context) (*models.HeroStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodHeroStatus); err != nil {
		return nil, err
	}
	status := f.Hero
	status.Adventures = f.Adventures
	return &status, nil
}

func (f *Fake) SendHeroToAdventure(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodHeroAdventure); err != nil {
		return false, err
	}
	if f.Adventures == 0 {
		return false, nil
	}
	f.Adventures--
	f.Hero.Home = false
	return true, nil
}

func (f *Fake) SendHero(ctx context.Context, village string, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodHeroSend); err != nil {
		return err
	}
	f.HeroSends = append(f.HeroSends, Dispatch{Village: village, X: x, Y: y})
	return nil
}

func (f *Fake) CompleteQuests(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodQuests); err != nil {
		return 0, err
	}
	n := f.Quests
	f.Quests = 0
	return n, nil
}

func (f *Fake) SendResources(ctx context.Context, from, to string, resources [4]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(portal.MethodMarketSend); err != nil {
		return err
	}
	f.Trades = append(f.Trades, from+"->"+to)
	return nil
}

// CallCount returns how many times method was called
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}
