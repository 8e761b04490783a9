package portal

import "encoding/json"

// Request represents a JSON-RPC 2.0 request
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Bridge method names
const (
	MethodLogin          = "auth.login"
	MethodSanitize       = "page.sanitize"
	MethodClose          = "session.close"
	MethodScanTiles      = "map.scan"
	MethodTileDetail     = "map.tile"
	MethodVillages       = "village.list"
	MethodFarmLists      = "farm.lists"
	MethodListView       = "farm.list"
	MethodCreateList     = "farm.create"
	MethodAddSlot        = "farm.add_slot"
	MethodSend           = "farm.send"
	MethodClearList      = "farm.clear"
	MethodEscort         = "rally.escort"
	MethodBuildTroops    = "troops.build"
	MethodCleanupReports = "reports.cleanup"
	MethodIncoming       = "attacks.incoming"
	MethodHeroStatus     = "hero.status"
	MethodHeroAdventure  = "hero.adventure"
	MethodHeroSend       = "hero.send"
	MethodQuests         = "quests.complete"
	MethodMarketSend     = "market.send"
)

type loginParams struct {
	Host     string `json:"host"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResult struct {
	Token string `json:"token"`
	Page  string `json:"page"`
}

type coordParams struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Zoom int `json:"zoom,omitempty"`
}

type listParams struct {
	ListID  string   `json:"list_id"`
	SlotIDs []string `json:"slot_ids,omitempty"`
}

type createListParams struct {
	VillageID string `json:"village_id"`
	Name      string `json:"name"`
}

type createListResult struct {
	ListID string `json:"list_id"`
}

type addSlotParams struct {
	ListID     string `json:"list_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	TroopID    int    `json:"troop_id"`
	TroopCount int    `json:"troop_count"`
}

type sendResult struct {
	Text *string `json:"text"`
}

type escortParams struct {
	VillageID string `json:"village_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Unit      int    `json:"unit"`
	Count     int    `json:"count"`
}

type buildParams struct {
	Village string `json:"village"`
	Unit    int    `json:"unit"`
	Count   int    `json:"count"`
}

type marketParams struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Resources [4]int `json:"resources"`
}

type okResult struct {
	OK bool `json:"ok"`
}

type countResult struct {
	Count int `json:"count"`
}

// wireList is a farm list as the bridge reports it. Capacity is the raw
// "used/total" counter text of the list header.
type wireList struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Village  string     `json:"village"`
	Capacity string     `json:"capacity"`
	Slots    []wireSlot `json:"slots"`
}

// wireSlot carries the localized alt texts of a slot row's icons
type wireSlot struct {
	CheckboxID  string `json:"checkbox_id"`
	VillageName string `json:"village_name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	ReportAlt   string `json:"report_alt"`
	CarryAlt    string `json:"carry_alt"`
	AttackAlt   string `json:"attack_alt"`
	LastRaid    string `json:"last_raid"`
}
