package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/esemi/travian-manager/internal/models"
)

// bridgeHandler answers a request with either a result or an error
type bridgeHandler func(req Request) (interface{}, *RPCError)

func newBridge(t *testing.T, handle bridgeHandler) *Client {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			result, rpcErr := handle(req)
			resp := Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
			if result != nil {
				data, _ := json.Marshal(result)
				resp.Result = data
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, url, Options{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("failed to dial bridge: %v", err)
	}
	t.Cleanup(func() { c.Detach() })
	return c
}

func TestClient_Login(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		if req.Method != MethodLogin {
			t.Errorf("expected %s, got %s", MethodLogin, req.Method)
		}
		return loginResult{Token: "abc", Page: "dorf1"}, nil
	})

	if err := c.Login(context.Background(), "http://ts1", "user", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if c.Token() != "abc" {
		t.Errorf("expected token abc, got %q", c.Token())
	}
}

func TestClient_LoginTokenMissing(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		return loginResult{Page: "dorf1"}, nil
	})

	err := c.Login(context.Background(), "http://ts1", "user", "pass")
	var tokenErr *TokenMissingError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected TokenMissingError, got %v", err)
	}
	if tokenErr.Page != "dorf1" {
		t.Errorf("expected page dorf1, got %q", tokenErr.Page)
	}
}

func TestClient_LoginRejected(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		return nil, &RPCError{Code: CodeUnauthorized, Message: "bad password"}
	})

	err := c.Login(context.Background(), "http://ts1", "user", "pass")
	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("expected LoginError, got %v", err)
	}
	if loginErr.User != "user" {
		t.Errorf("expected user in error, got %q", loginErr.User)
	}
}

func TestClient_ErrorCodesMapToSentinels(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		switch req.Method {
		case MethodEscort:
			return nil, &RPCError{Code: CodeInsufficientTroops, Message: "not enough"}
		case MethodHeroAdventure:
			return nil, &RPCError{Code: CodeNotFound, Message: "no adventures"}
		}
		return nil, &RPCError{Code: CodeNotFound, Message: "missing"}
	})
	ctx := context.Background()

	if err := c.SendEscort(ctx, "v1", 1, 2, 4, 10); !errors.Is(err, ErrInsufficientTroops) {
		t.Errorf("expected ErrInsufficientTroops, got %v", err)
	}
	if err := c.ClearList(ctx, "l1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	sent, err := c.SendHeroToAdventure(ctx)
	if err != nil || sent {
		t.Errorf("expected no adventure and no error, got %v, %v", sent, err)
	}
}

func TestClient_ListViewParsesSignals(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		return wireList{
			ID:       "l1",
			Name:     "Oak - farms",
			Village:  "Oak",
			Capacity: "2 / 100",
			Slots: []wireSlot{
				{CheckboxID: "c1", VillageName: "Target A", X: 1, Y: 2,
					ReportAlt: "Won as attacker without losses", CarryAlt: "bounty: full", LastRaid: "today, 12:30"},
				{CheckboxID: "c2", VillageName: "Target B", X: 3, Y: 4},
			},
		}, nil
	})

	l, err := c.ListView(context.Background(), "l1")
	if err != nil {
		t.Fatalf("ListView failed: %v", err)
	}
	if l.Used != 2 || l.Total != 100 {
		t.Errorf("expected capacity 2/100, got %d/%d", l.Used, l.Total)
	}
	if len(l.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(l.Slots))
	}

	r := l.Slots[0].LastReport
	if r == nil {
		t.Fatal("expected report on first slot")
	}
	if r.Outcome != models.OutcomeGreen || !r.FullCarry || !r.IsToday {
		t.Errorf("unexpected report %+v", r)
	}
	if r.AttackTime == nil || *r.AttackTime != (models.HourMinute{Hour: 12, Minute: 30}) {
		t.Errorf("expected attack time 12:30, got %v", r.AttackTime)
	}
	if l.Slots[1].LastReport != nil {
		t.Errorf("expected no report on second slot, got %+v", l.Slots[1].LastReport)
	}
}

func TestClient_SendWithoutConfirmation(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		return sendResult{}, nil
	})

	text, err := c.Send(context.Background(), "l1", []string{"c1"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty result text, got %q", text)
	}
}

func TestClient_ScanTilesReturnsRawPayload(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		return map[string]interface{}{"tiles": []interface{}{}}, nil
	})

	raw, err := c.ScanTiles(context.Background(), 0, 0, 1)
	if err != nil {
		t.Fatalf("ScanTiles failed: %v", err)
	}
	if !strings.Contains(string(raw), `"tiles"`) {
		t.Errorf("expected raw tiles payload, got %s", raw)
	}
}

func TestClient_CallAfterDetach(t *testing.T) {
	c := newBridge(t, func(req Request) (interface{}, *RPCError) {
		return okResult{OK: true}, nil
	})

	if err := c.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := c.Sanitize(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
