package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/pefman/fleet-sim/internal/analysis"
	"github.com/pefman/fleet-sim/internal/battle"
	"github.com/pefman/fleet-sim/internal/models"
	"github.com/pefman/fleet-sim/internal/scenario"
	"github.com/pefman/fleet-sim/internal/sim"
	"github.com/pefman/fleet-sim/internal/stats"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(Config{}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func exampleJSON(t *testing.T) json.RawMessage {
	t.Helper()
	sc, err := scenario.Load(filepath.Join("..", "..", "scenarios", "example.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := json.Marshal(sc)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeBody(t *testing.T, res *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func ship(typ string, gears ...*models.Gear) *models.Ship {
	return &models.Ship{
		Name: typ, Type: typ, Level: 99, MaxHP: 50, CurrentHP: 50, Morale: 49,
		BaseFirepower: 60, BaseTorpedo: 40, BaseArmor: 40,
		BaseEvasion: models.IntPtr(40), BaseLuck: models.IntPtr(20), BaseLoS: models.IntPtr(10),
		Gears: gears, Slots: make([]int, len(gears)),
	}
}

func TestHealthAndDefinitions(t *testing.T) {
	ts := newTestServer(t)
	res := get(t, ts.URL+"/api/healthz")
	if res.StatusCode != http.StatusOK || res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected health response %d %v", res.StatusCode, res.Header)
	}
	var defs map[string]json.RawMessage
	decodeBody(t, get(t, ts.URL+"/api/definitions"), &defs)
	for _, key := range []string{"caps", "day_cutins", "anti_air_cutins", "formations"} {
		if _, ok := defs[key]; !ok {
			t.Fatalf("definitions missing %q", key)
		}
	}
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t)
	if res := get(t, ts.URL+"/api/nope"); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	if res := get(t, ts.URL+"/api/sim"); res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/sim", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected a CORS preflight 204, got %d", res.StatusCode)
	}
}

func TestAnalyzeShelling(t *testing.T) {
	ts := newTestServer(t)
	m := analysis.Matchup{
		Fleet:             []*models.Ship{ship("CA", &models.Gear{Name: "gun", Attrs: []string{models.AttrMainGun}, Firepower: 9})},
		Target:            ship("DD"),
		AttackerFormation: models.LineAhead,
		TargetFormation:   models.LineAhead,
		Engagement:        models.Parallel,
	}
	res := post(t, ts.URL+"/api/analyze/shelling", m)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var r analysis.Report
	decodeBody(t, res, &r)
	if len(r.Variants) != 1 || !r.Variants[0].Available || r.Coverage != 1 || r.ExpectedDamage <= 0 {
		t.Fatalf("unexpected report %+v", r)
	}

	res = post(t, ts.URL+"/api/analyze/night", m)
	decodeBody(t, res, &r)
	if r.Style != "night" {
		t.Fatalf("expected a night report, got %+v", r)
	}

	m.AttackerIndex = 3
	if res := post(t, ts.URL+"/api/analyze/shelling", m); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad attacker index, got %d", res.StatusCode)
	}
	bad, err := http.Post(ts.URL+"/api/analyze/shelling", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for broken JSON, got %d", bad.StatusCode)
	}

	// HP and morale left out read as a fresh ship.
	m.AttackerIndex = 0
	for _, s := range []*models.Ship{m.Fleet[0], m.Target} {
		s.CurrentHP, s.Morale = 0, 0
	}
	var fresh analysis.Report
	decodeBody(t, post(t, ts.URL+"/api/analyze/shelling", m), &fresh)
	if fresh.Coverage != 1 || fresh.ExpectedDamage <= 0 || fresh.DamageStates[models.DamageNormal] <= 0 {
		t.Fatalf("ships without hp should start at full HP, got %+v", fresh)
	}
}

func TestAnalyzeAntiAir(t *testing.T) {
	ts := newTestServer(t)
	ha := &models.Gear{Name: "ha", Attrs: []string{models.AttrHighAngleMount}, AntiAir: 8}
	fd := &models.Gear{Name: "fd", Attrs: []string{models.AttrAAFD}, AntiAir: 2}
	side := &models.Side{Main: &models.Fleet{Ships: []*models.Ship{ship("DD", ha, fd)}}}
	var r analysis.AntiAirReport
	decodeBody(t, post(t, ts.URL+"/api/analyze/anti-air", map[string]any{"side": side}), &r)
	if len(r.Ships) != 1 || len(r.Fleet) != 1 || r.Fleet[0].ID != 9 {
		t.Fatalf("unexpected report %+v", r)
	}
	if res := post(t, ts.URL+"/api/analyze/anti-air", map[string]any{}); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a side, got %d", res.StatusCode)
	}
}

func TestSimulateStoresRun(t *testing.T) {
	stats.ResetRuns()
	stats.ResetDaily()
	ts := newTestServer(t)
	res := post(t, ts.URL+"/api/sim", SimRequest{Scenario: exampleJSON(t), Trials: 20, Seed: 3})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var s sim.Summary
	decodeBody(t, res, &s)
	if s.ID == "" || s.Trials != 20 || len(s.Enemy) != 4 {
		t.Fatalf("unexpected summary %+v", s)
	}

	var stored sim.Summary
	decodeBody(t, get(t, ts.URL+"/api/sim/runs/"+s.ID), &stored)
	if stored.ID != s.ID || stored.EnemyFlagshipSunk != s.EnemyFlagshipSunk {
		t.Fatalf("stored run differs: %+v", stored)
	}
	if res := get(t, ts.URL+"/api/sim/runs/missing"); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	var list struct {
		Runs []string `json:"runs"`
	}
	decodeBody(t, get(t, ts.URL+"/api/sim/runs"), &list)
	if len(list.Runs) != 1 || list.Runs[0] != s.ID {
		t.Fatalf("unexpected run list %v", list.Runs)
	}

	var hit sim.Hit
	decodeBody(t, get(t, ts.URL+"/api/stats/max-damage/today"), &hit)
	if hit.Damage != s.MaxHit.Damage || hit.Attacker != s.MaxHit.Attacker {
		t.Fatalf("daily max %+v, run max %+v", hit, s.MaxHit)
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	cases := []SimRequest{
		{Trials: 5},
		{Scenario: exampleJSON(t), Trials: 0},
		{Scenario: json.RawMessage(`{"player": {}}`), Trials: 5},
	}
	for i, c := range cases {
		if res := post(t, ts.URL+"/api/sim", c); res.StatusCode != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, res.StatusCode)
		}
	}
}

func TestMaxDamageEmpty(t *testing.T) {
	stats.ResetDaily()
	ts := newTestServer(t)
	var out map[string]any
	decodeBody(t, get(t, ts.URL+"/api/stats/max-damage/today"), &out)
	if len(out) != 0 {
		t.Fatalf("expected an empty object, got %v", out)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/battle"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestBattleStream(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	if err := conn.WriteJSON(map[string]any{"type": "battle", "data": map[string]any{"scenario": exampleJSON(t), "seed": 11}}); err != nil {
		t.Fatal(err)
	}
	var events []battle.Event
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		if f.Type == "event" {
			var e battle.Event
			if err := json.Unmarshal(f.Data, &e); err != nil {
				t.Fatal(err)
			}
			events = append(events, e)
			continue
		}
		if f.Type != "result" {
			t.Fatalf("unexpected frame %s: %s", f.Type, f.Data)
		}
		var r BattleResult
		if err := json.Unmarshal(f.Data, &r); err != nil {
			t.Fatal(err)
		}
		if r.Seed != 11 || r.Events != len(events) || r.Enemy.Main.Len() != 4 {
			t.Fatalf("unexpected result %+v after %d events", r, len(events))
		}
		break
	}
	if events[0].Kind != battle.EventPhase || events[len(events)-1].Kind != battle.EventEnd {
		t.Fatalf("stream should open with a phase and close with the end, got %s .. %s", events[0].Kind, events[len(events)-1].Kind)
	}
}

func TestBattleStreamErrors(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	for _, msg := range []map[string]any{
		{"type": "dance"},
		{"type": "battle", "data": map[string]any{}},
		{"type": "battle", "data": map[string]any{"scenario": map[string]any{"player": map[string]any{}}}},
	} {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatal(err)
		}
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatal(err)
		}
		if f.Type != "error" {
			t.Fatalf("expected an error frame for %v, got %s", msg, f.Type)
		}
	}
}
