package control

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ItsNotGoodName/riverbar/internal/block"
	"github.com/ItsNotGoodName/riverbar/internal/bus"
	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/ItsNotGoodName/riverbar/internal/scheduler"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []scheduler.Event
}

func (s *recordingSink) Deliver(ev scheduler.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

type staticOutputs []output.Info

func (o staticOutputs) Outputs() []output.Info {
	return o
}

func newController(t *testing.T) (Controller, *recordingSink) {
	t.Helper()

	blocks := block.NewSet(
		block.Block{Icon: "BAT", Command: block.Command{Name: "battery"}, Interval: 30, Signal: 2},
		block.Block{Command: block.Command{Name: "date", Args: []string{"+%H"}}, Interval: 1},
	)
	table, err := scheduler.NewTable(blocks)
	require.NoError(t, err)

	cache := block.NewCache(blocks.Len())
	cache.Set(0, "87\n")

	sink := &recordingSink{}
	return Controller{
		Blocks:  blocks,
		Cache:   cache,
		Table:   table,
		Sink:    sink,
		Outputs: staticOutputs{{Index: 0, Name: "wl_output-3", Width: 1920, Height: 16, Ready: true}},
		Updates: bus.NewHub[[]string]("test", 1),
	}, sink
}

func TestListBlocks(t *testing.T) {
	c, _ := newController(t)
	_, api := humatest.New(t)
	c.Register(api)

	resp := api.Get("/api/blocks")
	require.Equal(t, http.StatusOK, resp.Code)

	var blocks []BlockInfo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &blocks))
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockInfo{Index: 0, Icon: "BAT", Command: "battery", Interval: 30, Signal: 2, Output: "87\n", Label: "BAT 87"}, blocks[0])
	assert.Equal(t, "date +%H", blocks[1].Command)
}

func TestNotifyBlock(t *testing.T) {
	c, sink := newController(t)
	_, api := humatest.New(t)
	c.Register(api)

	resp := api.Post("/api/blocks/notify/2")
	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, []scheduler.Event{scheduler.Notify(0)}, sink.events)

	resp = api.Post("/api/blocks/notify/5")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Post("/api/blocks/notify/31")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Len(t, sink.events, 1)
}

func TestTerminate(t *testing.T) {
	c, sink := newController(t)
	_, api := humatest.New(t)
	c.Register(api)

	resp := api.Post("/api/terminate")
	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, []scheduler.Event{scheduler.Terminate()}, sink.events)
}

func TestListOutputs(t *testing.T) {
	c, _ := newController(t)
	_, api := humatest.New(t)
	c.Register(api)

	resp := api.Get("/api/outputs")
	require.Equal(t, http.StatusOK, resp.Code)

	var outputs []output.Info
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &outputs))
	assert.Equal(t, []output.Info(c.Outputs.(staticOutputs)), outputs)
}

func TestVersion(t *testing.T) {
	c, _ := newController(t)
	_, api := humatest.New(t)
	c.Register(api)

	resp := api.Get("/api/version")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"version"`)
}

func TestBlockEvents(t *testing.T) {
	c, _ := newController(t)
	server := httptest.NewServer(NewRouter(c))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	nextData := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		return ""
	}

	assert.JSONEq(t, `{"outputs":["87\n",""]}`, nextData())

	// The subscription exists once the first event is sent
	require.Eventually(t, func() bool { return c.Updates.Len() == 1 }, time.Second, 10*time.Millisecond)
	c.Updates.Broadcast([]string{"88\n", "12"})
	assert.JSONEq(t, `{"outputs":["88\n","12"]}`, nextData())
}
