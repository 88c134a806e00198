// Package control is the HTTP API for inspecting and driving the bar.
package control

import (
	"context"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/riverbar/internal/block"
	"github.com/ItsNotGoodName/riverbar/internal/build"
	"github.com/ItsNotGoodName/riverbar/internal/bus"
	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/ItsNotGoodName/riverbar/internal/scheduler"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
)

type Outputs interface {
	Outputs() []output.Info
}

type Controller struct {
	Blocks  block.Set
	Cache   *block.Cache
	Table   scheduler.Table
	Sink    scheduler.Sink
	Outputs Outputs
	Updates *bus.Hub[[]string]
}

type BlockInfo struct {
	Index    int    `json:"index"`
	Icon     string `json:"icon"`
	Command  string `json:"command"`
	Interval uint   `json:"interval" doc:"Seconds between runs, 0 when not periodic"`
	Signal   uint   `json:"signal" doc:"Notification id, 0 when none"`
	Output   string `json:"output"`
	Label    string `json:"label" doc:"Text drawn on the bar"`
}

type VersionOutput struct {
	Body build.Build
}

type BlocksOutput struct {
	Body []BlockInfo
}

type OutputsOutput struct {
	Body []output.Info
}

type NotifyInput struct {
	Signal uint `path:"signal" minimum:"1" maximum:"30" doc:"Notification id"`
}

type BlocksEvent struct {
	Outputs []string `json:"outputs"`
}

func (c Controller) blocks(outputs []string) []BlockInfo {
	infos := make([]BlockInfo, 0, c.Blocks.Len())
	for i, b := range c.Blocks.All() {
		infos = append(infos, BlockInfo{
			Index:    i,
			Icon:     b.Icon,
			Command:  b.Command.String(),
			Interval: b.Interval,
			Signal:   b.Signal,
			Output:   outputs[i],
			Label:    b.Label(outputs[i]),
		})
	}
	return infos
}

// Register adds the API operations to api.
func (c Controller) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Get build information",
		Tags:        []string{"meta"},
	}, func(ctx context.Context, input *struct{}) (*VersionOutput, error) {
		return &VersionOutput{Body: build.Current}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-blocks",
		Method:      http.MethodGet,
		Path:        "/api/blocks",
		Summary:     "List blocks with their last output",
		Tags:        []string{"blocks"},
	}, func(ctx context.Context, input *struct{}) (*BlocksOutput, error) {
		return &BlocksOutput{Body: c.blocks(c.Cache.Snapshot())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "notify-block",
		Method:        http.MethodPost,
		Path:          "/api/blocks/notify/{signal}",
		Summary:       "Update the block with a notification id",
		Tags:          []string{"blocks"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *NotifyInput) (*struct{}, error) {
		ev, ok := c.Table.Lookup(input.Signal)
		if !ok {
			return nil, huma.Error404NotFound("no block has this notification id")
		}
		c.Sink.Deliver(ev)
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "terminate",
		Method:        http.MethodPost,
		Path:          "/api/terminate",
		Summary:       "Stop the scheduler and exit",
		Tags:          []string{"meta"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *struct{}) (*struct{}, error) {
		c.Sink.Deliver(scheduler.Terminate())
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-outputs",
		Method:      http.MethodGet,
		Path:        "/api/outputs",
		Summary:     "List outputs",
		Tags:        []string{"outputs"},
	}, func(ctx context.Context, input *struct{}) (*OutputsOutput, error) {
		return &OutputsOutput{Body: c.Outputs.Outputs()}, nil
	})

	sse.Register(api, huma.Operation{
		OperationID: "block-events",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Stream block outputs after every redraw",
		Tags:        []string{"blocks"},
	}, map[string]any{
		"blocks": BlocksEvent{},
	}, func(ctx context.Context, input *struct{}, send sse.Sender) {
		updateC, unsubscribe := c.Updates.Subscribe(ctx)
		defer unsubscribe()

		if err := send.Data(BlocksEvent{Outputs: c.Cache.Snapshot()}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case outputs := <-updateC:
				if err := send.Data(BlocksEvent{Outputs: outputs}); err != nil {
					return
				}
			}
		}
	})
}

// Server serves a handler until its context is done.
type Server struct {
	addr    string
	handler http.Handler
}

func NewServer(addr string, handler http.Handler) Server {
	return Server{addr: addr, handler: handler}
}

func (s Server) String() string {
	return "control.Server"
}

func (s Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() { errC <- server.ListenAndServe() }()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
