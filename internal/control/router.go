package control

import (
	"net/http"

	"github.com/ItsNotGoodName/riverbar/internal/build"
	"github.com/ItsNotGoodName/riverbar/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns the API with its OpenAPI documents under /docs and /openapi.json.
func NewRouter(c Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("riverbar", build.Current.Version))
	c.Register(api)

	return r
}
