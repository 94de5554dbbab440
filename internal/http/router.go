package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（不引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRenovationRoutes 注册全部 API 路由
func (r *Router) RegisterRenovationRoutes(
	rooms *RoomHandler,
	projects *ProjectHandler,
	assignments *AssignmentHandler,
	artisans *ArtisanHandler,
) {
	// rooms（含 /rooms/{roomId}/items/... 子树，统一在 RoomTree 里按段分发）
	r.Handle("/reno/api/v1/rooms", rooms.Collection)
	r.Handle("/reno/api/v1/rooms/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/reno/api/v1/rooms/")
		segments := splitPath(rest)
		if len(segments) == 0 {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		if len(segments) >= 2 && (segments[1] == "items" || segments[1] == "repair-teammates") {
			assignments.ItemTree(w, req, segments)
			return
		}
		rooms.RoomTree(w, req, segments)
	})

	// projects
	r.Handle("/reno/api/v1/projects", projects.Collection)
	r.Handle("/reno/api/v1/projects/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/reno/api/v1/projects/")
		projects.ProjectTree(w, req, splitPath(rest))
	})

	// teammates
	r.Handle("/reno/api/v1/teammates", assignments.TeammateCollection)
	r.Handle("/reno/api/v1/teammates/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/reno/api/v1/teammates/")
		assignments.TeammateTree(w, req, splitPath(rest))
	})

	// artisans
	r.Handle("/reno/api/v1/artisans", artisans.Collection)
	r.Handle("/reno/api/v1/artisans/import", artisans.Import)
}

func splitPath(rest string) []string {
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
