// Package stats publishes allocator counters as JSON over HTTP.
package stats

import (
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/funny-falcon/sharedptr/alloc"
)

var jsonConfig = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

type Source interface {
	Snapshot() alloc.Stats
}

type Registry struct {
	sync.Mutex
	sources map[string]Source
}

func (r *Registry) Register(name string, src Source) {
	r.Lock()
	defer r.Unlock()
	if r.sources == nil {
		r.sources = make(map[string]Source)
	}
	r.sources[name] = src
}

func (r *Registry) Get(name string) (alloc.Stats, bool) {
	r.Lock()
	src, ok := r.sources[name]
	r.Unlock()
	if !ok {
		return alloc.Stats{}, false
	}
	return src.Snapshot(), true
}

func (r *Registry) sorted() ([]string, []Source) {
	r.Lock()
	defer r.Unlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	srcs := make([]Source, len(names))
	for i, name := range names {
		srcs[i] = r.sources[name]
	}
	return names, srcs
}

// WriteJSON writes every source as one object keyed by source name.
func (r *Registry) WriteJSON(stream *jsoniter.Stream) {
	names, srcs := r.sorted()
	stream.WriteObjectStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(name)
		stream.WriteVal(srcs[i].Snapshot())
	}
	stream.WriteObjectEnd()
}

// Handler serves GET /stats and GET /stats/<name>.
func (r *Registry) Handler(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(400)
		return
	}
	path := string(ctx.Path())
	stream := jsonConfig.BorrowStream(nil)
	defer jsonConfig.ReturnStream(stream)
	switch {
	case path == "/stats":
		r.WriteJSON(stream)
	case strings.HasPrefix(path, "/stats/"):
		st, ok := r.Get(path[len("/stats/"):])
		if !ok {
			ctx.SetStatusCode(404)
			return
		}
		stream.WriteVal(st)
	default:
		ctx.SetStatusCode(404)
		return
	}
	ctx.SetStatusCode(200)
	ctx.SetContentType("application/json")
	ctx.SetBody(stream.Buffer())
}
