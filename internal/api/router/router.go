package router

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/observability"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// Metric labels for requests that match no route pattern.
const (
	LabelPreflight = "preflight"
	LabelUnmatched = "unmatched"
)

// Route binds a method and a path pattern such as /tickets/{id} to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler envelope.HandlerFunc

	segments []string
}

// Dispatcher matches requests against an ordered route table and is the single
// place where errors become responses.
type Dispatcher struct {
	routes  []Route
	builder *envelope.Builder
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New builds a dispatcher. Routes are tried in the given order.
func New(builder *envelope.Builder, logger *zap.Logger, metrics *observability.Metrics, routes ...Route) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiled := make([]Route, 0, len(routes))
	for _, r := range routes {
		r.Method = strings.ToUpper(r.Method)
		r.segments = splitPath(r.Pattern)
		compiled = append(compiled, r)
	}
	return &Dispatcher{routes: compiled, builder: builder, logger: logger, metrics: metrics}
}

// Handle serves one request. It never returns an error: every failure,
// including a panic in a handler, is rendered through the builder.
func (d *Dispatcher) Handle(ctx context.Context, req envelope.Request) (resp envelope.Response) {
	method := strings.ToUpper(req.Method)
	path := NormalizePath(req.Path)
	label := LabelUnmatched

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic recovered",
				zap.Any("panic", r),
				zap.String("method", method),
				zap.String("path", path),
				zap.ByteString("stack", debug.Stack()))
			resp = d.fail(method, path, label, apperrors.NewInternalError(fmt.Errorf("panic: %v", r)))
		}
	}()

	if method == "OPTIONS" {
		resp = d.builder.Preflight()
		resp.Route = LabelPreflight
		return resp
	}

	route, params, ok := d.match(method, path)
	if !ok {
		return d.fail(method, path, label, apperrors.NewPathNotFound(method, path))
	}
	label = route.Pattern

	req.Method = method
	req.Path = path
	req.PathParameters = mergeParams(req.PathParameters, params)

	out, err := route.Handler(ctx, req)
	if err != nil {
		return d.fail(method, path, label, err)
	}
	out.Route = label
	return out
}

// fail renders err. Counters are keyed by the route label, never by the
// concrete path, so ids and junk URLs cannot grow the metrics maps.
func (d *Dispatcher) fail(method, path, label string, err error) envelope.Response {
	de := apperrors.ToDomainError(err)
	if apperrors.IsCode(de, apperrors.CodeInternal) {
		d.logger.Error("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
	}
	d.metrics.RecordError(label, method, de.Code)
	resp := d.builder.Error(de)
	resp.Route = label
	return resp
}

func (d *Dispatcher) match(method, path string) (Route, map[string]string, bool) {
	segments := splitPath(path)
	for _, r := range d.routes {
		if r.Method != method {
			continue
		}
		if params, ok := matchSegments(r.segments, segments); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params[seg[1:len(seg)-1]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}

// NormalizePath strips an optional /v1 prefix, trailing slashes and empty
// segments: "/v1/tickets//abc/" becomes "/tickets/abc".
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) > 0 && segments[0] == "v1" {
		segments = segments[1:]
	}
	return "/" + strings.Join(segments, "/")
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mergeParams(given, matched map[string]string) map[string]string {
	out := make(map[string]string, len(given)+len(matched))
	for k, v := range given {
		out[k] = v
	}
	for k, v := range matched {
		out[k] = v
	}
	return out
}
