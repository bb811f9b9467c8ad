package hyper

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Service names a hyper backend service.
type Service string

// Hyper services.
const (
	ServiceData    Service = "data"
	ServiceCache   Service = "cache"
	ServiceSearch  Service = "search"
	ServiceStorage Service = "storage"
	ServiceQueue   Service = "queue"
	ServiceInfo    Service = "info"
)

// Action is a sub-action path segment appended when no resource is given.
type Action string

// Hyper actions.
const (
	ActionQuery Action = "_query"
	ActionBulk  Action = "_bulk"
	ActionIndex Action = "_index"
)

// DefaultDomain is the application namespace used when none is configured.
const DefaultDomain = "default"

// Params are flat query parameters. Nil values (including nil pointers) are
// dropped. A "keys" value may be a list of strings and is sent comma-joined.
type Params map[string]any

// LogicalRequest describes one API call independently of URL and header
// mechanics.
type LogicalRequest struct {
	Service  Service
	Method   string // http.MethodGet, http.MethodPost, ...
	Resource string // appended as a path segment; wins over Action
	Action   Action
	Body     any // serialized at the transport boundary
	Params   Params
}

// ConcreteRequest is a LogicalRequest resolved against a connection.
// Body is carried through unserialized.
type ConcreteRequest struct {
	URL    string
	Method string
	Header http.Header
	Body   any
}

// BuildRequest resolves req against the connection string and domain.
// A fresh bearer token is issued when the connection carries credentials.
func BuildRequest(connection, domain string, req LogicalRequest) (*ConcreteRequest, error) {
	return buildRequest(connection, domain, req, time.Now())
}

func buildRequest(connection, domain string, req LogicalRequest, now time.Time) (*ConcreteRequest, error) {
	d := ParseConnectionString(connection)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	if d.HasCredentials() {
		token, err := issueToken(d.Key, d.Secret, now)
		if err != nil {
			return nil, err
		}
		header.Set("Authorization", "Bearer "+token)
	}

	u := serviceURL(d, domain, req.Service)
	switch {
	case req.Resource != "":
		u += "/" + url.PathEscape(req.Resource)
	case req.Action != "":
		u += "/" + string(req.Action)
	}

	if req.Params != nil {
		qs, err := encodeParams(req.Params)
		if err != nil {
			return nil, err
		}
		u += "?" + qs
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	return &ConcreteRequest{
		URL:    u,
		Method: method,
		Header: header,
		Body:   req.Body,
	}, nil
}

// serviceURL returns the URL of a service namespace. The info service lives
// at the origin. Cloud connections nest the domain under the app path; other
// connections use their own URL path as the namespace.
func serviceURL(d ConnectionDescriptor, domain string, svc Service) string {
	if svc == ServiceInfo {
		return d.Origin()
	}
	if d.IsCloud() {
		if domain == "" {
			domain = DefaultDomain
		}
		return d.Origin() + d.BasePath + "/" + string(svc) + "/" + url.PathEscape(domain)
	}
	return d.Origin() + "/" + string(svc) + d.BasePath
}

func encodeParams(p Params) (string, error) {
	vals := make(url.Values, len(p))
	for name, v := range p {
		s, ok, err := formatParam(name, v)
		if err != nil {
			return "", err
		}
		if ok {
			vals.Set(name, s)
		}
	}
	return vals.Encode(), nil
}

// formatParam renders one query value. ok is false for nil values.
func formatParam(name string, v any) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false, nil
		}
		rv = rv.Elem()
	}
	if s, isStringer := v.(fmt.Stringer); isStringer {
		return s.String(), true, nil
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true, nil
	case reflect.Slice, reflect.Array:
		if name != "keys" {
			return "", false, &InvalidParamError{Name: name, Reason: "only keys may be a list"}
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.String {
				return "", false, &InvalidParamError{Name: name, Reason: fmt.Sprintf("element %d is %s, want string", i, elem.Kind())}
			}
			parts[i] = elem.String()
		}
		return strings.Join(parts, ","), true, nil
	default:
		return "", false, &InvalidParamError{Name: name, Reason: fmt.Sprintf("unsupported type %s", rv.Type())}
	}
}
