package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// ResponseFormatter defines an interface responsible for formatting the
// different types of response objects.
type ResponseFormatter interface {
	// FormatRecord formats a single record in a format ready to be serialized
	// by the ResponseSender.
	FormatRecord(ctx context.Context, headers http.Header, r *resource.Record, skipBody bool) (context.Context, interface{})
	// FormatList formats a list of records in a format ready to be serialized
	// by the ResponseSender.
	FormatList(ctx context.Context, headers http.Header, l *resource.RecordList, skipBody bool) (context.Context, interface{})
	// FormatError formats a REST formatted error or a simple error in a format
	// ready to be serialized by the ResponseSender.
	FormatError(ctx context.Context, headers http.Header, err error, skipBody bool) (context.Context, interface{})
}

// ResponseSender defines an interface responsible for serializing and sending
// the response to the http.ResponseWriter.
type ResponseSender interface {
	// Send serialize the body, sets the given headers and write everything to
	// the provided response writer.
	Send(ctx context.Context, w http.ResponseWriter, status int, headers http.Header, body interface{})
}

// DefaultResponseFormatter provides a base response formatter to be used by
// default. This formatter can easily be extended or replaced by implementing
// ResponseFormatter interface and setting it on Handler.ResponseFormatter.
type DefaultResponseFormatter struct {
}

// DefaultResponseSender provides a base response sender to be used by default.
// This sender can easily be extended or replaced by implementing ResponseSender
// interface and setting it on Handler.ResponseSender.
type DefaultResponseSender struct {
}

// Send sends headers with the given status and marshal the data in JSON.
func (s DefaultResponseSender) Send(ctx context.Context, w http.ResponseWriter, status int, headers http.Header, body interface{}) {
	headers.Set("Content-Type", "application/json")
	// Apply headers to the response
	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	j, err := json.Marshal(body)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Can't build response")
		w.WriteHeader(http.StatusInternalServerError)
		msg := fmt.Sprintf("Can't build response: %q", err.Error())
		w.Write([]byte(fmt.Sprintf("{\"code\": 500, \"message\": %q}", msg)))
		return
	}
	w.WriteHeader(status)
	if _, err = w.Write(j); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Can't send response")
	}
}

// FormatRecord implements ResponseFormatter.
func (f DefaultResponseFormatter) FormatRecord(ctx context.Context, headers http.Header, r *resource.Record, skipBody bool) (context.Context, interface{}) {
	if skipBody || r == nil {
		return ctx, nil
	}
	return ctx, r.Payload()
}

// FormatList implements ResponseFormatter.
func (f DefaultResponseFormatter) FormatList(ctx context.Context, headers http.Header, l *resource.RecordList, skipBody bool) (context.Context, interface{}) {
	if l.Total >= 0 {
		headers.Set("X-Total", strconv.Itoa(l.Total))
	}
	if l.Offset > 0 {
		headers.Set("X-Offset", strconv.Itoa(l.Offset))
	}
	if skipBody {
		return ctx, nil
	}
	payload := make([]map[string]interface{}, len(l.Records))
	for i, r := range l.Records {
		payload[i] = r.Payload()
	}
	return ctx, payload
}

// FormatError implements ResponseFormatter.
func (f DefaultResponseFormatter) FormatError(ctx context.Context, headers http.Header, err error, skipBody bool) (context.Context, interface{}) {
	e := NewError(err)
	if e == nil {
		e = ErrUnknown
	}
	if e.Code >= 500 {
		zerolog.Ctx(ctx).Error().Err(err).Int("code", e.Code).Msg("Server error")
	}
	if skipBody {
		return ctx, nil
	}
	payload := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Issues) > 0 {
		payload["issues"] = e.Issues
	}
	if id, ok := hlog.IDFromCtx(ctx); ok {
		payload["request_id"] = id.String()
	}
	return ctx, payload
}
