package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

type instrumentResty struct {
	log       *slog.Logger
	idcounter *uint64
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id        uint64
	startTime time.Time
}

// InstrumentResty logs every request made through client at debug level
// and every transport error at error level.
func InstrumentResty(client *resty.Client, log *slog.Logger) *resty.Client {
	var idcounter uint64
	i := instrumentResty{log: log, idcounter: &idcounter}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
	return client
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := atomic.AddUint64(i.idcounter, 1)
	ctx := context.WithValue(req.Context(), reqCtxKey, reqCtx{id: id, startTime: time.Now()})
	req.SetContext(ctx)

	// the bot token is part of Telegram URLs, so only the method is logged here
	i.log.Debug("http request", "id", id, "method", req.Method)
	return nil
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	rc, ok := res.Request.Context().Value(reqCtxKey).(reqCtx)
	if !ok {
		return nil
	}
	i.log.Debug("http response",
		"id", rc.id,
		"status", res.StatusCode(),
		"duration", time.Since(rc.startTime).String(),
	)
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	attrs := []any{"method", req.Method, "err", err}
	if rc, ok := req.Context().Value(reqCtxKey).(reqCtx); ok {
		attrs = append(attrs, "id", rc.id, "duration", time.Since(rc.startTime).String())
	}
	i.log.Error("http request failed", attrs...)
}
