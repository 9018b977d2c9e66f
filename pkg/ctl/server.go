package ctl

import (
	"context"
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"
	"src.wrepl.sh/pkg/store"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// backend is the part of the bridge session the control server drives. It is
// satisfied by [src.wrepl.sh/pkg/bridge.Session].
type backend interface {
	Eval(ctx context.Context, form string) (string, error)
	State() string
	Evals(from, upto int) ([]store.EvalRecord, error)
}

type server struct {
	backend backend
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"eval":    s.eval,
		"status":  s.status,
		"history": s.history,
	})
}

type method func(context.Context, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		if req.Params == nil {
			return fn(ctx, nil)
		}
		return fn(ctx, *req.Params)
	})
}

// Method implementations. These are all called synchronously.

type evalParams struct {
	Form string `json:"form"`
}

type evalResult struct {
	Value string `json:"value"`
}

func (s *server) eval(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var params evalParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	value, err := s.backend.Eval(ctx, params.Form)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}
	return evalResult{value}, nil
}

type statusResult struct {
	State string `json:"state"`
}

func (s *server) status(_ context.Context, _ json.RawMessage) (any, error) {
	return statusResult{s.backend.State()}, nil
}

type historyParams struct {
	From int `json:"from"`
	Upto int `json:"upto"`
}

type historyRecord struct {
	Seq   int    `json:"seq"`
	Form  string `json:"form"`
	Value string `json:"value"`
}

func (s *server) history(_ context.Context, rawParams json.RawMessage) (any, error) {
	var params historyParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	recs, err := s.backend.Evals(params.From, params.Upto)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}
	history := make([]historyRecord, len(recs))
	for i, rec := range recs {
		history[i] = historyRecord{Seq: rec.Seq, Form: rec.Form, Value: rec.Result}
	}
	return history, nil
}
