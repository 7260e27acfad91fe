package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"stockviz/internal/chart"
	"stockviz/internal/domain"
	"stockviz/internal/selection"
	"stockviz/internal/summary"
)

var _ ChartsServer = (*Server)(nil)

// Server implements the Charts service on top of a chart builder.
type Server struct {
	charts *chart.Builder
	log    *slog.Logger
}

// NewServer creates a gRPC server backed by the given builder.
func NewServer(charts *chart.Builder, log *slog.Logger) *Server {
	return &Server{charts: charts, log: log}
}

// RegisterGRPC registers the Charts service and a health service reporting
// it as serving.
func (s *Server) RegisterGRPC(gs *grpc.Server) {
	RegisterChartsServer(gs, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
}

// BuildChart builds the chart described by {kind, ticker, year}.
func (s *Server) BuildChart(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	sel := selection.Selection{}
	for _, e := range []selection.Event{
		{Type: selection.ChartChanged, Value: stringField(fields, "kind")},
		{Type: selection.TickerChanged, Value: stringField(fields, "ticker")},
		{Type: selection.YearChanged, Value: stringField(fields, "year")},
	} {
		var err error
		if sel, err = selection.Apply(sel, e); err != nil {
			return nil, s.statusErr(buildChartMethod, err)
		}
	}

	res, err := s.charts.Build(sel)
	if err != nil {
		return nil, s.statusErr(buildChartMethod, err)
	}
	return toStruct(res)
}

// Calculate runs the return calculator on {ticker, start, end, amount}.
func (s *Server) Calculate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	sel := selection.Selection{}
	for _, e := range []selection.Event{
		{Type: selection.TickerChanged, Value: stringField(fields, "ticker")},
		{Type: selection.StartDateChanged, Value: stringField(fields, "start")},
		{Type: selection.EndDateChanged, Value: stringField(fields, "end")},
	} {
		var err error
		if sel, err = selection.Apply(sel, e); err != nil {
			return nil, s.statusErr(calculateMethod, err)
		}
	}

	amount, err := amountField(fields)
	if err != nil {
		return nil, s.statusErr(calculateMethod, err)
	}
	res, err := s.charts.Calculate(selection.CalculatorInput{
		Ticker:    sel.Ticker,
		StartDate: sel.StartDate,
		EndDate:   sel.EndDate,
		Amount:    amount,
	})
	if err != nil {
		return nil, s.statusErr(calculateMethod, err)
	}
	return toStruct(map[string]any{
		"result":  res,
		"display": summary.FormatReturn(res),
	})
}

// stringField reads a string or number field as text. Numbers are written
// without a fractional part when they have none.
func stringField(fields map[string]*structpb.Value, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	}
	return ""
}

// amountField accepts the amount as a number or a numeric string. A
// missing amount is zero and is rejected by the calculator.
func amountField(fields map[string]*structpb.Value) (float64, error) {
	v, ok := fields["amount"]
	if !ok {
		return 0, nil
	}
	if sv, isStr := v.GetKind().(*structpb.Value_StringValue); isStr {
		f, err := strconv.ParseFloat(sv.StringValue, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, sv.StringValue)
		}
		return f, nil
	}
	return v.GetNumberValue(), nil
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return st, nil
}

// CodeFor maps a taxonomy error to a gRPC status code.
func CodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrMissingSelection),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrInvalidAmount):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrUnknownTicker),
		errors.Is(err, domain.ErrNoDataForSelection),
		errors.Is(err, domain.ErrMissingDateRecord):
		return codes.NotFound
	case errors.Is(err, domain.ErrEmptySeries),
		errors.Is(err, domain.ErrEmptyTreemap),
		errors.Is(err, domain.ErrDegenerateFit),
		errors.Is(err, domain.ErrDivisionByZero):
		return codes.FailedPrecondition
	}
	return codes.Internal
}

// statusErr converts err to a status whose message starts with the
// taxonomy tag, e.g. "UnknownTicker: unknown ticker: \"XYZ\"".
func (s *Server) statusErr(method string, err error) error {
	code := CodeFor(err)
	if code == codes.Internal {
		s.log.Error("rpc failed", "method", method, "error", err)
	} else {
		s.log.Debug("rpc rejected", "method", method, "code", code, "error", err)
	}
	return status.Error(code, fmt.Sprintf("%s: %v", domain.Code(err), err))
}
