package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"stockviz/internal/domain"
	"stockviz/internal/selection"
)

// Client calls a remote Charts service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client targeting the given gRPC address. Extra options are
// appended after the insecure transport credentials.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// BuildChart requests the chart for sel and returns it as a JSON-shaped map.
func (c *Client) BuildChart(ctx context.Context, sel selection.Selection) (map[string]any, error) {
	req := map[string]any{"kind": string(sel.Kind)}
	if sel.Ticker != "" {
		req["ticker"] = sel.Ticker
	}
	if sel.Year != 0 {
		req["year"] = sel.Year
	}
	return c.invoke(ctx, buildChartMethod, req)
}

// Calculate requests a return calculation.
func (c *Client) Calculate(ctx context.Context, ticker string, start, end domain.Date, amount float64) (map[string]any, error) {
	return c.invoke(ctx, calculateMethod, map[string]any{
		"ticker": ticker,
		"start":  start.String(),
		"end":    end.String(),
		"amount": amount,
	})
}

// Healthy reports whether the server says the Charts service is serving.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
