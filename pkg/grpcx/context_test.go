package grpcx

import (
	"context"
	"log/slog"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestRequestIDFromContext(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, " abc "))
	if id := RequestIDFromContext(ctx); id != "abc" {
		t.Fatalf("expected id from metadata, got %q", id)
	}

	ctx = context.WithValue(ctx, ContextRequestIDKey, "local")
	if id := RequestIDFromContext(ctx); id != "local" {
		t.Fatalf("expected local id to win, got %q", id)
	}
}

func TestWithRequestIDSetsOutgoingMetadata(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	md, ok := metadata.FromOutgoingContext(ctx)
	if !ok || len(md.Get(RequestIDMetadataKey)) != 1 || md.Get(RequestIDMetadataKey)[0] != "req-1" {
		t.Fatalf("expected outgoing metadata, got %v", md)
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Fatalf("expected local id")
	}
}

func TestUnaryRequestIDGeneratesID(t *testing.T) {
	interceptor := UnaryRequestID(slog.Default())
	info := &grpc.UnaryServerInfo{FullMethod: "/cards.v1.GameService/GetGame"}

	var seen string
	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == "" {
		t.Fatalf("expected generated request id")
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "given"))
	_, _ = interceptor(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	if seen != "given" {
		t.Fatalf("expected propagated id, got %q", seen)
	}
}
