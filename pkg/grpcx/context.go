package grpcx

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Chiavi condivise per propagare il request id fra client e servizi gRPC.
type contextKey string

// ContextRequestIDKey definisce la chiave per il context locale (non gRPC).
const ContextRequestIDKey contextKey = "request_id"

// RequestIDMetadataKey definisce la chiave metadata per il request id su gRPC.
const RequestIDMetadataKey = "x-request-id"

// RequestIDFromContext legge il request id dal context locale, poi dalle metadata in ingresso.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextRequestIDKey).(string); ok && id != "" {
		return id
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RequestIDMetadataKey); len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

// WithRequestID aggiunge il request id sia al context locale sia alle metadata in uscita.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, ContextRequestIDKey, id)
	return metadata.AppendToOutgoingContext(ctx, RequestIDMetadataKey, id)
}

// UnaryRequestID garantisce un request id per ogni chiamata (generato se assente)
// e registra metodo, codice e durata.
func UnaryRequestID(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := RequestIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = context.WithValue(ctx, ContextRequestIDKey, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc call", "method", info.FullMethod, "code", status.Code(err).String(),
			"duration", time.Since(start), "request_id", id)
		return resp, err
	}
}
