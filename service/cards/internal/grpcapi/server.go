package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"CardTable/pkg/grpcx"
	"CardTable/service/cards/internal/cards"
	"CardTable/service/cards/internal/game"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName e' il nome completo del servizio gRPC.
const ServiceName = "cards.v1.GameService"

// GameServiceServer e' il contratto del servizio: request e response sono
// documenti JSON trasportati come google.protobuf.Struct.
type GameServiceServer interface {
	CreateGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetDeck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreatePile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Draw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type methodFunc func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc descrive i metodi unari del servizio per grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGame", Handler: unaryHandler("CreateGame", GameServiceServer.CreateGame)},
		{MethodName: "GetGame", Handler: unaryHandler("GetGame", GameServiceServer.GetGame)},
		{MethodName: "GetDeck", Handler: unaryHandler("GetDeck", GameServiceServer.GetDeck)},
		{MethodName: "GetPile", Handler: unaryHandler("GetPile", GameServiceServer.GetPile)},
		{MethodName: "CreatePile", Handler: unaryHandler("CreatePile", GameServiceServer.CreatePile)},
		{MethodName: "Draw", Handler: unaryHandler("Draw", GameServiceServer.Draw)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cards/v1/game.proto",
}

// FullMethod ritorna il path gRPC di un metodo del servizio.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call methodFunc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
		})
	}
}

// Register registra il servizio sul server gRPC.
func Register(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server espone game.Manager via gRPC.
// Qui si leggono i campi delle request e si mappano gli errori in codici gRPC.
type Server struct {
	logger *slog.Logger
	games  game.Manager
}

// NewServer crea il server gRPC con il dominio.
func NewServer(logger *slog.Logger, games game.Manager) *Server {
	return &Server{logger: logger, games: games}
}

var _ GameServiceServer = (*Server)(nil)

// CreateGame crea una nuova partita e ritorna la sua vista.
func (s *Server) CreateGame(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.games.CreateGame(ctx)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(g.View())
}

// GetGame richiede game_id.
func (s *Server) GetGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "game_id")
	if err != nil {
		return nil, err
	}
	g, err := s.games.GetGame(ctx, id)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(g.View())
}

func (s *Server) GetDeck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "game_id")
	if err != nil {
		return nil, err
	}
	deck, err := s.games.GetDeck(ctx, id)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(map[string]*cards.Collection{game.DeckName: deck})
}

// GetPile richiede game_id e name; la risposta usa il nome come chiave.
func (s *Server) GetPile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "game_id")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(req, "name")
	if err != nil {
		return nil, err
	}
	pile, err := s.games.GetPile(ctx, id, name)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(map[string]*cards.Collection{name: pile})
}

func (s *Server) CreatePile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "game_id")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(req, "name")
	if err != nil {
		return nil, err
	}
	g, err := s.games.CreatePile(ctx, id, name)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return toStruct(g.View())
}

type drawResult struct {
	game.View
	Moved []cards.Card `json:"moved"`
}

// Draw richiede game_id e destination; source vuoto indica il mazzo.
// selection ha la stessa forma JSON delle request HTTP.
func (s *Server) Draw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "game_id")
	if err != nil {
		return nil, err
	}
	destination, err := requiredString(req, "destination")
	if err != nil {
		return nil, err
	}
	sel, err := selectionField(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	source := req.GetFields()["source"].GetStringValue()
	g, moved, err := s.games.Draw(ctx, id, game.ParseRef(source), game.ParseRef(destination), sel)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	if moved == nil {
		moved = []cards.Card{}
	}
	return toStruct(drawResult{View: g.View(), Moved: moved})
}

func requiredString(req *structpb.Struct, field string) (string, error) {
	value := strings.TrimSpace(req.GetFields()[field].GetStringValue())
	if value == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	return value, nil
}

// selectionField passa dal JSON per riusare il Descriptor delle request HTTP.
func selectionField(req *structpb.Struct) (cards.Selection, error) {
	raw, ok := req.GetFields()["selection"]
	if !ok {
		return cards.Empty(), nil
	}
	data, err := protojson.Marshal(raw)
	if err != nil {
		return cards.Selection{}, err
	}
	var desc cards.Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return cards.Selection{}, err
	}
	return desc.Selection()
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func (s *Server) statusError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, game.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, game.ErrGameBusy):
		return status.Error(codes.FailedPrecondition, "game is busy")
	case errors.Is(err, game.ErrVersionConflict):
		return status.Error(codes.Aborted, "game version conflict")
	case errors.Is(err, cards.ErrNotEnoughCards):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, cards.ErrInvalidCode), errors.Is(err, game.ErrInvalidPileName):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error("errore interno", "error", err, "request_id", grpcx.RequestIDFromContext(ctx))
		return status.Error(codes.Internal, "internal error")
	}
}
