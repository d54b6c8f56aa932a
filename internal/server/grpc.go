package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/services/report"
)

// ComplianceServiceName is the fully qualified gRPC service name. Messages
// are google.protobuf.Struct so clients need no generated stubs.
const ComplianceServiceName = "covera.v1.ComplianceService"

// maxThresholdDays is about a century; anything larger is a client bug.
const maxThresholdDays = 36500

// ComplianceServer is the server API for covera.v1.ComplianceService.
type ComplianceServer interface {
	// Classify takes {date, kind | thresholdDays} and returns
	// {status, daysUntil, thresholdDays}.
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListAlerts takes {orgId} and returns {alerts: [...]}.
	ListAlerts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ComplianceServiceDesc = grpc.ServiceDesc{
	ServiceName: ComplianceServiceName,
	HandlerType: (*ComplianceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Classify", Handler: unaryHandler("Classify", ComplianceServer.Classify)},
		{MethodName: "ListAlerts", Handler: unaryHandler("ListAlerts", ComplianceServer.ListAlerts)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "covera/v1/compliance.proto",
}

type unaryMethod func(ComplianceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ComplianceServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ComplianceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ComplianceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ComplianceService implements ComplianceServer on top of the engine and
// the report service.
type ComplianceService struct {
	engine  *compliance.Engine
	reports *report.Service
	logger  *slog.Logger
}

func NewComplianceService(engine *compliance.Engine, reports *report.Service, logger *slog.Logger) *ComplianceService {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = compliance.NewEngine(nil)
	}
	return &ComplianceService{engine: engine, reports: reports, logger: logger}
}

func (s *ComplianceService) Classify(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	var threshold int
	switch v := fields["thresholdDays"].GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := v.NumberValue
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return nil, common.GRPCError(common.InvalidInput("thresholdDays must be a whole number"))
		}
		if n < 0 || n > maxThresholdDays {
			return nil, common.GRPCError(common.InvalidInput("thresholdDays must be between 0 and %d", maxThresholdDays))
		}
		threshold = int(n)
	case nil, *structpb.Value_NullValue:
		switch constants.DocumentKind(fields["kind"].GetStringValue()) {
		case constants.KindInsurance:
			threshold = constants.InsuranceThresholdDays
		case constants.KindContract:
			threshold = constants.ContractThresholdDays
		default:
			return nil, common.GRPCError(common.InvalidInput("kind must be insurance or contract when thresholdDays is absent"))
		}
	default:
		return nil, common.GRPCError(common.InvalidInput("thresholdDays must be a number"))
	}

	var date *string
	if v, ok := fields["date"].GetKind().(*structpb.Value_StringValue); ok {
		date = &v.StringValue
	}
	today := s.engine.Today()
	out := map[string]any{
		"status":        string(compliance.Classify(date, threshold, today)),
		"thresholdDays": threshold,
		"daysUntil":     nil,
	}
	if date != nil {
		if d, ok := compliance.DaysUntil(*date, today); ok {
			out["daysUntil"] = d
		}
	}
	return structpb.NewStruct(out)
}

func (s *ComplianceService) ListAlerts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	org := req.GetFields()["orgId"].GetStringValue()
	if org == "" {
		return nil, common.GRPCError(common.InvalidInput("orgId is required"))
	}
	ctx = common.WithOrgID(ctx, org)
	alerts, err := s.reports.Alerts(ctx, org)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	// JSON round trip yields the []any/map[string]any/float64 shapes structpb accepts
	b, err := json.Marshal(alerts)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	var list []any
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, common.GRPCError(err)
	}
	return structpb.NewStruct(map[string]any{"alerts": list})
}

// LoggingInterceptor logs one line per unary call.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc.request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// NewGRPCServer registers the compliance service alongside the standard
// health and reflection services.
func NewGRPCServer(svc ComplianceServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)))
	gs.RegisterService(&ComplianceServiceDesc, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ComplianceServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(gs)
	return gs, hs
}
