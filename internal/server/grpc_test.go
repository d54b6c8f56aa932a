package server

import (
	"context"
	"math"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/covera-app/covera/internal/services/vendor"
)

func dialCompliance(t *testing.T, env *testEnv) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs, _ := NewGRPCServer(NewComplianceService(env.deps.Engine, env.deps.Reports, nil), nil)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func classify(t *testing.T, conn *grpc.ClientConn, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+ComplianceServiceName+"/Classify", req, out)
	return out, err
}

func TestGRPCClassify(t *testing.T) {
	conn := dialCompliance(t, newEnv(t, nil, 0))

	// 2025-07-16 is 45 days after the fixed clock
	cases := []struct {
		name   string
		in     map[string]any
		status string
		days   any
	}{
		{"insurance threshold", map[string]any{"date": "2025-07-16", "kind": "insurance"}, "compliant", float64(45)},
		{"contract threshold", map[string]any{"date": "2025-07-16", "kind": "contract"}, "at-risk", float64(45)},
		{"explicit threshold wins", map[string]any{"date": "2025-07-16", "kind": "contract", "thresholdDays": 10}, "compliant", float64(45)},
		{"expired", map[string]any{"date": "2025-05-31", "kind": "insurance"}, "non-compliant", float64(-1)},
		{"missing date", map[string]any{"kind": "insurance"}, "non-compliant", nil},
		{"garbage date", map[string]any{"date": "Invalid Date", "kind": "contract"}, "non-compliant", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := classify(t, conn, tc.in)
			require.NoError(t, err)
			got := out.AsMap()
			assert.Equal(t, tc.status, got["status"])
			assert.Equal(t, tc.days, got["daysUntil"])
		})
	}
}

func TestGRPCClassify_InvalidArgument(t *testing.T) {
	conn := dialCompliance(t, newEnv(t, nil, 0))

	for _, in := range []map[string]any{
		{"date": "2025-07-16"},
		{"date": "2025-07-16", "kind": "receipt"},
		{"date": "2025-07-16", "thresholdDays": "30"},
		{"date": "2025-07-16", "thresholdDays": -1},
		{"date": "2025-07-16", "thresholdDays": 1e300},
		{"date": "2025-07-16", "thresholdDays": 36501},
		{"date": "2025-07-16", "thresholdDays": 30.5},
	} {
		_, err := classify(t, conn, in)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "%v", in)
	}

	// JSON cannot carry these, so build the Struct by hand.
	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			"date":          structpb.NewStringValue("2025-07-16"),
			"thresholdDays": structpb.NewNumberValue(n),
		}}
		err := conn.Invoke(context.Background(), "/"+ComplianceServiceName+"/Classify", req, new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "%v", n)
	}
}

func TestGRPCListAlerts(t *testing.T) {
	env := newEnv(t, nil, 0)
	ctx := context.Background()
	_, err := env.deps.Vendors.Create(ctx, "acme", vendor.Request{Name: "Acme", InsuranceExpiry: sp("2025-06-10")})
	require.NoError(t, err)
	_, err = env.deps.Vendors.Create(ctx, "acme", vendor.Request{Name: "Fine", InsuranceExpiry: sp("2027-01-01")})
	require.NoError(t, err)
	conn := dialCompliance(t, env)

	req, err := structpb.NewStruct(map[string]any{"orgId": "acme"})
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, "/"+ComplianceServiceName+"/ListAlerts", req, out))

	alerts := out.AsMap()["alerts"].([]any)
	require.Len(t, alerts, 1)
	first := alerts[0].(map[string]any)
	assert.Equal(t, "Acme", first["name"])
	assert.Equal(t, "at-risk", first["status"])
	assert.Equal(t, float64(9), first["daysUntil"])

	err = conn.Invoke(ctx, "/"+ComplianceServiceName+"/ListAlerts", &structpb.Struct{}, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHealth(t *testing.T) {
	conn := dialCompliance(t, newEnv(t, nil, 0))
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ComplianceServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
