// Command txintrospectd exposes a clausetx.Store's introspection surface
// over gRPC: the current_transaction/1 and transaction_updates/1
// equivalents, plus a predicate generation dump (spec.md §4.8). It carries
// no protobuf-generated code, the same manual grpc.ServiceDesc + JSON codec
// pattern the teacher's SQL server used.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"time"

	"github.com/clausetx/clausetx"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

var (
	flagGRPC          = flag.String("grpc", ":9191", "gRPC listen address")
	flagJanitorEvery  = flag.Duration("janitor-interval", time.Minute, "erased-clause sweep interval (0 disables)")
	flagUpdateHistory = flag.Int("update-history", 1024, "bounded recent-update history length")
)

// jsonCodec is a drop-in gRPC codec so no .proto/protoc step is needed.
type jsonCodec struct{}

func (jsonCodec) Name() string                      { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// listTransactionsRequest/Response, pendingUpdatesRequest/Response, and
// describePredicateRequest/Response are the wire types for the three RPCs
// below; they travel as plain JSON over the codec above.
type listTransactionsRequest struct{}

type listTransactionsResponse struct {
	Transactions []clausetx.TransactionInfo `json:"transactions"`
}

type pendingUpdatesRequest struct{}

type pendingUpdatesResponse struct {
	Updates []clausetx.UpdateEvent `json:"updates"`
}

type describePredicateRequest struct {
	Name string `json:"name"`
}

type describePredicateResponse struct {
	Clauses []clausetx.ClauseSnapshot `json:"clauses"`
}

// IntrospectionServer is the RPC surface registerIntrospectionServer wires
// up manually.
type IntrospectionServer interface {
	ListTransactions(context.Context, *listTransactionsRequest) (*listTransactionsResponse, error)
	PendingUpdates(context.Context, *pendingUpdatesRequest) (*pendingUpdatesResponse, error)
	DescribePredicate(context.Context, *describePredicateRequest) (*describePredicateResponse, error)
}

func registerIntrospectionServer(s *grpc.Server, srv IntrospectionServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "clausetx.Introspection",
		HandlerType: (*IntrospectionServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "ListTransactions", Handler: _Introspection_ListTransactions_Handler},
			{MethodName: "PendingUpdates", Handler: _Introspection_PendingUpdates_Handler},
			{MethodName: "DescribePredicate", Handler: _Introspection_DescribePredicate_Handler},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "clausetx",
	}, srv)
}

func _Introspection_ListTransactions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(listTransactionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IntrospectionServer).ListTransactions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/clausetx.Introspection/ListTransactions"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IntrospectionServer).ListTransactions(ctx, req.(*listTransactionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Introspection_PendingUpdates_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(pendingUpdatesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IntrospectionServer).PendingUpdates(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/clausetx.Introspection/PendingUpdates"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IntrospectionServer).PendingUpdates(ctx, req.(*pendingUpdatesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Introspection_DescribePredicate_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(describePredicateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IntrospectionServer).DescribePredicate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/clausetx.Introspection/DescribePredicate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IntrospectionServer).DescribePredicate(ctx, req.(*describePredicateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// server adapts a *clausetx.Store to IntrospectionServer. DescribePredicate
// has nothing to dump yet: the predicate/clause table lives in a host
// application, out of scope for this package, so it always returns an
// empty list until a real registry is wired in by an embedder.
type server struct {
	store *clausetx.Store
}

func (s *server) ListTransactions(ctx context.Context, _ *listTransactionsRequest) (*listTransactionsResponse, error) {
	return &listTransactionsResponse{Transactions: s.store.CurrentTransactions()}, nil
}

func (s *server) PendingUpdates(ctx context.Context, _ *pendingUpdatesRequest) (*pendingUpdatesResponse, error) {
	return &pendingUpdatesResponse{Updates: s.store.PendingUpdates()}, nil
}

func (s *server) DescribePredicate(ctx context.Context, req *describePredicateRequest) (*describePredicateResponse, error) {
	return &describePredicateResponse{Clauses: nil}, nil
}

func main() {
	flag.Parse()

	store := clausetx.NewStore(clausetx.Config{
		UpdateHistoryLimit: *flagUpdateHistory,
		JanitorInterval:    *flagJanitorEvery,
	})
	if err := store.Start(); err != nil {
		log.Fatalf("starting store: %v", err)
	}
	defer store.Stop()

	encoding.RegisterCodec(jsonCodec{})

	lis, err := net.Listen("tcp", *flagGRPC)
	if err != nil {
		log.Fatalf("gRPC listen error: %v", err)
	}
	gs := grpc.NewServer()
	registerIntrospectionServer(gs, &server{store: store})
	log.Printf("txintrospectd listening on %s", *flagGRPC)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("gRPC serve error: %v", err)
	}
}
