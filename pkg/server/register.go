package server

import (
	"github.com/erain9/matchingo/pkg/api/rpc"
	"google.golang.org/grpc"
)

// RegisterOrderBookService registers the order book service with the provided gRPC server
func RegisterOrderBookService(grpcServer grpc.ServiceRegistrar, service *GRPCOrderBookService) {
	rpc.RegisterOrderBookServiceServer(grpcServer, service)
}
