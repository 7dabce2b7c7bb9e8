package connpool

import "sync"

import "google.golang.org/grpc"


type ConnectionPoolOpts struct {
	MinConn int
	MaxConn int
	DialOptions []grpc.DialOption
}

type ConnectionPool struct {
	connections sync.Map
	minConn int
	maxConn int
	dialOptions []grpc.DialOption
}