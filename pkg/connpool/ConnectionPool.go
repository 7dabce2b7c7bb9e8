package connpool

import "errors"

import "google.golang.org/grpc"
import "google.golang.org/grpc/connectivity"
import "google.golang.org/grpc/credentials/insecure"


//=========================================== Connection Pool


/*
	initialize the connection pool

	the purpose of the connection pool is to reuse connections once they have been made, minimizing overhead
	for reconnecting to a peer every time an rpc is made

	the pool has the following structure:
		{
			[key: peer address]: Array<connections>
		}
*/

func NewConnectionPool(opts ConnectionPoolOpts) *ConnectionPool {
	return &ConnectionPool{
		maxConn: opts.MaxConn,
		dialOptions: opts.DialOptions,
	}
}

/*
	Get Connection:
		1.) load connections for the particular peer address
		2.) if the address was loaded from the thread safe map:
			if the total connections in the map is greater than or equal to max connections specified:
				--> throw max connections error
			otherwise for each connection in the array of connections, if the connection is not null and
			the connection is ready for work, return the connection

		3.) if the address was not loaded, create a new grpc connection and store the new connection at
		the key associated with the address and return the new connection
*/

func (cp *ConnectionPool) GetConnection(addr string) (*grpc.ClientConn, error) {
	connections, loaded := cp.connections.Load(addr)
	if loaded {
		if len(connections.([]*grpc.ClientConn)) >= cp.maxConn { return nil, errors.New("max connections reached") }

		for _, conn := range connections.([]*grpc.ClientConn) {
			if conn != nil && conn.GetState() == connectivity.Ready { return conn, nil }
		}
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, cp.dialOptions...)
	newConn, connErr := grpc.Dial(addr, dialOpts...)
	if connErr != nil { return nil, connErr }

	emptyConns, loaded := cp.connections.LoadOrStore(addr, []*grpc.ClientConn{newConn})
	if loaded {
		connections := emptyConns.([]*grpc.ClientConn)
		cp.connections.Store(addr, append(connections, newConn))
	}

	return newConn, nil
}

/*
	Put Connection:
		1.) load connections for the particular peer address
		2.) if the address was loaded from the thread safe map:
			if the connection already exists in the map, return
			otherwise, close the connection and return
*/

func (cp *ConnectionPool) PutConnection(addr string, connection *grpc.ClientConn) (bool, error) {
	connections, loaded := cp.connections.Load(addr)
	if loaded {
		for _, conn := range connections.([]*grpc.ClientConn) {
			if conn == connection { return true, nil }
		}
	}

	closeErr := connection.Close()
	if closeErr != nil { return false, closeErr }

	return false, nil
}

/*
	CloseAllConnections tears down every pooled connection to addr, used by
	Transport.Finalize on engine shutdown (spec.md §4.F: the transport
	finalizer is invoked once).
*/

func (cp *ConnectionPool) CloseAllConnections(addr string) (int, error) {
	connections, loaded := cp.connections.Load(addr)
	if !loaded { return 0, nil }

	closed := 0
	for _, conn := range connections.([]*grpc.ClientConn) {
		if conn == nil { continue }
		if closeErr := conn.Close(); closeErr != nil { return closed, closeErr }
		closed++
	}

	cp.connections.Delete(addr)

	return closed, nil
}

/*
	CloseAll tears down every pooled connection across every address.
*/

func (cp *ConnectionPool) CloseAll() error {
	var rangeErr error

	cp.connections.Range(func(key, _ interface{}) bool {
		addr := key.(string)
		if _, closeErr := cp.CloseAllConnections(addr); closeErr != nil {
			rangeErr = closeErr
			return false
		}

		return true
	})

	return rangeErr
}
