package utils


//=========================================== Generic Helpers


/*
	GetZero returns the zero value for any type, used throughout the package
	as a typed stand-in for "no value" on error paths, e.g.:
		return GetZero[*grpc.ClientConn](), err
*/

func GetZero [T any]() T {
	var zero T
	return zero
}
