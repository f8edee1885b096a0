package types

// AppError carries a service-layer error together with the HTTP status the
// controller should answer with.
type AppError struct {
	Error error
	Code  int
}
