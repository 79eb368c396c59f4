package mysql

// ConnectionError reports a driver-level failure: connect, begin, commit,
// rollback, statement execution, or schema loading. It carries the
// underlying driver error for errors.Is/As inspection.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return "mysql: " + e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func connErr(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}
