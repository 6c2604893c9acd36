package arbtest

import "github.com/arabica-labs/arabica"

// Handler is a mock handler that counts its calls and returns the
// configured results.
type Handler struct {
	checkCall   int
	CheckResult arabica.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult arabica.DeliverResult
	DeliverErr    error
}

var _ arabica.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

// WriteHandler writes Key/Value to the store and then returns Err. It is
// used to test that failures roll back writes.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ arabica.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &arabica.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &arabica.DeliverResult{}, nil
}

// PanicHandler panics on every call.
type PanicHandler struct {
	Msg string
}

func (h PanicHandler) Check(arabica.Context, arabica.KVStore, arabica.Tx) (*arabica.CheckResult, error) {
	panic(h.Msg)
}

func (h PanicHandler) Deliver(arabica.Context, arabica.KVStore, arabica.Tx) (*arabica.DeliverResult, error) {
	panic(h.Msg)
}
