package orm

import (
	"github.com/arabica-labs/arabica"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	arabica.Persistent
	Validate() error
}
