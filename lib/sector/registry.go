package sector

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// registry maps policy names to factories. It is safe for concurrent use, so
// policies may be registered from init functions of several packages.
var registry = xsync.NewMapOf[string, PolicyFactory]()

func init() {
	for _, p := range []Policy{Normal{}, Dynamic{}, Fixed{}, Locked{}, Manual{}, Tight{}} {
		p := p
		registry.Store(PolicyName(p), func() Policy { return p })
	}
}

// RegisterPolicy makes a policy available under name for NewPolicy.
// It fails if the name is empty or already taken.
func RegisterPolicy(name string, factory PolicyFactory) error {
	if name == "" {
		return errors.New("sector: policy name must not be empty")
	}
	if factory == nil {
		return errors.Newf("sector: nil factory for policy %q", name)
	}
	if _, loaded := registry.LoadOrStore(name, factory); loaded {
		return errors.Newf("sector: policy %q already registered", name)
	}
	return nil
}

// NewPolicy returns a fresh policy registered under name.
func NewPolicy(name string) (Policy, error) {
	factory, ok := registry.Load(name)
	if !ok {
		return nil, errors.Newf("sector: unknown policy %q", name)
	}
	return factory(), nil
}

// PolicyNames returns the names of all registered policies in sorted order.
func PolicyNames() []string {
	names := make([]string, 0, registry.Size())
	registry.Range(func(name string, _ PolicyFactory) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
