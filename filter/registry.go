package filter

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/utils"
)

// Config describes a filter to build: its registered type and the attributes that
// parameterize it.
type Config struct {
	Type       string             `json:"type"`
	Attributes utils.AttributeMap `json:"attributes,omitempty"`
}

// Constructor builds a filter from its attributes.
type Constructor func(attributes utils.AttributeMap, logger logging.Logger) (Filter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// RegisterFilter makes a filter type available to New. It panics if the type is
// already registered.
func RegisterFilter(filterType string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[filterType]; ok {
		panic(errors.Errorf("trying to register two filters with the same type %q", filterType))
	}
	if constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for filter type %q", filterType))
	}
	registry[filterType] = constructor
}

// RegisteredFilterTypes returns every registered filter type, sorted.
func RegisteredFilterTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := lo.Keys(registry)
	sort.Strings(types)
	return types
}

// New builds the filter described by conf.
func New(conf Config, logger logging.Logger) (Filter, error) {
	if logger == nil {
		logger = logging.Global()
	}
	registryMu.RLock()
	constructor, ok := registry[conf.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown filter type %q, expected one of %v", conf.Type, RegisteredFilterTypes())
	}
	f, err := constructor(conf.Attributes, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build %s filter", conf.Type)
	}
	logger.Debugw("built filter", "type", conf.Type)
	return f, nil
}
