// Package kernels resolves the dense numeric kernels used by the transform
// and assembly hot paths to a backend implementation. Resolution happens once
// per configuration into an immutable Table.
package kernels

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
)

// ErrBackendUnavailable is wrapped by the informational fallback messages.
var ErrBackendUnavailable = errors.New("kernel backend unavailable")

const (
	Evaluate      = "evaluate"
	ScalarProduct = "scalar_product"
	Contract      = "contract"

	DefaultBackend = "gonum"
	GenericBackend = "generic"
)

// KernelNames lists every kernel a Table must carry.
var KernelNames = []string{Evaluate, ScalarProduct, Contract}

// EvaluateFunc computes out = V c.
type EvaluateFunc func(V *mat.CDense, c, out []complex128)

// ScalarProductFunc computes out = V^H diag(w) u.
type ScalarProductFunc func(V *mat.CDense, w []float64, u, out []complex128)

// ContractFunc computes out = A^H diag(w) B. out must be allocated with the
// column counts of A and B.
type ContractFunc func(A, B *mat.CDense, w []float64, out *mat.CDense)

// Backend is a named set of kernels. A nil entry means the backend does not
// provide that kernel.
type Backend struct {
	Name          string
	Evaluate      EvaluateFunc
	ScalarProduct ScalarProductFunc
	Contract      ContractFunc
}

type Config struct {
	Backend string
	Threads int
}

// ConfigFromViper reads "optimization" and "threads" from v. Env variables
// GOSPECTRAL_OPTIMIZATION and GOSPECTRAL_THREADS are honored.
func ConfigFromViper(v *viper.Viper) Config {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("GOSPECTRAL")
	v.AutomaticEnv()
	v.SetDefault("optimization", DefaultBackend)
	v.SetDefault("threads", runtime.NumCPU())
	return Config{
		Backend: v.GetString("optimization"),
		Threads: v.GetInt("threads"),
	}
}

type builder func(cfg Config) (*Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]builder{
		GenericBackend: func(Config) (*Backend, error) { return newGeneric(), nil },
		"gonum":        func(Config) (*Backend, error) { return newGonum(), nil },
		"parallel":     newParallel,
	}
)

// Register adds a backend builder under name, replacing any existing one.
func Register(name string, b func(cfg Config) (*Backend, error)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = b
}

// Backends returns the registered backend names, sorted.
func Backends() (names []string) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// Table is the resolved, read only kernel table.
type Table struct {
	Config        Config
	Evaluate      EvaluateFunc
	ScalarProduct ScalarProductFunc
	Contract      ContractFunc
	source        map[string]string
}

// Source names the backend each kernel was resolved from. Diagnostic only.
func (t *Table) Source(kernel string) string { return t.source[kernel] }

func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "requested backend: %s, threads: %d\n", t.Config.Backend, t.Config.Threads)
	for _, name := range KernelNames {
		fmt.Fprintf(&b, "  %-15s -> %s\n", name, t.source[name])
	}
	return b.String()
}

// Resolve builds a Table for cfg. Kernels missing from the requested backend,
// or all of them when the backend cannot be built, come from the generic
// backend. Fallbacks are logged and never returned as errors.
func Resolve(cfg Config) (t *Table) {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.Threads < 1 {
		cfg.Threads = runtime.NumCPU()
	}
	var (
		generic = newGeneric()
		be      *Backend
		err     error
	)
	registryMu.RLock()
	build, ok := registry[cfg.Backend]
	registryMu.RUnlock()
	if !ok {
		err = fmt.Errorf("backend %q is not compiled in: %w", cfg.Backend, ErrBackendUnavailable)
	} else if be, err = build(cfg); err != nil {
		err = fmt.Errorf("backend %q: %v: %w", cfg.Backend, err, ErrBackendUnavailable)
	}
	if err != nil {
		log.WithField("backend", cfg.Backend).Info(err)
		be = &Backend{Name: cfg.Backend}
	}
	t = &Table{
		Config: cfg,
		source: make(map[string]string, len(KernelNames)),
	}
	fallback := func(name string) string {
		log.WithFields(log.Fields{"kernel": name, "backend": cfg.Backend}).
			Info(fmt.Errorf("using generic kernel: %w", ErrBackendUnavailable))
		return GenericBackend
	}
	t.Evaluate, t.source[Evaluate] = be.Evaluate, be.Name
	if t.Evaluate == nil {
		t.Evaluate, t.source[Evaluate] = generic.Evaluate, fallback(Evaluate)
	}
	t.ScalarProduct, t.source[ScalarProduct] = be.ScalarProduct, be.Name
	if t.ScalarProduct == nil {
		t.ScalarProduct, t.source[ScalarProduct] = generic.ScalarProduct, fallback(ScalarProduct)
	}
	t.Contract, t.source[Contract] = be.Contract, be.Name
	if t.Contract == nil {
		t.Contract, t.source[Contract] = generic.Contract, fallback(Contract)
	}
	log.WithField("backend", cfg.Backend).Debug("kernel table resolved")
	return
}

var (
	current     atomic.Pointer[Table]
	defaultOnce sync.Once
)

// Configure resolves cfg and installs it as the process wide table. Intended
// to be called once at startup.
func Configure(cfg Config) *Table {
	t := Resolve(cfg)
	current.Store(t)
	return t
}

// Default returns the configured table, resolving the environment driven
// configuration on first use if Configure was never called.
func Default() *Table {
	if t := current.Load(); t != nil {
		return t
	}
	defaultOnce.Do(func() {
		current.CompareAndSwap(nil, Resolve(ConfigFromViper(nil)))
	})
	return current.Load()
}

func checkDims(op string, ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Errorf("kernel %s: "+format, append([]any{op}, args...)...))
	}
}
