package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/spectral"
)

// Parameters obtained from the YAML input file
type InputParameters1D struct {
	Title      string          `yaml:"Title"`
	NumPoints  int             `yaml:"NumPoints"` // Quadrature points, also the parent mode count
	Family     string          `yaml:"Family"`
	Quadrature string          `yaml:"Quadrature"` // Empty selects the family default
	Domain     []float64       `yaml:"Domain"`     // [Low, High]
	BC         *BoundaryValues `yaml:"BC"`         // Dirichlet values, absent for an unconstrained basis
	Backend    string          `yaml:"Backend"`
	Threads    int             `yaml:"Threads"`
}

type BoundaryValues struct {
	Low  float64 `yaml:"Low"`
	High float64 `yaml:"High"`
}

func (ip *InputParameters1D) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters1D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Number of Points\n", ip.NumPoints)
	fmt.Printf("[%s]\t\t\t= Family\n", ip.Family)
	if len(ip.Quadrature) != 0 {
		fmt.Printf("[%s]\t\t\t\t= Quadrature\n", ip.Quadrature)
	}
	if len(ip.Domain) == 2 {
		fmt.Printf("[%8.5f,%8.5f]\t= Domain\n", ip.Domain[0], ip.Domain[1])
	}
	if ip.BC != nil {
		fmt.Printf("u(low) = %8.5f, u(high) = %8.5f\t= Dirichlet BC\n", ip.BC.Low, ip.BC.High)
	}
	if len(ip.Backend) != 0 {
		fmt.Printf("[%s], threads = %d\t= Kernel Backend\n", ip.Backend, ip.Threads)
	}
}

// Options translates the parameters into basis construction options.
func (ip *InputParameters1D) Options() (opts []spectral.Option, err error) {
	switch len(ip.Domain) {
	case 0:
	case 2:
		opts = append(opts, spectral.WithDomain(ip.Domain[0], ip.Domain[1]))
	default:
		err = fmt.Errorf("Domain needs exactly two values, have %v", ip.Domain)
		return
	}
	if q := strings.ToUpper(strings.TrimSpace(ip.Quadrature)); len(q) != 0 {
		opts = append(opts, spectral.WithQuadrature(quadrature.Type(q)))
	}
	if ip.BC != nil {
		opts = append(opts, spectral.WithBoundary(ip.BC.Low, ip.BC.High))
	}
	if len(ip.Backend) != 0 {
		opts = append(opts, spectral.WithKernels(kernels.Resolve(ip.KernelConfig())))
	}
	return
}

// KernelConfig is the kernel selection of the file, Threads defaults to the
// process wide setting.
func (ip *InputParameters1D) KernelConfig() (cfg kernels.Config) {
	cfg = kernels.Default().Config
	if len(ip.Backend) != 0 {
		cfg.Backend = ip.Backend
	}
	if ip.Threads > 0 {
		cfg.Threads = ip.Threads
	}
	return
}

// NewBasis builds the basis described by the parameters.
func (ip *InputParameters1D) NewBasis() (b spectral.Basis, err error) {
	var (
		family spectral.Family
		opts   []spectral.Option
	)
	if family, err = spectral.ParseFamily(ip.Family); err != nil {
		return
	}
	if opts, err = ip.Options(); err != nil {
		return
	}
	return spectral.New(ip.NumPoints, family, opts...)
}
