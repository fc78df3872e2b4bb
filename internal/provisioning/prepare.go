package provisioning

import (
	"fmt"
	"regexp"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/etcdconf"
	"github.com/imamik/etcdnode/internal/facts"
	"github.com/imamik/etcdnode/internal/identity"
)

// Preparation is everything decided before the first side effect.
type Preparation struct {
	Facts     facts.Facts       `json:"facts"`
	Addresses facts.AddressSet  `json:"addresses"`
	Identity  identity.Identity `json:"identity"`
	Plan      BootstrapPlan     `json:"plan"`
	Params    etcdconf.Params   `json:"etcd"`
}

// Prepare resolves the identity of the host described by f and derives
// the plan and the etcd parameters. It has no side effects; equal inputs
// give equal results.
func Prepare(cfg *config.Config, f facts.Facts) (*Preparation, error) {
	exclude, err := regexp.Compile(cfg.InterfaceExclude)
	if err != nil {
		return nil, &config.ConfigurationError{Fields: []config.FieldError{{
			Field:   "interface_exclude",
			Message: fmt.Sprintf("invalid pattern: %v", err),
		}}}
	}

	addrs := f.Addresses(exclude)
	id, err := identity.Resolve(cfg.Members, identity.InputFromFacts(f, addrs))
	if err != nil {
		return nil, err
	}

	plan, err := PlanFromConfig(id, cfg)
	if err != nil {
		return nil, err
	}

	return &Preparation{
		Facts:     f,
		Addresses: addrs,
		Identity:  id,
		Plan:      plan,
		Params:    etcdconf.Build(cfg, id.Member, plan.DataDir),
	}, nil
}
