package provisioning

import (
	"fmt"
	"path"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/identity"
)

// DataDirSuffix is appended to the member name to form its data directory.
const DataDirSuffix = ".etcd"

// BootstrapPlan is what one run will do. It is the single input both the
// orchestrator and the etcd configuration are derived from.
type BootstrapPlan struct {
	Identity    identity.Identity `json:"identity"`
	DataDir     string            `json:"data_dir"`
	Destructive bool              `json:"destructive"`
	WaitSeconds int               `json:"wait_seconds"`
}

// DataDirFor returns root/member.etcd.
func DataDirFor(root, member string) string {
	return path.Join(root, member+DataDirSuffix)
}

// SelectPlan builds the plan for id. A waitSeconds below 1 is a
// configuration error: it would skip the peer wait altogether.
func SelectPlan(id identity.Identity, destructive bool, dataDirRoot string, waitSeconds int) (BootstrapPlan, error) {
	var errs []config.FieldError
	if waitSeconds < 1 {
		errs = append(errs, config.FieldError{
			Field:   "peer_wait_seconds",
			Message: fmt.Sprintf("must be at least 1, got %d", waitSeconds),
		})
	}
	if dataDirRoot == "" {
		errs = append(errs, config.FieldError{Field: "data_dir_root", Message: "is required"})
	}
	if len(errs) > 0 {
		return BootstrapPlan{}, &config.ConfigurationError{Fields: errs}
	}

	return BootstrapPlan{
		Identity:    id,
		DataDir:     DataDirFor(dataDirRoot, id.Member),
		Destructive: destructive,
		WaitSeconds: waitSeconds,
	}, nil
}

// PlanFromConfig is SelectPlan with its inputs taken from cfg.
func PlanFromConfig(id identity.Identity, cfg *config.Config) (BootstrapPlan, error) {
	return SelectPlan(id, cfg.Reset, cfg.DataDirRoot, cfg.PeerWait())
}
