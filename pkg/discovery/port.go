package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/ekaya-inc/metadoc/pkg/apperrors"
)

// PortResolver locates the query port of a locally running engine instance.
type PortResolver interface {
	// Resolve returns explicitPort unchanged when non-zero. Otherwise it
	// inspects running processes for the engine executable and returns the
	// first listening TCP port found, in process-then-socket discovery order.
	// Fails with apperrors.ErrPortNotFound when nothing matches.
	Resolve(ctx context.Context, explicitPort int) (int, error)
}

// engineProcess is the slice of OS process state the resolver needs.
// The gopsutil-backed implementation is the default; tests substitute fakes.
type engineProcess interface {
	Name(ctx context.Context) (string, error)
	ListeningPorts(ctx context.Context) ([]uint32, error)
}

type processLister func(ctx context.Context) ([]engineProcess, error)

type portResolver struct {
	processName string
	list        processLister
	logger      *zap.Logger
}

// NewPortResolver creates a resolver that matches processes named processName
// (case-insensitive, with or without an .exe suffix).
func NewPortResolver(processName string, logger *zap.Logger) PortResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &portResolver{
		processName: processName,
		list:        listProcesses,
		logger:      logger,
	}
}

func (r *portResolver) Resolve(ctx context.Context, explicitPort int) (int, error) {
	if explicitPort != 0 {
		return explicitPort, nil
	}

	procs, err := r.list(ctx)
	if err != nil {
		return 0, fmt.Errorf("enumerate processes: %w", err)
	}

	matched := false
	var ports []int
	for _, p := range procs {
		name, err := p.Name(ctx)
		if err != nil {
			// Processes can vanish or deny access mid-enumeration; skip them.
			r.logger.Debug("skipping process with unreadable name", zap.Error(err))
			continue
		}
		if !r.matchesEngineName(name) {
			continue
		}
		matched = true

		procPorts, err := p.ListeningPorts(ctx)
		if err != nil {
			r.logger.Debug("skipping process with unreadable sockets",
				zap.String("process", name), zap.Error(err))
			continue
		}
		for _, port := range procPorts {
			if port != 0 {
				ports = append(ports, int(port))
			}
		}
	}

	if !matched {
		return 0, fmt.Errorf("%w: no %s process is running", apperrors.ErrPortNotFound, r.processName)
	}
	if len(ports) == 0 {
		return 0, fmt.Errorf("%w: %s is running but has no listening sockets", apperrors.ErrPortNotFound, r.processName)
	}

	// First-wins. With multiple engine instances there is no heuristic for
	// picking "the right" one; callers needing a specific instance pass an
	// explicit port.
	return ports[0], nil
}

func (r *portResolver) matchesEngineName(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	return name == strings.ToLower(r.processName)
}

// gopsutilProcess adapts *process.Process to engineProcess.
type gopsutilProcess struct {
	p *process.Process
}

func (g gopsutilProcess) Name(ctx context.Context) (string, error) {
	return g.p.NameWithContext(ctx)
}

func (g gopsutilProcess) ListeningPorts(ctx context.Context) ([]uint32, error) {
	conns, err := g.p.ConnectionsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	var ports []uint32
	for _, conn := range conns {
		if conn.Status == "LISTEN" {
			ports = append(ports, conn.Laddr.Port)
		}
	}
	return ports, nil
}

func listProcesses(ctx context.Context) ([]engineProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]engineProcess, 0, len(procs))
	for _, p := range procs {
		out = append(out, gopsutilProcess{p: p})
	}
	return out, nil
}
