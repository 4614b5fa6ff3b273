package usecases

import (
	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/metrics"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
)

type Condition struct {
	From   string
	To     string
	Status pkg.RoadStatus
}

// ConditionService owns the session overlay. queries read a snapshot, so a mutation never races
// with a running search.
type ConditionService struct {
	log      *zap.Logger
	topology *da.Topology
	overlay  *da.ConditionOverlay
}

func NewConditionService(log *zap.Logger, topology *da.Topology, overlay *da.ConditionOverlay) *ConditionService {
	if overlay == nil {
		overlay = da.NewConditionOverlay()
	}
	metrics.SetOverlayRecords(overlay.Len())
	return &ConditionService{
		log:      log,
		topology: topology,
		overlay:  overlay,
	}
}

func (cs *ConditionService) Snapshot() *da.OverlaySnapshot {
	return cs.overlay.Snapshot()
}

func (cs *ConditionService) Conditions() []Condition {
	records := cs.overlay.Records()
	conditions := make([]Condition, 0, len(records))
	for _, r := range records {
		conditions = append(conditions, Condition{
			From:   cs.topology.GetNode(r.GetFrom()).GetCode(),
			To:     cs.topology.GetNode(r.GetTo()).GetCode(),
			Status: r.GetStatus(),
		})
	}
	return conditions
}

func parseStatus(status string) (pkg.RoadStatus, error) {
	s, ok := pkg.ParseRoadStatus(status)
	if !ok {
		return pkg.OPEN, util.WrapErrorf(nil, util.ErrBadParamInput,
			"unknown road status %q, want OPEN, FLOODED or BLOCKED", status)
	}
	return s, nil
}

func (cs *ConditionService) SetCondition(from, to, status string) (Condition, error) {
	s, err := parseStatus(status)
	if err != nil {
		return Condition{}, err
	}
	if from == to {
		return Condition{}, util.WrapErrorf(nil, util.ErrBadParamInput, "condition needs two distinct nodes, got %q twice", from)
	}
	if err := cs.overlay.ApplyDirectives(cs.topology, []da.ConditionDirective{da.NewConditionDirective(from, to, s)}); err != nil {
		return Condition{}, err
	}
	metrics.SetOverlayRecords(cs.overlay.Len())
	cs.log.Info("road condition set", zap.String("from", from), zap.String("to", to), zap.String("status", s.String()))
	return Condition{From: from, To: to, Status: s}, nil
}

func (cs *ConditionService) SetRoadCondition(fragment, status string) (int, error) {
	s, err := parseStatus(status)
	if err != nil {
		return 0, err
	}
	n, err := cs.overlay.ApplyRoadCondition(cs.topology, fragment, s)
	if err != nil {
		return 0, err
	}
	metrics.SetOverlayRecords(cs.overlay.Len())
	cs.log.Info("road condition set by name", zap.String("fragment", fragment), zap.String("status", s.String()),
		zap.Int("affected", n))
	return n, nil
}

func (cs *ConditionService) ClearConditions() {
	cs.overlay.Clear()
	metrics.SetOverlayRecords(0)
	cs.log.Info("road conditions cleared")
}
