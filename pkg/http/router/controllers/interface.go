package controllers

import (
	"context"

	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/http/usecases"
	"github.com/lintang-b-s/evacroute/pkg/ranker"
)

type RoutingService interface {
	Topology() *da.Topology
	Facilities() []da.Node
	Route(ctx context.Context, source, target, algorithm string) (usecases.RouteResult, error)
	Recommendations(ctx context.Context, source string, k int) (*ranker.Recommendations, error)
	Query(ctx context.Context, params usecases.QueryParams) (usecases.QueryResult, error)
	Nearest(lat, lon float64) (usecases.NearestResult, error)
}

type ConditionService interface {
	Conditions() []usecases.Condition
	SetCondition(from, to, status string) (usecases.Condition, error)
	SetRoadCondition(fragment, status string) (int, error)
	ClearConditions()
}
