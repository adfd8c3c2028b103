package allocation

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"warehouse/models"
)

var recomputeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warehouse_allocation_recompute_total",
	Help: "Allocation recompute runs by outcome.",
}, []string{"outcome"})

func outcomeLabel(err error) string {
	var validation *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &validation), errors.Is(err, models.ErrOrderNotFound):
		return "invalid"
	default:
		return "error"
	}
}
