// Copyright 2025 Tenure Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	locks         prometheus.Counter
	unlocks       prometheus.Counter
	opErrors      *prometheus.CounterVec
	poolBalance   prometheus.Gauge
	derivedSupply prometheus.Gauge
	suspended     prometheus.Gauge
}

func (l *LedgerState) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	l.metrics.locks = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "tenure_ledger_locks_total",
			Help: "total number of completed lock operations",
		},
	)
	l.metrics.unlocks = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "tenure_ledger_unlocks_total",
			Help: "total number of completed unlock operations",
		},
	)
	l.metrics.opErrors = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenure_ledger_operation_errors_total",
			Help: "total number of rejected ledger operations",
		},
		[]string{"operation"},
	)
	l.metrics.poolBalance = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenure_ledger_pool_balance",
			Help: "custodial pool balance in base token units",
		},
	)
	l.metrics.derivedSupply = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenure_ledger_derived_supply",
			Help: "total derived token supply",
		},
	)
	l.metrics.suspended = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenure_ledger_suspended",
			Help: "whether the ledger is suspended (1) or active (0)",
		},
	)
}

// bigFloat converts a big.Int to float64 for gauge values. Precision
// loss is acceptable for metrics
func bigFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
