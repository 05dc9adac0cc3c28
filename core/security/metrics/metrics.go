/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metrics registers the security core's gauges under a single
// docker/go-metrics Namespace, the same registration shape a cgroups task
// monitor uses (ns.NewGauge/NewCounter per subsystem). Unlike a pull-based
// prometheus.Collector, these gauges are set by a periodic Collect call
// rather than recomputed per scrape, since reading capability-pool
// occupancy walks every slot and should not run on the scrape request
// path.
package metrics

import (
	"context"
	"time"

	metrics "github.com/docker/go-metrics"
)

// PoolGauge is the subset of capability.Pool the collector reads.
type PoolGauge interface {
	Occupancy() int
	Capacity() int
}

// AlertGauge is the subset of ids.Aggregator the collector reads.
type AlertGauge interface {
	AlertMode() bool
}

// Collector periodically samples pool occupancy and IDS alert-mode state
// into docker/go-metrics gauges.
type Collector struct {
	pool PoolGauge
	ids  AlertGauge

	occupancy metrics.Gauge
	capacity  metrics.Gauge
	alertMode metrics.Gauge
}

// NewCollector constructs the gauges on ns. ns may be nil, in which case
// Collect becomes a no-op (matching a disabled-metrics config knob).
func NewCollector(ns *metrics.Namespace, pool PoolGauge, ids AlertGauge) *Collector {
	c := &Collector{pool: pool, ids: ids}
	if ns == nil {
		return c
	}
	c.occupancy = ns.NewGauge("capability_pool_occupancy", "number of non-revoked capability slots", metrics.Total)
	c.capacity = ns.NewGauge("capability_pool_capacity", "total capability slot count", metrics.Total)
	c.alertMode = ns.NewGauge("ids_alert_mode", "1 if the intrusion detection aggregator is in alert mode", metrics.Total)
	return c
}

// Collect takes one sample of the gauges' current values.
func (c *Collector) Collect() {
	if c.occupancy == nil {
		return
	}
	if c.pool != nil {
		c.occupancy.Set(float64(c.pool.Occupancy()))
		c.capacity.Set(float64(c.pool.Capacity()))
	}
	if c.ids != nil {
		v := 0.0
		if c.ids.AlertMode() {
			v = 1.0
		}
		c.alertMode.Set(v)
	}
}

// Run samples the gauges every interval until ctx is done.
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	c.Collect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Collect()
		}
	}
}
