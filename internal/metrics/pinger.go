// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PingsSent tracks ditto pulses sent to the phone
	PingsSent = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "pings_sent_total",
			Help:      "Total number of ditto pulses sent",
		},
	)

	// PingsTimedOut tracks pulses that never got a short-circuit reply
	PingsTimedOut = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "pings_timed_out_total",
			Help:      "Total number of ditto pulses that timed out waiting for a short-circuit",
		},
	)

	// ConsecutiveFailures reports the current consecutive-ping-failure count
	ConsecutiveFailures = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "consecutive_failures",
			Help:      "Current number of consecutive ditto ping failures",
		},
	)

	// RepingInterval reports the current exponential reping interval in seconds
	RepingInterval = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "reping_interval_seconds",
			Help:      "Current reping ticker interval, capped at 64 minutes",
		},
	)

	// PhoneResponding reports whether the phone is currently considered responsive (0/1)
	PhoneResponding = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "phone_responding",
			Help:      "1 if the phone is currently considered responsive, 0 otherwise",
		},
	)
)
