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
	// StreamOpens tracks long-poll stream opens
	StreamOpens = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "stream_opens_total",
			Help:      "Total number of long-poll stream open attempts",
		},
		[]string{"status"}, // success, failure
	)

	// StreamActive reports whether a stream is currently open (0/1)
	StreamActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "stream_active",
			Help:      "1 if the long-poll stream is currently open, 0 otherwise",
		},
	)

	// ElementsReceived tracks framed elements parsed off the stream
	ElementsReceived = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "elements_received_total",
			Help:      "Total number of framed elements parsed from the long-poll stream",
		},
	)

	// FrameOverflows tracks buffer-cap violations (>10MB element)
	FrameOverflows = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "frame_overflows_total",
			Help:      "Total number of times the frame buffer exceeded its 10MB cap",
		},
	)

	// UpdatesDeduped tracks updates dropped by the dedup ring
	UpdatesDeduped = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "updates_deduped_total",
			Help:      "Total number of incoming updates dropped as duplicates of a recent one",
		},
	)

	// EventsDispatched tracks dispatched event kinds
	EventsDispatched = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "events_dispatched_total",
			Help:      "Total number of events dispatched to the client facade, by kind",
		},
		[]string{"kind"}, // pair, data, message, conversation, typing, account_change, gaia_logged_out
	)

	// TokenRefreshes tracks inline token refreshes performed before a stream open
	TokenRefreshes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "longpoll",
			Name:      "token_refreshes_total",
			Help:      "Total number of tachyon token refreshes performed before opening a stream",
		},
		[]string{"status"}, // success, failure, collapsed
	)
)
