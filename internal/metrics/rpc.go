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
	// RPCsSent tracks outgoing RPC envelopes
	RPCsSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "sent_total",
			Help:      "Total number of RPC envelopes sent",
		},
		[]string{"action"},
	)

	// RPCsAcked tracks RPC responses that resolved a waiter
	RPCsAcked = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "acked_total",
			Help:      "Total number of RPC responses that resolved a pending waiter",
		},
		[]string{"status"}, // success, timeout, cancelled
	)

	// RPCsPending tracks the current size of the waiter map
	RPCsPending = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "pending",
			Help:      "Number of RPC requests currently awaiting a response",
		},
	)

	// RPCRoundTrip tracks request-to-response latency
	RPCRoundTrip = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "round_trip_seconds",
			Help:      "Round-trip duration from request send to matched response",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to 82s
		},
	)

	// AckBatchesFlushed tracks ack-ticker flushes
	AckBatchesFlushed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "ack_batches_flushed_total",
			Help:      "Total number of queued-ack flushes performed by the ack ticker",
		},
		[]string{"status"}, // success, requeued
	)

	// AckQueueDepth tracks how many ack ids are currently queued
	AckQueueDepth = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "ack_queue_depth",
			Help:      "Number of update ids currently queued for the next ack flush",
		},
	)
)
