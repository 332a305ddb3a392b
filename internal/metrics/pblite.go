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
	// PbliteEncodes tracks pblite encode operations
	PbliteEncodes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pblite",
			Name:      "encodes_total",
			Help:      "Total number of pblite encode operations",
		},
		[]string{"status"}, // success, failure
	)

	// PbliteDecodes tracks pblite decode operations
	PbliteDecodes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pblite",
			Name:      "decodes_total",
			Help:      "Total number of pblite decode operations",
		},
		[]string{"content_type", "status"}, // protobuf/pblite/text, success/failure
	)

	// PbliteCodecDuration tracks encode/decode duration
	PbliteCodecDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pblite",
			Name:      "codec_duration_seconds",
			Help:      "Duration of a single pblite encode or decode call",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to 82ms
		},
		[]string{"operation"}, // encode, decode
	)

	// PbliteMessageSize tracks encoded message sizes
	PbliteMessageSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pblite",
			Name:      "message_size_bytes",
			Help:      "Size of pblite-encoded messages",
			Buckets:   prometheus.ExponentialBuckets(32, 4, 10), // 32B to 8MB
		},
	)
)
